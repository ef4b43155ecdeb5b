package chat

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/m-mizutani/libris/pkg/model"
)

var idListRe = regexp.MustCompile(`\[(.*?)\]`)

// SplitAnswer separates a final assistant answer into its display text and
// the bracketed medium-ID list the prompt asks for on the trailing line.
// When the last line carries no parseable list, the text is returned
// untouched with no IDs. Duplicate IDs are dropped, order preserved.
func SplitAnswer(answer string) (string, []model.MediumID) {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return answer, nil
	}

	lines := strings.Split(trimmed, "\n")
	lastLine := lines[len(lines)-1]

	m := idListRe.FindStringSubmatch(lastLine)
	if m == nil {
		return answer, nil
	}

	var ids []model.MediumID
	seen := make(map[model.MediumID]bool)
	for _, field := range strings.Split(m[1], ",") {
		v, err := strconv.ParseInt(strings.TrimSpace(field), 10, 64)
		if err != nil {
			continue
		}
		id := model.MediumID(v)
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return answer, nil
	}

	return strings.TrimSpace(strings.Join(lines[:len(lines)-1], "\n")), ids
}
