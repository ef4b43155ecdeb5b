package recommend

// LibraryCheck is the outcome of an existence lookup. Unlike title
// resolution, it is exhaustive: Matches holds every catalog entry containing
// the query so that series and multi-edition cases are fully visible.
type LibraryCheck struct {
	Exists  bool    `json:"exists"`
	Matches []Match `json:"results"`
}

// InLibrary reports whether any catalog title contains the query substring
// case-insensitively, with the full match list when it does.
func (x *Recommender) InLibrary(title string) *LibraryCheck {
	books := x.catalog.FindByTitleSubstring(title)

	check := &LibraryCheck{Exists: len(books) > 0}
	for _, book := range books {
		check.Matches = append(check.Matches, Match{Book: book})
	}
	return check
}
