package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/m-mizutani/libris/pkg/model"
	"github.com/m-mizutani/libris/pkg/utils/logging"
)

// AvailabilityUnknown is returned whenever the library system cannot be
// reached or answers with something unparseable. Callers display it as-is.
const AvailabilityUnknown = "unbekannt"

// Availability looks up the lending status of a catalog medium.
type Availability interface {
	Status(ctx context.Context, id model.MediumID) string
}

type BiblioWebClient struct {
	baseURL    string
	httpClient *http.Client
}

type BiblioWebOption func(*BiblioWebClient)

func WithHTTPClient(c *http.Client) BiblioWebOption {
	return func(x *BiblioWebClient) {
		x.httpClient = c
	}
}

// NewBiblioWeb creates a client for the biblioweb status endpoint, e.g.
// https://seengen.biblioweb.ch
func NewBiblioWeb(baseURL string, opts ...BiblioWebOption) *BiblioWebClient {
	x := &BiblioWebClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

type statusResponse struct {
	AusleihStatus struct {
		Status string `json:"status"`
	} `json:"ausleihstatus"`
}

// Status fetches the lending status for a medium. Any failure (network,
// non-200 response, malformed body, missing field) degrades to
// AvailabilityUnknown; this boundary never propagates errors.
func (x *BiblioWebClient) Status(ctx context.Context, id model.MediumID) string {
	url := fmt.Sprintf("%s/medium/status/%d", x.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		logging.From(ctx).Warn("failed to create availability request", "medium_id", id, "error", err)
		return AvailabilityUnknown
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := x.httpClient.Do(req)
	if err != nil {
		logging.From(ctx).Warn("availability request failed", "medium_id", id, "error", err)
		return AvailabilityUnknown
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logging.From(ctx).Warn("availability request rejected", "medium_id", id, "status", resp.StatusCode)
		return AvailabilityUnknown
	}

	var body statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		logging.From(ctx).Warn("failed to decode availability response", "medium_id", id, "error", err)
		return AvailabilityUnknown
	}

	if body.AusleihStatus.Status == "" {
		return AvailabilityUnknown
	}

	return body.AusleihStatus.Status
}
