package faa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/couchcryptid/notam-briefing-service/internal/domain"
)

// SourceName identifies the FAA in errors and logs.
const SourceName = "FAA"

// Getter performs proxied JSON GETs; *upstream.Client implements it.
type Getter interface {
	GetJSON(ctx context.Context, source, target string, header http.Header) ([]byte, error)
}

// Client queries the FAA NOTAM API, the primary NOTAM source.
type Client struct {
	getter       Getter
	baseURL      string
	clientID     string
	clientSecret string
	pageSize     int
}

// NewClient creates an FAA NOTAM API client.
func NewClient(getter Getter, baseURL, clientID, clientSecret string, pageSize int) *Client {
	return &Client{
		getter:       getter,
		baseURL:      baseURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		pageSize:     pageSize,
	}
}

// Name returns the source name.
func (c *Client) Name() string { return SourceName }

// Fetch returns the NOTAMs for icao, oldest effective start first. A 2xx
// response carrying an error field yields *domain.UpstreamAPIError.
func (c *Client) Fetch(ctx context.Context, icao string) ([]domain.NotamRecord, error) {
	params := url.Values{
		"responseFormat": {"geoJson"},
		"icaoLocation":   {icao},
		"pageSize":       {strconv.Itoa(c.pageSize)},
		"pageNum":        {"1"},
		"sortBy":         {"effectiveStartDate"},
		"sortOrder":      {"Asc"},
	}
	header := http.Header{}
	header.Set("client_id", c.clientID)
	header.Set("client_secret", c.clientSecret)

	body, err := c.getter.GetJSON(ctx, SourceName, c.baseURL+"?"+params.Encode(), header)
	if err != nil {
		return nil, err
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", SourceName, err)
	}
	if hasValue(resp.Error) {
		return nil, &domain.UpstreamAPIError{
			Source:  SourceName,
			Status:  rawString(resp.Status),
			Message: rawString(resp.Error),
			Detail:  resp.Message,
		}
	}

	records := make([]domain.NotamRecord, 0, len(resp.Items))
	for _, item := range resp.Items {
		records = append(records, domain.NormalizePrimary(item))
	}
	return records, nil
}

// FAA API response types. error and status vary between string and number
// across API versions.

type response struct {
	Items   []domain.PrimaryItem `json:"items"`
	Error   json.RawMessage      `json:"error"`
	Status  json.RawMessage      `json:"status"`
	Message string               `json:"message"`
}

func hasValue(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 &&
		!bytes.Equal(trimmed, []byte("null")) &&
		!bytes.Equal(trimmed, []byte(`""`)) &&
		!bytes.Equal(trimmed, []byte("false"))
}

func rawString(raw json.RawMessage) string {
	if !hasValue(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}
