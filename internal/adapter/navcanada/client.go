package navcanada

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/couchcryptid/notam-briefing-service/internal/domain"
)

// SourceName identifies NAV CANADA in errors and logs.
const SourceName = "NAV CANADA"

// Getter performs proxied JSON GETs; *upstream.Client implements it.
type Getter interface {
	GetJSON(ctx context.Context, source, target string, header http.Header) ([]byte, error)
}

// Client queries the NAV CANADA alpha weather API, the secondary NOTAM source.
// It requires no credentials.
type Client struct {
	getter  Getter
	baseURL string
	logger  *slog.Logger
}

// NewClient creates a NAV CANADA client.
func NewClient(getter Getter, baseURL string, logger *slog.Logger) *Client {
	return &Client{getter: getter, baseURL: baseURL, logger: logger}
}

// Name returns the source name.
func (c *Client) Name() string { return SourceName }

// Fetch returns the NOTAMs for icao. Records whose nested text is malformed
// are kept with their outer text.
func (c *Client) Fetch(ctx context.Context, icao string) ([]domain.NotamRecord, error) {
	params := url.Values{
		"site":  {icao},
		"alpha": {"notam"},
	}

	body, err := c.getter.GetJSON(ctx, SourceName, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", SourceName, err)
	}

	logger := c.logger.With("source", SourceName, "icao", icao)
	records := make([]domain.NotamRecord, 0, len(resp.Data))
	for _, rec := range resp.Data {
		records = append(records, domain.NormalizeSecondary(rec, logger))
	}
	return records, nil
}

type response struct {
	Data []domain.SecondaryRecord `json:"data"`
}
