//go:build smoke

package navcanada

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/notam-briefing-service/internal/adapter/upstream"
	"github.com/couchcryptid/notam-briefing-service/internal/domain"
)

// These tests hit the public NAV CANADA alpha API.
// Run with: go test -tags=smoke ./internal/adapter/navcanada/ -v -count=1

func TestSmoke_FetchCYYZ(t *testing.T) {
	getter := upstream.NewClient(15*time.Second, upstream.ModeNone, "")
	c := NewClient(getter, "https://plan.navcanada.ca/weather/api/alpha/", slog.New(slog.NewTextHandler(io.Discard, nil)))

	records, err := c.Fetch(context.Background(), "CYYZ")
	require.NoError(t, err)
	require.NotEmpty(t, records)

	for _, rec := range records {
		assert.Equal(t, domain.SourceSecondary, rec.Source)
		assert.NotContains(t, rec.Text, `{"raw"`, "nested payload should be unwrapped")
	}
}
