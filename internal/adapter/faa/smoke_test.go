//go:build smoke

package faa

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/notam-briefing-service/internal/adapter/upstream"
	"github.com/couchcryptid/notam-briefing-service/internal/domain"
)

// These tests hit the real FAA NOTAM API and require FAA_CLIENT_ID and
// FAA_CLIENT_SECRET. Run with: go test -tags=smoke ./internal/adapter/faa/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	id, secret := os.Getenv("FAA_CLIENT_ID"), os.Getenv("FAA_CLIENT_SECRET")
	if id == "" || secret == "" {
		t.Fatal("FAA_CLIENT_ID and FAA_CLIENT_SECRET must be set to run smoke tests")
	}
	getter := upstream.NewClient(15*time.Second, upstream.ModeNone, "")
	return NewClient(getter, "https://external-api.faa.gov/notamapi/v1/notams", id, secret, 50)
}

func TestSmoke_FetchKJFK(t *testing.T) {
	records, err := smokeClient(t).Fetch(context.Background(), "KJFK")
	require.NoError(t, err)
	require.NotEmpty(t, records, "KJFK always has active NOTAMs")

	for _, rec := range records {
		assert.Equal(t, domain.SourcePrimary, rec.Source)
		assert.NotEmpty(t, rec.Number)
		assert.NotEqual(t, domain.TextUnavailable, rec.Text, "record %s has no text", rec.Number)
	}
}

func TestSmoke_BadCredentials(t *testing.T) {
	getter := upstream.NewClient(15*time.Second, upstream.ModeNone, "")
	c := NewClient(getter, "https://external-api.faa.gov/notamapi/v1/notams", "invalid", "invalid", 10)

	_, err := c.Fetch(context.Background(), "KJFK")
	require.Error(t, err)
}
