package faa

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/notam-briefing-service/internal/adapter/upstream"
	"github.com/couchcryptid/notam-briefing-service/internal/domain"
)

const (
	testClientID     = "test-id"
	testClientSecret = "test-secret"
)

func testClient(baseURL string) *Client {
	return NewClient(upstream.NewClient(5*time.Second, upstream.ModeNone, ""), baseURL, testClientID, testClientSecret, 1000)
}

func serveJSON(t *testing.T, body string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Fetch_Success(t *testing.T) {
	srv := serveJSON(t, `{"items":[
		{"properties":{"notamNumber":"A0001/24","text":"RWY 04L/22R CLSD","effectiveStart":"2024-04-26T10:00:00.000Z","effectiveEnd":"2024-04-27T10:00:00.000Z"}},
		{"properties":{"text":"TWY B CLSD","effectiveEnd":"PERM"}}
	]}`, func(r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "geoJson", q.Get("responseFormat"))
		assert.Equal(t, "KJFK", q.Get("icaoLocation"))
		assert.Equal(t, "1000", q.Get("pageSize"))
		assert.Equal(t, "1", q.Get("pageNum"))
		assert.Equal(t, "effectiveStartDate", q.Get("sortBy"))
		assert.Equal(t, "Asc", q.Get("sortOrder"))
		assert.Equal(t, testClientID, r.Header.Get("client_id"))
		assert.Equal(t, testClientSecret, r.Header.Get("client_secret"))
	})

	records, err := testClient(srv.URL).Fetch(context.Background(), "KJFK")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "A0001/24", records[0].Number)
	assert.Equal(t, domain.SourcePrimary, records[0].Source)
	assert.Equal(t, domain.NumberUnavailable, records[1].Number)
	assert.Equal(t, "PERM", records[1].EffectiveEnd)
}

func TestClient_Fetch_Empty(t *testing.T) {
	srv := serveJSON(t, `{"pageSize":1000,"totalCount":0,"items":[]}`, nil)

	records, err := testClient(srv.URL).Fetch(context.Background(), "CYYZ")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestClient_Fetch_ErrorInBody(t *testing.T) {
	srv := serveJSON(t, `{"error":"invalid_client","status":401,"message":"Client authentication failed"}`, nil)

	_, err := testClient(srv.URL).Fetch(context.Background(), "KJFK")

	var apiErr *domain.UpstreamAPIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "401", apiErr.Status)
	assert.Equal(t, "invalid_client", apiErr.Message)
	assert.Equal(t, "FAA API error (401): invalid_client - Client authentication failed", err.Error())
}

func TestClient_Fetch_ErrorWithoutStatus(t *testing.T) {
	srv := serveJSON(t, `{"error":"rate limited"}`, nil)

	_, err := testClient(srv.URL).Fetch(context.Background(), "KJFK")
	require.Error(t, err)
	assert.Equal(t, "FAA API error (N/A): rate limited - No message.", err.Error())
}

func TestClient_Fetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Fetch(context.Background(), "KJFK")

	var httpErr *domain.UpstreamHTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, SourceName, httpErr.Source)
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
}

func TestClient_Fetch_MalformedBody(t *testing.T) {
	srv := serveJSON(t, `<html>maintenance</html>`, nil)

	_, err := testClient(srv.URL).Fetch(context.Background(), "KJFK")
	assert.ErrorContains(t, err, "decode FAA response")
}
