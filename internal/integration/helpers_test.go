//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/notam-briefing-service/internal/adapter/faa"
	"github.com/couchcryptid/notam-briefing-service/internal/adapter/llm"
	"github.com/couchcryptid/notam-briefing-service/internal/adapter/navcanada"
	"github.com/couchcryptid/notam-briefing-service/internal/adapter/upstream"
	"github.com/couchcryptid/notam-briefing-service/internal/domain"
	"github.com/couchcryptid/notam-briefing-service/internal/observability"
	"github.com/couchcryptid/notam-briefing-service/internal/pipeline"
)

const testSummary = "🔴 **CRITICAL**\n• RWY 04L/22R closed"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node Kafka container and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("notam-test"))
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start kafka container")

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// newBriefer wires a real Fetcher and groq summarizer against local fakes
// of the FAA, NAV CANADA, and summarizer APIs.
func newBriefer(t *testing.T) *pipeline.Briefer {
	t.Helper()
	now := time.Now().UTC()

	faaSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		icao := r.URL.Query().Get("icaoLocation")
		items := []map[string]any{
			{"properties": map[string]any{
				"notamNumber":    "A0001/24",
				"text":           "A0001/24 NOTAMN\nA) " + icao + "\nE) RWY 04L/22R CLSD",
				"effectiveStart": now.Add(-time.Hour).Format(time.RFC3339),
				"effectiveEnd":   now.Add(6 * time.Hour).Format(time.RFC3339),
			}},
			{"properties": map[string]any{
				"notamNumber":    "A0002/24",
				"text":           "A0002/24 NOTAMN\nA) " + icao + "\nE) TWY B LGT U/S",
				"effectiveStart": now.Add(-48 * time.Hour).Format(time.RFC3339),
				"effectiveEnd":   "PERM",
			}},
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
	}))
	t.Cleanup(faaSrv.Close)

	navSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	t.Cleanup(navSrv.Close)

	llmSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"role": "assistant", "content": testSummary}}},
		})
	}))
	t.Cleanup(llmSrv.Close)

	logger := discardLogger()
	metrics := observability.NewMetricsForTesting()

	getter := upstream.NewClient(5*time.Second, upstream.ModeNone, "")
	fetcher := pipeline.NewFetcher(
		faa.NewClient(getter, faaSrv.URL, "id", "secret", 1000),
		navcanada.NewClient(getter, navSrv.URL+"/", logger),
		nil, logger, metrics,
	)

	summarizer, err := llm.New(llm.Options{Provider: "groq", APIKey: "test", BaseURL: llmSrv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)

	return pipeline.NewBriefer(fetcher, summarizer, domain.NewBudgeter(domain.DefaultPriorityRules()), logger, metrics)
}
