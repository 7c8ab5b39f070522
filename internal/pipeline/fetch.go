package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/notam-briefing-service/internal/domain"
	"github.com/couchcryptid/notam-briefing-service/internal/observability"
)

// Source is an upstream NOTAM provider returning normalized records.
type Source interface {
	Name() string
	Fetch(ctx context.Context, icao string) ([]domain.NotamRecord, error)
}

// FetchRequest is a NOTAM query for one airport.
type FetchRequest struct {
	ICAO            string          `json:"icao"`
	TimeValue       int             `json:"time_value"`
	TimeUnit        domain.TimeUnit `json:"time_unit"`
	EnableFiltering bool            `json:"enable_filtering"`
}

// FetchResult is the outcome of a NOTAM query. Records keep upstream order.
type FetchResult struct {
	ICAO         string               `json:"icao"`
	Source       domain.Source        `json:"source"`
	Window       *domain.TimeWindow   `json:"window,omitempty"`
	FetchedCount int                  `json:"fetched_count"`
	FellBack     bool                 `json:"fell_back"`
	Records      []domain.NotamRecord `json:"records"`
}

// Fetcher queries the primary source and falls back to the secondary source
// when the primary yields nothing.
type Fetcher struct {
	primary          Source
	secondary        Source
	fallbackPrefixes []string
	logger           *slog.Logger
	metrics          *observability.Metrics
}

// NewFetcher creates a Fetcher. secondary may be nil to disable fallback.
// fallbackPrefixes limits fallback to matching ICAO codes; empty allows all.
func NewFetcher(primary, secondary Source, fallbackPrefixes []string, logger *slog.Logger, metrics *observability.Metrics) *Fetcher {
	return &Fetcher{
		primary:          primary,
		secondary:        secondary,
		fallbackPrefixes: fallbackPrefixes,
		logger:           logger,
		metrics:          metrics,
	}
}

// FetchNotams validates the request, queries the sources and optionally
// filters the records to the requested time window. Input errors are
// *domain.ValidationError and are returned before any network call; when no
// source produced records and the primary failed the error is
// *domain.AggregateFetchError.
func (f *Fetcher) FetchNotams(ctx context.Context, req FetchRequest) (FetchResult, error) {
	icao, err := domain.ValidateICAO(req.ICAO)
	if err != nil {
		return FetchResult{}, err
	}

	var window *domain.TimeWindow
	if req.EnableFiltering {
		w, err := domain.ComputeWindow(req.TimeValue, req.TimeUnit)
		if err != nil {
			return FetchResult{}, err
		}
		window = &w
	}

	result := FetchResult{ICAO: icao, Source: domain.SourcePrimary, Window: window}
	logger := f.logger.With("icao", icao)

	records, primaryErr := f.query(ctx, f.primary, domain.SourcePrimary, icao)
	if primaryErr != nil {
		logger.Warn("primary source failed", "source", f.primary.Name(), "error", primaryErr)
	}

	var secondaryErr error
	if len(records) == 0 && f.canFallBack(icao) {
		f.metrics.Fallbacks.Inc()
		logger.Info("primary source returned no records, falling back", "source", f.secondary.Name())

		var fallback []domain.NotamRecord
		fallback, secondaryErr = f.query(ctx, f.secondary, domain.SourceSecondary, icao)
		if secondaryErr != nil {
			logger.Warn("secondary source failed", "source", f.secondary.Name(), "error", secondaryErr)
		}
		if len(fallback) > 0 {
			records = fallback
			result.Source = domain.SourceSecondary
			result.FellBack = true
		}
	}

	if len(records) == 0 && primaryErr != nil {
		return FetchResult{}, &domain.AggregateFetchError{ICAO: icao, Primary: primaryErr, Secondary: secondaryErr}
	}

	result.FetchedCount = len(records)
	if window != nil {
		filtered := domain.FilterActive(records, *window)
		f.metrics.RecordsFiltered.Add(float64(len(records) - len(filtered)))
		records = filtered
	}
	if records == nil {
		records = []domain.NotamRecord{}
	}
	result.Records = records

	logger.Info("notams fetched",
		"source", result.Source,
		"fetched", result.FetchedCount,
		"count", len(records),
		"fell_back", result.FellBack,
	)
	return result, nil
}

func (f *Fetcher) canFallBack(icao string) bool {
	if f.secondary == nil {
		return false
	}
	if len(f.fallbackPrefixes) == 0 {
		return true
	}
	for _, p := range f.fallbackPrefixes {
		if strings.HasPrefix(icao, p) {
			return true
		}
	}
	return false
}

func (f *Fetcher) query(ctx context.Context, src Source, tier domain.Source, icao string) ([]domain.NotamRecord, error) {
	label := strings.ToLower(string(tier))
	start := time.Now()
	records, err := src.Fetch(ctx, icao)
	f.metrics.SourceDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		f.metrics.SourceRequests.WithLabelValues(label, "error").Inc()
		return nil, err
	case len(records) == 0:
		f.metrics.SourceRequests.WithLabelValues(label, "empty").Inc()
	default:
		f.metrics.SourceRequests.WithLabelValues(label, "success").Inc()
		f.metrics.RecordsFetched.WithLabelValues(label).Add(float64(len(records)))
	}
	return records, nil
}
