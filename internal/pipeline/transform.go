package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/notam-briefing-service/internal/domain"
)

// Output event header keys.
const (
	HeaderICAO        = "icao"
	HeaderGeneratedAt = "generated_at"
)

// BriefingTransformer implements Transformer by decoding a BriefingRequest
// from each message and running it through the Briefer.
type BriefingTransformer struct {
	briefer *Briefer
	logger  *slog.Logger
}

// NewTransformer creates a BriefingTransformer.
func NewTransformer(briefer *Briefer, logger *slog.Logger) *BriefingTransformer {
	return &BriefingTransformer{briefer: briefer, logger: logger}
}

func (t *BriefingTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	req, err := ParseBriefingRequest(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	brief, err := t.briefer.Brief(ctx, req)
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("brief %s: %w", req.ICAO, err)
	}
	t.logger.Debug("briefing produced", "icao", brief.ICAO, "offset", raw.Offset, "records", brief.Total)
	return SerializeBriefing(brief)
}

// ParseBriefingRequest decodes a request message. A message with an empty
// value uses its key as the ICAO code, and an absent time_value means
// DefaultTimeValue. Undecodable messages are *domain.ValidationError.
func ParseBriefingRequest(raw domain.RawEvent) (BriefingRequest, error) {
	if len(raw.Value) == 0 {
		req := BriefingRequest{ICAO: string(raw.Key), TimeValue: DefaultTimeValue}
		if req.ICAO == "" {
			return BriefingRequest{}, &domain.ValidationError{Field: "ICAO code", Reason: "code is required"}
		}
		return req, nil
	}

	var msg struct {
		BriefingRequest
		TimeValue *int `json:"time_value"`
	}
	if err := json.Unmarshal(raw.Value, &msg); err != nil {
		return BriefingRequest{}, &domain.ValidationError{Field: "briefing request", Reason: err.Error()}
	}
	req := msg.BriefingRequest
	req.TimeValue = DefaultTimeValue
	if msg.TimeValue != nil {
		req.TimeValue = *msg.TimeValue
	}
	if req.ICAO == "" {
		return BriefingRequest{}, &domain.ValidationError{Field: "ICAO code", Reason: "code is required"}
	}
	return req, nil
}

// SerializeBriefing marshals a briefing into an output event keyed by ICAO code.
func SerializeBriefing(b Briefing) (domain.OutputEvent, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("serialize briefing: %w", err)
	}
	return domain.OutputEvent{
		Key:   []byte(b.ICAO),
		Value: data,
		Headers: map[string]string{
			HeaderICAO:        b.ICAO,
			HeaderGeneratedAt: b.GeneratedAt.Format(time.RFC3339),
		},
	}, nil
}
