package httpadapter

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/notam-briefing-service/internal/adapter/llm"
	"github.com/couchcryptid/notam-briefing-service/internal/domain"
	"github.com/couchcryptid/notam-briefing-service/internal/pipeline"
)

// maxParseBody caps POST /v1/parse request bodies.
const maxParseBody = 64 << 10

func (s *Server) handleNotams(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	value, err := timeValue(q.Get("value"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	filter := true
	if raw := q.Get("filter"); raw != "" {
		filter, err = strconv.ParseBool(raw)
		if err != nil {
			s.writeError(w, r, &domain.ValidationError{Field: "filter", Value: raw, Reason: "must be true or false"})
			return
		}
	}
	unit, err := domain.ParseTimeUnit(q.Get("unit"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.fetcher.FetchNotams(r.Context(), pipeline.FetchRequest{
		ICAO:            r.PathValue("icao"),
		TimeValue:       value,
		TimeUnit:        unit,
		EnableFiltering: filter,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, res)
}

func (s *Server) handleBriefing(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	value, err := timeValue(q.Get("value"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	brief, err := s.briefer.Brief(r.Context(), pipeline.BriefingRequest{
		ICAO:      r.PathValue("icao"),
		TimeValue: value,
		TimeUnit:  domain.TimeUnit(q.Get("unit")),
		Focus:     llm.Focus(q.Get("focus")),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, brief)
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxParseBody))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	parsed := domain.ParseRawNotam(string(body))
	if parsed == nil {
		s.writeError(w, r, &domain.ValidationError{Field: "NOTAM text", Reason: "text is required"})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, parsed)
}

// timeValue parses the optional "value" query parameter, defaulting to
// pipeline.DefaultTimeValue. Range checks happen in the window computation.
func timeValue(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return pipeline.DefaultTimeValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &domain.ValidationError{Field: "value", Value: raw, Reason: "must be an integer"}
	}
	return n, nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	}
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}

// statusFor maps caller mistakes to 400 and NOTAM source or summarizer
// failures to 502.
func statusFor(err error) int {
	var (
		agg     *domain.AggregateFetchError
		httpErr *domain.UpstreamHTTPError
		apiErr  *domain.UpstreamAPIError
	)
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest
	case errors.As(err, &agg), errors.As(err, &httpErr), errors.As(err, &apiErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
