package domain

import (
	"strings"
	"time"
)

// Source identifies which upstream provider produced a record.
type Source string

const (
	SourcePrimary   Source = "PRIMARY"
	SourceSecondary Source = "SECONDARY"
)

// Sentinels used when upstream data omits required fields.
const (
	NumberUnavailable = "N/A"
	TextUnavailable   = "Full NOTAM text not available from source."
)

// NotamRecord is the canonical, source-independent NOTAM shape produced by
// normalization. EffectiveStart and EffectiveEnd hold the upstream strings
// verbatim; use StartTime and EndTime to interpret them.
type NotamRecord struct {
	Number         string           `json:"number"`
	Text           string           `json:"text"`
	EffectiveStart string           `json:"effective_start,omitempty"`
	EffectiveEnd   string           `json:"effective_end,omitempty"`
	Source         Source           `json:"source"`
	Cancellation   bool             `json:"cancellation,omitempty"`
	Parsed         *ParsedNotamBody `json:"parsed,omitempty"`
}

// ParsedNotamBody holds the ICAO fields extracted from a record's free text.
type ParsedNotamBody struct {
	NotamNumber    string `json:"notam_number,omitempty"`
	QLine          string `json:"q_line,omitempty"`
	Aerodrome      string `json:"aerodrome,omitempty"`
	ValidFromRaw   string `json:"valid_from_raw,omitempty"`
	ValidToRaw     string `json:"valid_to_raw,omitempty"`
	Schedule       string `json:"schedule,omitempty"`
	Body           string `json:"body,omitempty"`
	IsCancellation bool   `json:"is_cancellation"`
	CancelsNotam   string `json:"cancels_notam,omitempty"`
}

// StartTime returns the parsed effective start. ok is false when the start is
// absent or cannot be parsed, both of which mean "already effective".
func (r NotamRecord) StartTime() (time.Time, bool) {
	return parseTimestamp(r.EffectiveStart)
}

// EndTime returns the parsed effective end. ok is false for an absent,
// permanent or unparsable end, all of which mean "no defined end".
func (r NotamRecord) EndTime() (time.Time, bool) {
	if IsPermanent(r.EffectiveEnd) {
		return time.Time{}, false
	}
	return parseTimestamp(r.EffectiveEnd)
}

// IsPermanent reports whether v is one of the no-expiry sentinels.
func IsPermanent(v string) bool {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "PERM", "PERMANENT":
		return true
	default:
		return false
	}
}

// Enrich parses the record text and sets Parsed and Cancellation. Records
// that were already parsed are returned unchanged.
func (r NotamRecord) Enrich() NotamRecord {
	if r.Parsed != nil {
		return r
	}
	r.Parsed = ParseRawNotam(r.Text)
	if r.Parsed != nil && r.Parsed.IsCancellation {
		r.Cancellation = true
	}
	return r
}

// timestampLayouts covers the FAA (ISO-8601 with millis), NAV CANADA (ISO
// without zone) and raw ICAO B)/C) (YYMMDDhhmm) formats.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"0601021504",
}

func parseTimestamp(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
