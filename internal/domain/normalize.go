package domain

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
)

// PrimaryItem is one entry of the FAA NOTAM API "items" array. The flat
// properties fields are preferred; the nested coreNOTAMData layout of the FAA
// GeoJSON response is used when they are empty.
type PrimaryItem struct {
	Properties struct {
		Text           string `json:"text"`
		EffectiveStart string `json:"effectiveStart"`
		EffectiveEnd   string `json:"effectiveEnd"`
		NotamNumber    string `json:"notamNumber"`

		CoreNOTAMData *struct {
			Notam struct {
				Number         string `json:"number"`
				Text           string `json:"text"`
				EffectiveStart string `json:"effectiveStart"`
				EffectiveEnd   string `json:"effectiveEnd"`
			} `json:"notam"`
			NotamTranslation []notamTranslation `json:"notamTranslation"`
		} `json:"coreNOTAMData,omitempty"`
	} `json:"properties"`
}

// SecondaryRecord is one entry of the NAV CANADA alpha API "data" array. Text
// is kept raw because the provider nests a JSON document inside a string.
type SecondaryRecord struct {
	PK            json.RawMessage `json:"pk,omitempty"`
	NotamID       string          `json:"notam_id"`
	Text          json.RawMessage `json:"text"`
	StartValidity string          `json:"startValidity"`
	EndValidity   string          `json:"endValidity"`
}

// NormalizePrimary maps an FAA item onto the canonical record.
func NormalizePrimary(item PrimaryItem) NotamRecord {
	p := item.Properties
	rec := NotamRecord{
		Number:         p.NotamNumber,
		Text:           p.Text,
		EffectiveStart: p.EffectiveStart,
		EffectiveEnd:   p.EffectiveEnd,
		Source:         SourcePrimary,
	}

	if core := p.CoreNOTAMData; core != nil {
		n := core.Notam
		if rec.Text == "" {
			rec.Text = icaoTranslation(core.NotamTranslation)
		}
		rec.Number = firstNonEmpty(rec.Number, n.Number)
		rec.Text = firstNonEmpty(rec.Text, n.Text)
		rec.EffectiveStart = firstNonEmpty(rec.EffectiveStart, n.EffectiveStart)
		rec.EffectiveEnd = firstNonEmpty(rec.EffectiveEnd, n.EffectiveEnd)
	}

	rec.Number = firstNonEmpty(rec.Number, NumberUnavailable)
	rec.Text = firstNonEmpty(rec.Text, TextUnavailable)
	return rec
}

// NormalizeSecondary maps a NAV CANADA record onto the canonical record. A
// malformed nested payload is logged and the outer text used verbatim; the
// function never fails so one bad record cannot abort a batch.
func NormalizeSecondary(rec SecondaryRecord, logger *slog.Logger) NotamRecord {
	return NotamRecord{
		Number:         firstNonEmpty(strings.TrimSpace(rec.NotamID), NumberUnavailable),
		Text:           secondaryText(rec, logger),
		EffectiveStart: rec.StartValidity,
		EffectiveEnd:   rec.EndValidity,
		Source:         SourceSecondary,
	}
}

func secondaryText(rec SecondaryRecord, logger *slog.Logger) string {
	var outer string
	if err := json.Unmarshal(rec.Text, &outer); err != nil || strings.TrimSpace(outer) == "" {
		// Missing, null, empty or non-string text.
		return TextUnavailable
	}

	var inner struct {
		Raw string `json:"raw"`
	}
	if err := json.Unmarshal([]byte(outer), &inner); err != nil {
		perr := &ParseError{Source: "secondary", ID: recordID(rec), Err: err}
		logger.Warn("nested NOTAM text is not JSON, using raw text", "error", perr)
		return outer
	}
	if inner.Raw == "" {
		logger.Warn("nested NOTAM text has no raw field, using raw text",
			"error", &ParseError{Source: "secondary", ID: recordID(rec), Err: errors.New("missing raw field")})
		return outer
	}
	return strings.ReplaceAll(inner.Raw, `\n`, "\n")
}

type notamTranslation struct {
	Type          string `json:"type"`
	FormattedText string `json:"formattedText"`
}

func icaoTranslation(translations []notamTranslation) string {
	for _, t := range translations {
		if strings.EqualFold(t.Type, "ICAO") && t.FormattedText != "" {
			return t.FormattedText
		}
	}
	return ""
}

func recordID(rec SecondaryRecord) string {
	if rec.NotamID != "" {
		return rec.NotamID
	}
	if len(rec.PK) > 0 {
		return strings.Trim(string(rec.PK), `"`)
	}
	return "unknown"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
