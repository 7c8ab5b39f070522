package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/notam-briefing-service/internal/domain"
)

func TestParseFocus(t *testing.T) {
	for in, want := range map[string]Focus{"": FocusGeneral, "Runway": FocusRunway, " airspace ": FocusAirspace, "general": FocusGeneral} {
		got, err := ParseFocus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFocus("weather")
	assert.True(t, domain.IsValidation(err))
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(Request{ICAO: "KJFK", Period: "3 days", Focus: FocusRunway, Analyzed: 5, Total: 20, Data: `[{"id":1}]`})

	assert.Contains(t, p, "**AVIATION BRIEFING: KJFK**")
	assert.Contains(t, p, "**PERIOD:** Next 3 days")
	assert.Contains(t, p, "5 of 20 NOTAMs")
	assert.Contains(t, p, "Runway/taxiway operations")
	assert.Contains(t, p, "**NOTAM DATA:**\n[{\"id\":1}]")
	assert.Contains(t, p, "🔴 **CRITICAL**")
}

func TestBuildPrompt_AllRecordsAndUnknownFocus(t *testing.T) {
	p := BuildPrompt(Request{ICAO: "CYYZ", Period: "24 hours", Focus: "bogus", Analyzed: 3, Total: 3})

	assert.Contains(t, p, "**DATA:** 3 NOTAMs")
	assert.Contains(t, p, "All operational impacts by severity")
}
