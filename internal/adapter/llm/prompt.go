package llm

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/notam-briefing-service/internal/domain"
)

// Focus steers which operational impacts the briefing emphasizes.
type Focus string

const (
	FocusGeneral  Focus = "general"
	FocusRunway   Focus = "runway"
	FocusAirspace Focus = "airspace"
)

// ParseFocus accepts general, runway or airspace; empty means general.
func ParseFocus(s string) (Focus, error) {
	switch f := Focus(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FocusGeneral, nil
	case FocusGeneral, FocusRunway, FocusAirspace:
		return f, nil
	default:
		return "", &domain.ValidationError{Field: "focus", Value: s, Reason: "must be general, runway or airspace"}
	}
}

const systemPrompt = "Expert aviation analyst. Follow exact format. Be concise. Focus on operational impact."

// PromptOverheadTokens is the budget reserved for the prompt template.
const PromptOverheadTokens = 1500

var focusLines = map[Focus]string{
	FocusRunway:   "**FOCUS:** Runway/taxiway operations, construction",
	FocusAirspace: "**FOCUS:** Navigation aids, airspace restrictions",
	FocusGeneral:  "**FOCUS:** All operational impacts by severity",
}

// BuildPrompt renders the user prompt for req.
func BuildPrompt(req Request) string {
	focus, ok := focusLines[req.Focus]
	if !ok {
		focus = focusLines[FocusGeneral]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**AVIATION BRIEFING: %s**\n", req.ICAO)
	fmt.Fprintf(&b, "**PERIOD:** Next %s\n", req.Period)
	if req.Analyzed < req.Total {
		fmt.Fprintf(&b, "**DATA:** %d of %d NOTAMs (highest priority first)\n\n", req.Analyzed, req.Total)
	} else {
		fmt.Fprintf(&b, "**DATA:** %d NOTAMs\n\n", req.Analyzed)
	}
	b.WriteString(`**MISSION:** Create bullet-point operational briefing

**FORMAT:**
🔴 **CRITICAL** (max 3 items)
• [Impact + time]

🟡 **OPERATIONAL** (max 3 items)
• [Impact + time]

🟢 **ADVISORY** (max 2 items)
• [Impact + time]

**RULES:**
- Start with operational impact, not NOTAM text
- Include effective times for critical items
- Max 12 words per bullet
- Skip minor administrative items
- Use aviation terminology
`)
	b.WriteString(focus)
	b.WriteString("\n\n**NOTAM DATA:**\n")
	b.WriteString(req.Data)
	b.WriteString("\n\n**BRIEFING:**")
	return b.String()
}
