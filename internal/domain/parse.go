package domain

import (
	"regexp"
	"strings"
)

var (
	// notamNumberRe matches an ICAO series number, e.g. "A1234/24".
	notamNumberRe = regexp.MustCompile(`([A-Z]\d{4}/\d{2})`)

	// cancellationRe matches "NOTAMC <number>" in a NOTAM header line.
	cancellationRe = regexp.MustCompile(`NOTAMC\s+([A-Z]\d{4}/\d{2})`)

	// fieldRe matches a field marker at line start: "Q) ...", "E) ...".
	fieldRe = regexp.MustCompile(`^([A-GQ])\)\s*(.*)$`)

	// inlineFieldRe finds further markers within a header line, as in
	// "A) KJFK B) 2401011200 C) 2402011200".
	inlineFieldRe = regexp.MustCompile(`\s([A-G])\)(?:\s|$)`)
)

// fieldOrder ranks markers so inline splitting only follows the ICAO order.
var fieldOrder = map[string]int{"Q": 0, "A": 1, "B": 2, "C": 3, "D": 4, "E": 5, "F": 6, "G": 7}

// ParseRawNotam extracts the ICAO fields from a raw NOTAM. It returns nil for
// blank input and never fails: fields it cannot find are left empty.
func ParseRawNotam(raw string) *ParsedNotamBody {
	lines := splitLines(raw)
	if len(lines) == 0 {
		return nil
	}

	p := &ParsedNotamBody{}
	first := lines[0]
	if m := notamNumberRe.FindStringSubmatch(first); m != nil {
		p.NotamNumber = m[1]
	}
	if m := cancellationRe.FindStringSubmatch(first); m != nil {
		p.IsCancellation = true
		p.CancelsNotam = m[1]
	}

	start := 0
	if p.NotamNumber != "" || p.IsCancellation {
		start = 1
	}
	lines = append(lines[:start:start], splitHeaderFields(lines[start:])...)
	hasELine := false
	for _, line := range lines[start:] {
		if strings.HasPrefix(line, "E)") {
			hasELine = true
			break
		}
	}

	var (
		current  string
		bodyOpen bool
		sawField bool
	)
	for _, line := range lines[start:] {
		m := fieldRe.FindStringSubmatch(line)
		if m == nil {
			switch {
			case bodyOpen:
				p.Body = joinLine(p.Body, line)
			case !hasELine && current == "C":
				// Legacy NOTAMs sometimes omit E); text after C) is the body.
				p.Body = line
				bodyOpen = true
			case current != "":
				p.appendField(current, line)
			}
			continue
		}

		sawField = true
		field, value := m[1], strings.TrimSpace(m[2])
		current = field
		switch field {
		case "Q":
			p.QLine = value
			bodyOpen = false
		case "A":
			p.Aerodrome = value
			bodyOpen = false
		case "B":
			p.ValidFromRaw = value
			bodyOpen = false
		case "C":
			p.ValidToRaw = value
			bodyOpen = false
		case "D":
			p.Schedule = value
			bodyOpen = false
		case "E":
			p.Body = value
			bodyOpen = true
		case "F", "G":
			p.Body = joinLine(p.Body, field+") "+value)
			bodyOpen = true
		}
	}

	if !sawField {
		// No ICAO markers at all (e.g. FAA domestic format): keep the text.
		p.Body = strings.Join(lines[start:], "\n")
	}

	p.QLine = strings.TrimSpace(p.QLine)
	p.Aerodrome = strings.TrimSpace(p.Aerodrome)
	p.ValidFromRaw = strings.TrimSpace(p.ValidFromRaw)
	p.ValidToRaw = strings.TrimSpace(p.ValidToRaw)
	if strings.Contains(strings.ToUpper(p.ValidToRaw), "PERM") {
		p.ValidToRaw = "PERM"
	}
	p.Schedule = strings.TrimSpace(p.Schedule)
	p.Body = strings.TrimSpace(p.Body)
	return p
}

func (p *ParsedNotamBody) appendField(field, line string) {
	switch field {
	case "Q":
		p.QLine = joinLine(p.QLine, line)
	case "A":
		p.Aerodrome = joinLine(p.Aerodrome, line)
	case "B":
		p.ValidFromRaw = joinLine(p.ValidFromRaw, line)
	case "C":
		p.ValidToRaw = joinLine(p.ValidToRaw, line)
	case "D":
		p.Schedule = joinLine(p.Schedule, line)
	}
}

// splitLines unescapes literal "\n" sequences, normalizes line endings and
// returns the trimmed, non-blank lines.
func splitLines(raw string) []string {
	text := strings.ReplaceAll(raw, `\n`, "\n")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// splitHeaderFields breaks header lines carrying several markers into one
// marker per line. Splitting stops once the body (E, F or G) has opened so
// free text containing "X) " enumerations is left intact.
func splitHeaderFields(lines []string) []string {
	out := make([]string, 0, len(lines))
	bodyOpen := false
	for _, line := range lines {
		m := fieldRe.FindStringSubmatch(line)
		if bodyOpen || m == nil {
			out = append(out, line)
			continue
		}
		for _, seg := range splitInline(line, m[1]) {
			out = append(out, seg)
			if sm := fieldRe.FindStringSubmatch(seg); sm != nil && fieldOrder[sm[1]] >= fieldOrder["E"] {
				bodyOpen = true
			}
		}
	}
	return out
}

func splitInline(line, field string) []string {
	if fieldOrder[field] >= fieldOrder["E"] {
		return []string{line}
	}
	var segs []string
	last := fieldOrder[field]
	cut := 0
	for _, loc := range inlineFieldRe.FindAllStringSubmatchIndex(line, -1) {
		next := line[loc[2]:loc[3]]
		if fieldOrder[next] <= last {
			continue
		}
		segs = append(segs, strings.TrimSpace(line[cut:loc[2]]))
		cut = loc[2]
		last = fieldOrder[next]
		if last >= fieldOrder["E"] {
			break
		}
	}
	return append(segs, strings.TrimSpace(line[cut:]))
}

func joinLine(existing, line string) string {
	if existing == "" {
		return line
	}
	return existing + "\n" + line
}
