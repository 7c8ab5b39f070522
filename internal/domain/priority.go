package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Priority is the operational significance of a NOTAM; lower is more important.
type Priority int

const (
	PriorityCritical    Priority = 1
	PriorityOperational Priority = 2
	PriorityAdvisory    Priority = 3
)

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityOperational:
		return "operational"
	default:
		return "advisory"
	}
}

// Default ranking heuristics, matched against the uppercased NOTAM text.
var (
	DefaultCriticalPatterns    = []string{`RWY.*CLSD`, `RUNWAY.*CLOSED`, `ILS.*U/S`}
	DefaultOperationalPatterns = []string{`TWY.*CLSD`, `TAXIWAY.*CLOSED`, `NAV.*U/S`, `APPROACH.*RESTRICTED`}
)

// PriorityRules ranks NOTAM text. The patterns are configuration: callers may
// replace them without touching the budgeting algorithm.
type PriorityRules struct {
	Critical    []*regexp.Regexp
	Operational []*regexp.Regexp
}

// DefaultPriorityRules returns the built-in runway/ILS and taxiway/navaid rules.
func DefaultPriorityRules() PriorityRules {
	rules, err := CompilePriorityRules(DefaultCriticalPatterns, DefaultOperationalPatterns)
	if err != nil {
		panic(err) // built-in patterns are constant
	}
	return rules
}

// CompilePriorityRules compiles pattern lists into rules. Patterns are applied
// to uppercased text and "." also matches newlines.
func CompilePriorityRules(critical, operational []string) (PriorityRules, error) {
	var rules PriorityRules
	var err error
	if rules.Critical, err = compileAll("critical", critical); err != nil {
		return PriorityRules{}, err
	}
	if rules.Operational, err = compileAll("operational", operational); err != nil {
		return PriorityRules{}, err
	}
	return rules, nil
}

func compileAll(tier string, patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(`(?s)` + p)
		if err != nil {
			return nil, fmt.Errorf("compile %s pattern %q: %w", tier, p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

// Rank returns the priority of a NOTAM text (case-insensitive).
func (r PriorityRules) Rank(text string) Priority {
	upper := strings.ToUpper(text)
	if matchAny(r.Critical, upper) {
		return PriorityCritical
	}
	if matchAny(r.Operational, upper) {
		return PriorityOperational
	}
	return PriorityAdvisory
}

func matchAny(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
