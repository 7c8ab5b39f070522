package domain

import (
	"encoding/json"
	"math"
	"sort"
	"unicode/utf8"
)

// Budgeting defaults.
const (
	DefaultRecordFloor  = 5
	DefaultShrinkFactor = 0.8
	CharsPerToken       = 4
	TruncationMarker    = "\n\n[TRUNCATED FOR SIZE LIMIT]"
)

// Budgeter reduces a record set to fit a summarizer's token budget by
// dropping the least significant records first.
type Budgeter struct {
	Rules  PriorityRules
	Floor  int
	Shrink float64
}

// NewBudgeter creates a Budgeter with the default floor and shrink factor.
func NewBudgeter(rules PriorityRules) *Budgeter {
	return &Budgeter{Rules: rules, Floor: DefaultRecordFloor, Shrink: DefaultShrinkFactor}
}

// Reduction is the outcome of ReduceToFit.
type Reduction struct {
	Records   []NotamRecord
	Tokens    int
	Budget    int
	Input     int
	Cancelled int
	Dropped   int
}

// OverBudget reports whether the floor was reached before the budget was met.
func (r Reduction) OverBudget() bool { return r.Tokens > r.Budget }

// Err returns a BudgetExceededError when the result is still over budget.
func (r Reduction) Err() error {
	if !r.OverBudget() {
		return nil
	}
	return &BudgetExceededError{Tokens: r.Tokens, Budget: r.Budget, Records: len(r.Records)}
}

// ReduceToFit drops cancellations, orders the rest by priority (stable), then
// repeatedly cuts the lowest-priority tail until the estimated token cost
// fits budget or only Floor records remain. Surviving records keep their
// relative order and content.
func (b *Budgeter) ReduceToFit(records []NotamRecord, budget int) Reduction {
	red := Reduction{Budget: budget, Input: len(records)}

	kept := make([]NotamRecord, 0, len(records))
	for _, rec := range records {
		rec = rec.Enrich()
		if rec.Cancellation {
			red.Cancelled++
			continue
		}
		kept = append(kept, rec)
	}

	ranks := make([]Priority, len(kept))
	idx := make([]int, len(kept))
	for i := range kept {
		idx[i] = i
		ranks[i] = b.Rules.Rank(kept[i].Text)
	}
	sort.SliceStable(idx, func(i, j int) bool { return ranks[idx[i]] < ranks[idx[j]] })
	ordered := make([]NotamRecord, len(kept))
	for i, k := range idx {
		ordered[i] = kept[k]
	}

	floor := b.Floor
	if floor <= 0 {
		floor = DefaultRecordFloor
	}
	shrink := b.Shrink
	if shrink <= 0 || shrink >= 1 {
		shrink = DefaultShrinkFactor
	}

	tokens := EstimateRecordTokens(ordered)
	for tokens > budget && len(ordered) > floor {
		n := int(math.Floor(float64(len(ordered)) * shrink))
		if n < floor {
			n = floor
		}
		ordered = ordered[:n]
		tokens = EstimateRecordTokens(ordered)
	}

	red.Records = ordered
	red.Tokens = tokens
	red.Dropped = len(kept) - len(ordered)
	return red
}

// EstimateTokens approximates the token count of s as characters / 4, rounded up.
func EstimateTokens(s string) int {
	n := utf8.RuneCountInString(s)
	return (n + CharsPerToken - 1) / CharsPerToken
}

// EstimateRecordTokens estimates the cost of the serialized record set. Parse
// enrichment is excluded because it is not sent to the summarizer.
func EstimateRecordTokens(records []NotamRecord) int {
	bare := make([]NotamRecord, len(records))
	for i, rec := range records {
		rec.Parsed = nil
		bare[i] = rec
	}
	data, err := json.Marshal(bare)
	if err != nil {
		return 0
	}
	return EstimateTokens(string(data))
}

// TruncateToTokens cuts text to roughly maxTokens, preferring to break after
// the last sentence end, then the last newline, then the last space, provided
// the break lies beyond 80% of the limit. A truncation marker is appended.
func TruncateToTokens(text string, maxTokens int) string {
	maxChars := maxTokens * CharsPerToken
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	if maxChars <= 0 {
		return TruncationMarker
	}

	cut := runes[:maxChars]
	threshold := int(float64(maxChars) * 0.8)
	breakAt := maxChars
	switch {
	case lastRune(cut, '.') > threshold:
		breakAt = lastRune(cut, '.') + 1
	case lastRune(cut, '\n') > threshold:
		breakAt = lastRune(cut, '\n')
	case lastRune(cut, ' ') > threshold:
		breakAt = lastRune(cut, ' ')
	}
	return string(cut[:breakAt]) + TruncationMarker
}

func lastRune(rs []rune, r rune) int {
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i] == r {
			return i
		}
	}
	return -1
}
