package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Strategy is the battery operating strategy the degradation model was
// trained against.
type Strategy int

const (
	StrategyGreedy Strategy = iota
	StrategyFeedInDamp
)

// String returns a human-readable representation of the strategy.
func (s Strategy) String() string {
	switch s {
	case StrategyGreedy:
		return "greedy"
	case StrategyFeedInDamp:
		return "feedindamp"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the known strategies.
func (s Strategy) Valid() bool {
	return s == StrategyGreedy || s == StrategyFeedInDamp
}

// ParseStrategy accepts the numeric label ("0", "1") or the name,
// case-insensitively.
func ParseStrategy(s string) (Strategy, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "greedy":
		return StrategyGreedy, nil
	case "feedindamp", "feed-in-damp", "feed_in_damp":
		return StrategyFeedInDamp, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || !Strategy(n).Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStrategy, s)
	}
	return Strategy(n), nil
}
