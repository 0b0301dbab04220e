package pokemon

import (
	"fmt"
	"strconv"
	"strings"
)

// StatNames are the stats a creature may carry, in display order.
var StatNames = []string{"level", "health", "attack", "defense", "spatk", "spdef", "speed"}

var validStats = func() map[string]bool {
	m := make(map[string]bool, len(StatNames))
	for _, s := range StatNames {
		m[s] = true
	}
	return m
}()

// IsStat reports whether name (already lowercased) is a recognised stat.
func IsStat(name string) bool {
	return validStats[name]
}

// Pair is one `key: value` entry typed by a user.
type Pair struct {
	Key   string
	Value string
}

// SplitPairs splits text into pairs. Pairs are separated by newlines when the
// text has any, otherwise by commas. Keys come back trimmed and lowercased,
// values trimmed.
func SplitPairs(text string) ([]Pair, error) {
	sep := ","
	if strings.Contains(text, "\n") {
		sep = "\n"
	}

	parts := strings.Split(text, sep)
	pairs := make([]Pair, 0, len(parts))
	for _, part := range parts {
		key, value, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %q is not `key: value`", ErrFormat, strings.TrimSpace(part))
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return nil, fmt.Errorf("%w: empty key", ErrFormat)
		}
		pairs = append(pairs, Pair{Key: key, Value: strings.TrimSpace(value)})
	}
	return pairs, nil
}

// ParseStats reads a stat line such as "level: 5, health: 22".
// Either every pair is valid and all are returned, or none are.
func ParseStats(text string) (map[string]int, error) {
	pairs, err := SplitPairs(text)
	if err != nil {
		return nil, err
	}

	stats := make(map[string]int, len(pairs))
	for _, p := range pairs {
		if !IsStat(p.Key) {
			return nil, &InvalidStatError{Key: p.Key}
		}
		n, err := strconv.Atoi(p.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be a whole number", ErrFormat, p.Key)
		}
		stats[p.Key] = n
	}
	return stats, nil
}

// ParseMeta reads free-form `key: value` data. Values are kept as strings.
func ParseMeta(text string) (map[string]string, error) {
	pairs, err := SplitPairs(text)
	if err != nil {
		return nil, err
	}

	meta := make(map[string]string, len(pairs))
	for _, p := range pairs {
		meta[p.Key] = p.Value
	}
	return meta, nil
}

// ParseID converts a command argument into a creature id.
func ParseID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%q is not a valid number", arg)
	}
	return id, nil
}
