package util

import "unicode/utf8"

// Dedupe returns the distinct non-empty values of in, keeping first occurrences in order
func Dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// FirstN returns at most n leading elements of in
func FirstN[T any](in []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if len(in) <= n {
		return in
	}
	return in[:n]
}

// RankByFrequency orders distinct values by how often they occur, most frequent
// first. Ties keep first-seen order.
func RankByFrequency(in []string) []string {
	counts := make(map[string]int)
	var order []string
	for _, s := range in {
		if s == "" {
			continue
		}
		if counts[s] == 0 {
			order = append(order, s)
		}
		counts[s]++
	}

	// Stable insertion sort: candidate lists are short
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && counts[order[j]] > counts[order[j-1]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	return order
}

// TruncateRunes cuts s to at most n runes, appending suffix when it was cut
func TruncateRunes(s string, n int, suffix string) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + suffix
}
