package tools

import (
	"sort"
	"strings"
)

// FailureCase is one failed test fed into grouping.
type FailureCase struct {
	Test    string
	Message string
}

// FailureGroup is a cluster of failures sharing a message prefix.
type FailureGroup struct {
	Message string   `json:"message"`
	Count   int      `json:"count"`
	Tests   []string `json:"tests"`
}

const failureExampleTests = 3

// GroupFailures clusters failed tests by the first prefixLength runes of
// their collapsed error message, so one root cause shows up as one group
// no matter how many tests it took down. Groups come back largest first,
// ties keeping first-seen order, each with a few example test names.
func GroupFailures(cases []FailureCase, prefixLength int) []FailureGroup {
	if prefixLength <= 0 {
		prefixLength = 80
	}

	type bucket struct {
		group FailureGroup
		order int
	}
	index := map[string]*bucket{}
	var keys []string
	for _, c := range cases {
		key := failureKey(c.Message, prefixLength)
		b, ok := index[key]
		if !ok {
			b = &bucket{group: FailureGroup{Message: key}, order: len(keys)}
			index[key] = b
			keys = append(keys, key)
		}
		b.group.Count++
		if len(b.group.Tests) < failureExampleTests {
			b.group.Tests = append(b.group.Tests, c.Test)
		}
	}

	buckets := make([]*bucket, 0, len(keys))
	for _, key := range keys {
		buckets = append(buckets, index[key])
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		if buckets[i].group.Count != buckets[j].group.Count {
			return buckets[i].group.Count > buckets[j].group.Count
		}
		return buckets[i].order < buckets[j].order
	})

	out := make([]FailureGroup, len(buckets))
	for i, b := range buckets {
		out[i] = b.group
	}
	return out
}

// failureKey collapses runs of whitespace so messages differing only in
// formatting group together, then truncates to prefixLength runes.
func failureKey(message string, prefixLength int) string {
	collapsed := strings.Join(strings.Fields(message), " ")
	if collapsed == "" {
		return "(no error message)"
	}
	runes := []rune(collapsed)
	if len(runes) > prefixLength {
		return string(runes[:prefixLength])
	}
	return collapsed
}
