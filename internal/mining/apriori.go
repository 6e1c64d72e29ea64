// Package mining implements frequent-itemset mining (Apriori) and
// association-rule generation over transaction baskets.
package mining

import (
	"sort"
	"strings"
)

// Itemset is a frequent set of items with its support (fraction of
// baskets containing every item).
type Itemset struct {
	Items   []string
	Support float64
}

// Rule is one association rule with its strength metrics.
type Rule struct {
	Antecedents []string
	Consequents []string
	Support     float64
	Confidence  float64
	Lift        float64
}

const keySep = "\x1f"

func keyOf(items []string) string {
	sorted := append([]string(nil), items...)
	sort.Strings(sorted)
	return strings.Join(sorted, keySep)
}

// Apriori mines all itemsets with support >= minSupport from the given
// baskets. Each basket is treated as a set: duplicate items count once.
func Apriori(baskets [][]string, minSupport float64) []Itemset {
	n := len(baskets)
	if n == 0 || minSupport <= 0 {
		return nil
	}

	sets := make([]map[string]bool, n)
	for i, b := range baskets {
		set := make(map[string]bool, len(b))
		for _, item := range b {
			set[item] = true
		}
		sets[i] = set
	}

	// L1: single items.
	counts := map[string]int{}
	for _, set := range sets {
		for item := range set {
			counts[item]++
		}
	}
	var frequent []Itemset
	var current [][]string
	for item, c := range counts {
		if sup := float64(c) / float64(n); sup >= minSupport {
			frequent = append(frequent, Itemset{Items: []string{item}, Support: sup})
			current = append(current, []string{item})
		}
	}

	// Lk: join candidates sharing a (k-1)-prefix, prune, count.
	for len(current) > 0 {
		candidates := generateCandidates(current)
		var next [][]string
		for _, cand := range candidates {
			c := 0
			for _, set := range sets {
				if containsAll(set, cand) {
					c++
				}
			}
			if sup := float64(c) / float64(n); sup >= minSupport {
				frequent = append(frequent, Itemset{Items: cand, Support: sup})
				next = append(next, cand)
			}
		}
		current = next
	}

	sort.Slice(frequent, func(i, j int) bool {
		if len(frequent[i].Items) != len(frequent[j].Items) {
			return len(frequent[i].Items) < len(frequent[j].Items)
		}
		return keyOf(frequent[i].Items) < keyOf(frequent[j].Items)
	})
	return frequent
}

// generateCandidates joins k-itemsets sharing their first k-1 items and
// prunes candidates with an infrequent subset.
func generateCandidates(level [][]string) [][]string {
	sorted := make([][]string, len(level))
	seen := make(map[string]bool, len(level))
	for i, items := range level {
		s := append([]string(nil), items...)
		sort.Strings(s)
		sorted[i] = s
		seen[strings.Join(s, keySep)] = true
	}
	sort.Slice(sorted, func(i, j int) bool {
		return strings.Join(sorted[i], keySep) < strings.Join(sorted[j], keySep)
	})

	var out [][]string
	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			a, b := sorted[i], sorted[j]
			k := len(a)
			if !equalPrefix(a, b, k-1) {
				break
			}
			cand := append(append([]string(nil), a...), b[k-1])
			if hasInfrequentSubset(cand, seen) {
				continue
			}
			out = append(out, cand)
		}
	}
	return out
}

func equalPrefix(a, b []string, n int) bool {
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func hasInfrequentSubset(cand []string, seen map[string]bool) bool {
	for i := range cand {
		sub := make([]string, 0, len(cand)-1)
		sub = append(sub, cand[:i]...)
		sub = append(sub, cand[i+1:]...)
		if !seen[strings.Join(sub, keySep)] {
			return true
		}
	}
	return false
}

func containsAll(set map[string]bool, items []string) bool {
	for _, item := range items {
		if !set[item] {
			return false
		}
	}
	return true
}
