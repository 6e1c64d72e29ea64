package mining

import "sort"

// GenerateRules derives association rules from mined itemsets, keeping
// rules with lift >= minLift. For every frequent itemset of size >= 2,
// each non-empty proper subset becomes an antecedent with the complement
// as consequent. Support lookups always hit: every subset of a frequent
// itemset is itself frequent.
func GenerateRules(itemsets []Itemset, minLift float64) []Rule {
	support := make(map[string]float64, len(itemsets))
	for _, is := range itemsets {
		support[keyOf(is.Items)] = is.Support
	}

	var rules []Rule
	for _, is := range itemsets {
		k := len(is.Items)
		if k < 2 {
			continue
		}
		// Enumerate non-empty proper subsets by bitmask.
		for mask := 1; mask < (1<<k)-1; mask++ {
			var ante, cons []string
			for i := 0; i < k; i++ {
				if mask&(1<<i) != 0 {
					ante = append(ante, is.Items[i])
				} else {
					cons = append(cons, is.Items[i])
				}
			}

			anteSup, ok := support[keyOf(ante)]
			if !ok || anteSup == 0 {
				continue
			}
			consSup, ok := support[keyOf(cons)]
			if !ok || consSup == 0 {
				continue
			}

			confidence := is.Support / anteSup
			lift := confidence / consSup
			if lift < minLift {
				continue
			}

			sort.Strings(ante)
			sort.Strings(cons)
			rules = append(rules, Rule{
				Antecedents: ante,
				Consequents: cons,
				Support:     is.Support,
				Confidence:  confidence,
				Lift:        lift,
			})
		}
	}
	return rules
}

// AntecedentKey returns a canonical key for a rule's antecedent set, used
// for set-equality lookups and best-per-antecedent grouping.
func AntecedentKey(items []string) string {
	return keyOf(items)
}
