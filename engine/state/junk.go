package state

import "fmt"

// Chooser supplies the randomness for junk selection.
type Chooser interface {
	Intn(n int) int
	WeightedSelect(weights []int) int
}

// JunkItems selects count junk item names weighted by their table junk
// weights. caps carries the per-name limits from the override's pool
// adjustments: a cap of 0 excludes the name outright, a positive cap limits
// total copies counting those already present in exclude.
func (t *Tables) JunkItems(count int, exclude []string, caps map[string]int, rng Chooser) ([]string, error) {
	existing := map[string]int{}
	for _, name := range exclude {
		existing[name]++
	}

	chosen := make([]string, 0, count)
	for range count {
		var names []string
		var weights []int
		for _, name := range t.ItemOrder {
			info := t.Items[name]
			if info.JunkWeight <= 0 {
				continue
			}
			if limit, capped := caps[name]; capped && existing[name] >= limit {
				continue
			}
			names = append(names, name)
			weights = append(weights, info.JunkWeight)
		}
		if len(names) == 0 {
			return nil, fmt.Errorf("no junk items available to draw from")
		}
		name := names[rng.WeightedSelect(weights)]
		existing[name]++
		chosen = append(chosen, name)
	}
	return chosen, nil
}
