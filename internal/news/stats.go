package news

import "sort"

// Count is one labelled tally.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats aggregates a final selection for the digest.
type Stats struct {
	Total      int     `json:"total"`
	ByCategory []Count `json:"by_category"`
	BySource   []Count `json:"by_source"`
}

// CategoryCount returns the tally for c, zero when absent.
func (s Stats) CategoryCount(c Category) int {
	for _, bc := range s.ByCategory {
		if bc.Name == string(c) {
			return bc.Count
		}
	}
	return 0
}

// ComputeStats tallies records. Categories follow the fixed category order;
// sources are ordered by count descending, then by first appearance.
func ComputeStats(records []Record) Stats {
	st := Stats{Total: len(records)}

	byCat := make(map[Category]int)
	for _, r := range records {
		byCat[r.Category]++
	}
	for _, c := range Categories {
		if n := byCat[c]; n > 0 {
			st.ByCategory = append(st.ByCategory, Count{Name: string(c), Count: n})
		}
	}

	index := make(map[string]int)
	for _, r := range records {
		if i, ok := index[r.Source]; ok {
			st.BySource[i].Count++
			continue
		}
		index[r.Source] = len(st.BySource)
		st.BySource = append(st.BySource, Count{Name: r.Source, Count: 1})
	}
	sort.SliceStable(st.BySource, func(i, j int) bool {
		return st.BySource[i].Count > st.BySource[j].Count
	})
	return st
}
