package sales

import "strings"

// Filter returns the sales whose client name contains term
// (case-insensitive) or whose CPF contains it verbatim. An empty term
// returns the collection as-is. Input order is preserved.
func Filter(all []*Sale, term string) []*Sale {
	if term == "" {
		return all
	}
	lower := strings.ToLower(term)

	out := make([]*Sale, 0, len(all))
	for _, s := range all {
		if strings.Contains(strings.ToLower(s.ClientName), lower) ||
			strings.Contains(s.ClientCPF, term) {
			out = append(out, s)
		}
	}
	return out
}

// Summary aggregates a visible sale collection for the list response.
type Summary struct {
	Quantity    int     `json:"quantity"`
	TotalAmount float64 `json:"total_amount"`
}

// Summarize computes the quantity and total value of the given sales.
func Summarize(all []*Sale) Summary {
	var sum Summary
	for _, s := range all {
		sum.Quantity++
		sum.TotalAmount += s.Value
	}
	return sum
}
