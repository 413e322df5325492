package extract

import "strings"

// Heading is a tranche heading found in contract text.
type Heading struct {
	Name   string // e.g. "Tranche A"
	Letter string
	Offset int
}

// TrancheHeadings returns the first heading for each distinct tranche letter,
// in text order.
func (r *Registry) TrancheHeadings(text string) []Heading {
	seen := make(map[string]bool)
	var out []Heading
	for _, loc := range r.tranche.FindAllStringSubmatchIndex(text, -1) {
		letter := strings.ToUpper(text[loc[2]:loc[3]])
		if seen[letter] {
			continue
		}
		seen[letter] = true
		out = append(out, Heading{
			Name:   "Tranche " + letter,
			Letter: letter,
			Offset: loc[0],
		})
	}
	return out
}
