package parser

import "github.com/seenimoa/loanlens/internal/extract"

// Section is a slice of contract text belonging to one facility.
type Section struct {
	Name string
	Text string
}

// Split partitions text into one section per tranche heading. Each section
// runs from its heading to the next one. Text with fewer than two distinct
// headings is returned as a single unnamed section.
func Split(reg *extract.Registry, text string) []Section {
	headings := reg.TrancheHeadings(text)
	if len(headings) < 2 {
		return []Section{{Text: text}}
	}

	sections := make([]Section, 0, len(headings))
	for i, h := range headings {
		end := len(text)
		if i+1 < len(headings) {
			end = headings[i+1].Offset
		}
		sections = append(sections, Section{
			Name: h.Name,
			Text: text[h.Offset:end],
		})
	}
	return sections
}
