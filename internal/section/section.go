// Package section derives the ordered section catalog of a deck and the
// palette used to color it.
package section

import (
	"strings"

	"slidedeck/pkg/domain"
)

// NeutralColor is used for sections without a configured color.
const NeutralColor = "#666"

// Palette maps section labels to colors and optional short display names.
// Lookups are keyed by label text, so a section keeps its color wherever it
// appears in the deck.
type Palette struct {
	Colors        map[string]string `yaml:"colors"`
	Abbreviations map[string]string `yaml:"abbreviations"`
	Neutral       string            `yaml:"neutral"`
}

// DefaultPalette returns the stock agenda palette: gray title/agenda, then a
// red-orange to green progression through the strategy sections.
func DefaultPalette() Palette {
	return Palette{
		Colors: map[string]string{
			"Title":                           "#666",
			"Agenda":                          "#666",
			"VMG background":                  "#d73502",
			"Competitive landscape":           "#cb5a00",
			"Internal assessment":             "#bf7800",
			"Opportunities":                   "#b39000",
			"Business and AI strategies":      "#97a000",
			"AI maturity":                     "#7aad00",
			"AI initiatives":                  "#5cb600",
			"Financial analysis":              "#3dbd00",
			"Timeline":                        "#1dc200",
			"Risks and mitigation strategies": "#00c624",
			"Conclusion":                      "#00a31f",
		},
		Abbreviations: map[string]string{
			"Competitive landscape":           "Competition",
			"Business and AI strategies":      "Strategies",
			"Risks and mitigation strategies": "Risks & Mitigation",
		},
		Neutral: NeutralColor,
	}
}

// Merge returns p overlaid with the non-empty entries of o.
func (p Palette) Merge(o Palette) Palette {
	out := Palette{Colors: map[string]string{}, Abbreviations: map[string]string{}, Neutral: p.Neutral}
	for k, v := range p.Colors {
		out.Colors[k] = v
	}
	for k, v := range p.Abbreviations {
		out.Abbreviations[k] = v
	}
	for k, v := range o.Colors {
		if v != "" {
			out.Colors[k] = v
		}
	}
	for k, v := range o.Abbreviations {
		if v != "" {
			out.Abbreviations[k] = v
		}
	}
	if o.Neutral != "" {
		out.Neutral = o.Neutral
	}
	return out
}

// Color returns the color for label, or the neutral color.
func (p Palette) Color(label string) string {
	if c, ok := p.Colors[label]; ok && c != "" {
		return c
	}
	if p.Neutral != "" {
		return p.Neutral
	}
	return NeutralColor
}

// Display returns the abbreviation for label when one exists.
func (p Palette) Display(label string) string {
	if d, ok := p.Abbreviations[label]; ok && strings.TrimSpace(d) != "" {
		return d
	}
	return label
}

// Entry is one catalog row.
type Entry struct {
	Label   string
	Display string
	Color   string
}

// Build returns one entry per distinct section label of records in
// first-occurrence order. Empty labels count as domain.DefaultSection.
func Build(records []domain.SlideRecord, p Palette) []Entry {
	seen := make(map[string]struct{}, len(records))
	var out []Entry
	for _, r := range records {
		label := r.SectionLabel()
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, Entry{Label: label, Display: p.Display(label), Color: p.Color(label)})
	}
	return out
}
