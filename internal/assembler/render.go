package assembler

import (
	"bytes"
	"embed"
	"html/template"
	"regexp"

	"slidedeck/internal/navigation"
	"slidedeck/internal/section"
	"slidedeck/pkg/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// safeColor only lets hex colors into style attributes.
func safeColor(c string) template.CSS {
	if hexColor.MatchString(c) {
		return template.CSS(c)
	}
	return template.CSS(section.NeutralColor)
}

type crumbView struct {
	Display string
	Color   template.CSS
	Link    string
	Current bool
}

type navView struct {
	Position int
	Total    int
	Prev     string
	Next     string
	Crumbs   []crumbView
}

// renderNav renders the navigation bar of one slide. Links are relative to
// the slide's own directory.
func renderNav(info navigation.NavInfo, byslug map[string]domain.SlideRecord) (string, error) {
	v := navView{Position: info.Position, Total: info.Total}
	if info.HasPrev() {
		v.Prev = domain.ArtifactName(byslug[info.Prev])
	}
	if info.HasNext() {
		v.Next = domain.ArtifactName(byslug[info.Next])
	}
	for _, c := range info.Breadcrumbs {
		v.Crumbs = append(v.Crumbs, crumbView{
			Display: c.Display,
			Color:   safeColor(c.Color),
			Link:    domain.ArtifactName(byslug[c.LinkSlug]),
			Current: c.Current,
		})
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "nav.html.tmpl", v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type tocEntry struct {
	Position int
	Title    string
	Link     string
}

type tocSection struct {
	Display string
	Color   template.CSS
	Entries []tocEntry
}

type tocView struct {
	Title    string
	Subtitle string
	Start    string
	Sections []tocSection
}

// renderTOC renders the index page for deck, grouped by section in catalog
// order. Links point into the generation's slides directory.
func renderTOC(deck []domain.SlideRecord, p section.Palette, title, subtitle string) ([]byte, error) {
	if title == "" {
		title = DefaultTitle
	}
	v := tocView{Title: title, Subtitle: subtitle}
	if len(deck) > 0 {
		v.Start = slidesDir + "/" + domain.ArtifactName(deck[0])
	}
	idx := make(map[string]int)
	for _, e := range section.Build(deck, p) {
		idx[e.Label] = len(v.Sections)
		v.Sections = append(v.Sections, tocSection{Display: e.Display, Color: safeColor(e.Color)})
	}
	for i, r := range deck {
		s := &v.Sections[idx[r.SectionLabel()]]
		s.Entries = append(s.Entries, tocEntry{
			Position: i + 1,
			Title:    r.Title,
			Link:     slidesDir + "/" + domain.ArtifactName(r),
		})
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "toc.html.tmpl", v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
