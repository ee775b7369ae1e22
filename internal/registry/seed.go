package registry

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"slidedeck/pkg/domain"
)

type seedFile struct {
	Slides []seedSlide `yaml:"slides"`
}

type seedSlide struct {
	Ordinal    string `yaml:"ordinal"`
	Slug       string `yaml:"slug"`
	Title      string `yaml:"title"`
	ContentRef string `yaml:"content_ref"`
	Section    string `yaml:"section,omitempty"`
	Active     *bool  `yaml:"active,omitempty"`
}

// ReadSeed decodes a YAML registry seed. Records default to active.
func ReadSeed(r io.Reader) ([]domain.SlideRecord, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f seedFile
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	out := make([]domain.SlideRecord, 0, len(f.Slides))
	for _, s := range f.Slides {
		active := true
		if s.Active != nil {
			active = *s.Active
		}
		out = append(out, domain.SlideRecord{
			Ordinal:    s.Ordinal,
			Slug:       s.Slug,
			Title:      s.Title,
			ContentRef: s.ContentRef,
			Section:    s.Section,
			Active:     active,
		})
	}
	return out, nil
}

// WriteSeed encodes records as a YAML seed. The active flag is written only
// for inactive records.
func WriteSeed(w io.Writer, records []domain.SlideRecord) error {
	f := seedFile{Slides: make([]seedSlide, 0, len(records))}
	for _, r := range records {
		s := seedSlide{Ordinal: r.Ordinal, Slug: r.Slug, Title: r.Title, ContentRef: r.ContentRef, Section: r.Section}
		if !r.Active {
			inactive := false
			s.Active = &inactive
		}
		f.Slides = append(f.Slides, s)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encode seed: %w", err)
	}
	return enc.Close()
}
