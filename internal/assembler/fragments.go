package assembler

import (
	_ "embed"
	"strings"
)

var (
	//go:embed fragments/nav.css
	navCSS string
	//go:embed fragments/keyboard.js
	keyboardJS string
	//go:embed fragments/fullscreen.js
	fullscreenJS string
)

// Fragments are inserted verbatim into every slide: Head before the closing
// head tag, Body (after the navigation bar) before the closing body tag.
type Fragments struct {
	Head string
	Body string
}

// DefaultFragments returns the stock navigation styles plus the keyboard
// navigation and fullscreen persistence scripts.
func DefaultFragments() Fragments {
	var body strings.Builder
	body.WriteString("<script>\n")
	body.WriteString(keyboardJS)
	body.WriteString("</script>\n<script>\n")
	body.WriteString(fullscreenJS)
	body.WriteString("</script>\n")
	return Fragments{
		Head: "<style>\n" + navCSS + "</style>\n",
		Body: body.String(),
	}
}
