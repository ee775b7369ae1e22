package assembler

import "strings"

const (
	headClose = "</head>"
	bodyClose = "</body>"
)

// Inject inserts head before the last closing head tag and body before the
// last closing body tag of doc. Tags match case-insensitively. A missing head
// tag prepends head; a missing body tag appends body. Fragments are inserted
// verbatim.
func Inject(doc, head, body string) string {
	var b strings.Builder
	b.Grow(len(doc) + len(head) + len(body))
	h := lastIndexFold(doc, headClose)
	bd := lastIndexFold(doc, bodyClose)
	if bd >= 0 && h > bd {
		// A stray </head> after </body> still gets the head fragment.
		h = -1
	}
	if h < 0 {
		b.WriteString(head)
	}
	cursor := 0
	if h >= 0 {
		b.WriteString(doc[:h])
		b.WriteString(head)
		cursor = h
	}
	if bd < 0 {
		b.WriteString(doc[cursor:])
		b.WriteString(body)
		return b.String()
	}
	b.WriteString(doc[cursor:bd])
	b.WriteString(body)
	b.WriteString(doc[bd:])
	return b.String()
}

func lastIndexFold(s, tag string) int {
	for i := len(s) - len(tag); i >= 0; i-- {
		if strings.EqualFold(s[i:i+len(tag)], tag) {
			return i
		}
	}
	return -1
}
