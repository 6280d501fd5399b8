package chunker

import "strings"

// Section is a "## " header and the text running to the next one.
type Section struct {
	Header string // trimmed header line, marker included
	Body   string // trimmed text between this header and the next
}

// Sections splits cleaned text at every "## " header line, in source order.
//
// Anything before the first header (the preface, including a surviving title)
// is dropped: content without a section header has nothing to anchor a chunk
// to. Text with no headers yields no sections.
func Sections(cleaned string) []Section {
	var (
		sections []Section
		header   string
		body     []string
		open     bool
	)

	closeSection := func() {
		if !open {
			return
		}
		sections = append(sections, Section{
			Header: strings.TrimSpace(header),
			Body:   strings.TrimSpace(strings.Join(body, "\n")),
		})
	}

	for _, line := range strings.Split(cleaned, "\n") {
		if classify(line) == lineSection {
			closeSection()
			header = line
			body = body[:0]
			open = true
			continue
		}
		if open {
			body = append(body, line)
		}
	}
	closeSection()

	return sections
}
