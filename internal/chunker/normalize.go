package chunker

import "strings"

// maxBlankRun is the longest run of blank lines kept by Normalize.
const maxBlankRun = 2

// Normalize cleans raw markdown into the canonical form expected by Sections.
//
// The steps run in a fixed order: line endings are unified and the buffer
// trimmed, bold markers are removed, a single leading "# " title line is
// dropped together with the blank lines after it, runs of more than two blank
// lines are collapsed to two, and trailing spaces and tabs are stripped from
// every line. Normalize never fails; empty input yields an empty string.
func Normalize(raw string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSpace(text)

	// Bold removal can expose a title behind leading whitespace
	// ("**  **# T"). Re-trimming puts it at buffer start so this pass removes
	// it instead of the next one.
	text = strings.TrimSpace(stripBold(text))
	text = stripTitle(text)

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blanks := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if classify(line) == lineBlank {
			blanks++
			if blanks > maxBlankRun {
				continue
			}
		} else {
			blanks = 0
		}
		out = append(out, line)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}

// stripBold replaces every "**inner**" pair with "inner". Pairs never span lines.
func stripBold(text string) string {
	if !strings.Contains(text, "**") {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = stripBoldLine(line)
	}
	return strings.Join(lines, "\n")
}

func stripBoldLine(line string) string {
	var b strings.Builder
	for {
		open := strings.Index(line, "**")
		if open < 0 {
			break
		}
		end := strings.Index(line[open+2:], "**")
		if end < 0 {
			break
		}
		b.WriteString(line[:open])
		b.WriteString(line[open+2 : open+2+end])
		line = line[open+2+end+2:]
	}
	b.WriteString(line)
	return b.String()
}

// stripTitle removes a leading title line and the blank lines that follow it.
// Only the first line of text is considered.
func stripTitle(text string) string {
	first, rest, _ := strings.Cut(text, "\n")
	if classify(first) != lineTitle {
		return text
	}
	for rest != "" {
		line, tail, _ := strings.Cut(rest, "\n")
		if classify(line) != lineBlank {
			break
		}
		rest = tail
	}
	return rest
}
