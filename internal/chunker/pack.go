package chunker

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	blockSep    = "\n\n"
	sentenceSep = " "
)

// Chunk is one header-prefixed unit of section text.
type Chunk struct {
	Header string // section header the chunk belongs to
	Text   string // header, blank line, packed content
	Length int    // length of Text in runes

	// Oversized is set when Length exceeds the budget. This only happens when
	// a single sentence (or a block without sentence breaks) is larger than
	// the space left after the header; the content is emitted whole.
	Oversized bool
}

// Pack packs the body of a section into chunks of at most maxChars runes.
//
// Blocks (blank-line separated paragraphs) are packed greedily and joined by
// a blank line. A block that does not fit on its own is split into sentences,
// which are packed the same way joined by a single space. Every chunk repeats
// the section header. A section with an empty body yields nothing.
func Pack(section Section, maxChars int) iter.Seq[Chunk] {
	return func(yield func(Chunk) bool) {
		p := newPacker(section.Header, maxChars, yield)
		for _, block := range splitBlocks(section.Body) {
			if !p.addBlock(block) {
				return
			}
		}
		p.flush()
	}
}

type packer struct {
	header   string
	prefix   string
	maxChars int
	space    int

	buf    strings.Builder
	bufLen int

	yield func(Chunk) bool
}

func newPacker(header string, maxChars int, yield func(Chunk) bool) *packer {
	prefix := header + blockSep
	return &packer{
		header:   header,
		prefix:   prefix,
		maxChars: maxChars,
		space:    maxChars - utf8.RuneCountInString(prefix),
		yield:    yield,
	}
}

// addBlock returns false once the consumer stops the iteration.
func (p *packer) addBlock(block string) bool {
	if p.tryAppend(block, blockSep) {
		return true
	}
	if !p.flush() {
		return false
	}
	if p.tryAppend(block, blockSep) {
		return true
	}

	for _, sentence := range splitSentences(block) {
		if !p.addSentence(sentence) {
			return false
		}
	}
	return true
}

func (p *packer) addSentence(sentence string) bool {
	if p.tryAppend(sentence, sentenceSep) {
		return true
	}
	if !p.flush() {
		return false
	}
	if p.tryAppend(sentence, sentenceSep) {
		return true
	}
	// Nothing left to split on.
	return p.emit(sentence)
}

// tryAppend adds unit to the pending buffer if the result stays within space.
func (p *packer) tryAppend(unit, sep string) bool {
	n := utf8.RuneCountInString(unit)
	if p.bufLen > 0 {
		n += utf8.RuneCountInString(sep)
	}
	if p.bufLen+n > p.space {
		return false
	}
	if p.bufLen > 0 {
		p.buf.WriteString(sep)
	}
	p.buf.WriteString(unit)
	p.bufLen += n
	return true
}

func (p *packer) flush() bool {
	if p.bufLen == 0 {
		return true
	}
	body := p.buf.String()
	p.buf.Reset()
	p.bufLen = 0
	return p.emit(body)
}

func (p *packer) emit(body string) bool {
	text := strings.TrimSpace(p.prefix + body)
	n := utf8.RuneCountInString(text)
	return p.yield(Chunk{
		Header:    p.header,
		Text:      text,
		Length:    n,
		Oversized: n > p.maxChars,
	})
}

// splitBlocks splits a section body on blank lines, dropping empty blocks.
func splitBlocks(body string) []string {
	var (
		blocks []string
		lines  []string
	)
	closeBlock := func() {
		if block := strings.TrimSpace(strings.Join(lines, "\n")); block != "" {
			blocks = append(blocks, block)
		}
		lines = lines[:0]
	}
	for _, line := range strings.Split(body, "\n") {
		if classify(line) == lineBlank {
			closeBlock()
			continue
		}
		lines = append(lines, line)
	}
	closeBlock()
	return blocks
}

// splitSentences cuts a block after '.', '!' or '?' when the punctuation is
// followed by whitespace and then an uppercase letter or a digit.
func splitSentences(block string) []string {
	var sentences []string
	start := 0
	for i, r := range block {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		end := i + 1
		next := end
		for next < len(block) {
			c, size := utf8.DecodeRuneInString(block[next:])
			if !unicode.IsSpace(c) {
				break
			}
			next += size
		}
		if next == end || next >= len(block) {
			continue
		}
		c, _ := utf8.DecodeRuneInString(block[next:])
		if !unicode.IsUpper(c) && !unicode.IsDigit(c) {
			continue
		}
		if s := strings.TrimSpace(block[start:end]); s != "" {
			sentences = append(sentences, s)
		}
		start = next
	}
	if s := strings.TrimSpace(block[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
