package parser

import (
	"strings"

	"github.com/jr6v5m2k/rotomsongs/internal/models"
)

// SectionKind identifies a top-level "###" section of a song body.
type SectionKind int

const (
	SectionUnknown SectionKind = iota
	SectionSource
	SectionLyrics
	SectionOriginal
	SectionReference
)

var sectionNames = map[SectionKind]string{
	SectionSource:    "Source",
	SectionLyrics:    "Lyrics",
	SectionOriginal:  "Original",
	SectionReference: "Reference",
}

func (k SectionKind) String() string {
	if name, ok := sectionNames[k]; ok {
		return name
	}
	return "Unknown"
}

// ConventionalOrder is the section order authors are expected to follow.
var ConventionalOrder = []SectionKind{SectionSource, SectionLyrics, SectionOriginal, SectionReference}

// Sections holds the trimmed text of every recognised section. Missing
// sections are empty strings.
type Sections struct {
	Source    string
	Lyrics    string
	Original  models.Original
	Reference string
}

// Heading is a top-level section heading found in a body.
type Heading struct {
	Line int // 1-based
	Text string
	Kind SectionKind
}

// isSectionHeading reports whether line opens a top-level section:
// "###" alone or followed by whitespace. "####" and deeper do not count.
func isSectionHeading(line string) bool {
	if !strings.HasPrefix(line, "###") {
		return false
	}
	if len(line) == 3 {
		return true
	}
	return line[3] == ' ' || line[3] == '\t'
}

func kindOf(heading string) SectionKind {
	name := strings.TrimSpace(strings.TrimPrefix(heading, "###"))
	for _, k := range ConventionalOrder {
		if strings.HasPrefix(name, sectionNames[k]) {
			return k
		}
	}
	return SectionUnknown
}

func splitLines(body string) []string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	return strings.Split(body, "\n")
}

// Outline lists every top-level heading in body, in order.
func Outline(body string) []Heading {
	var out []Heading
	for i, line := range splitLines(body) {
		if isSectionHeading(line) {
			out = append(out, Heading{Line: i + 1, Text: strings.TrimSpace(line), Kind: kindOf(line)})
		}
	}
	return out
}

// ParseSections scans body line by line. Every top-level heading closes the
// section before it, so sections may appear in any order. Text before the
// first heading and under unknown headings is dropped; a repeated section
// replaces the earlier one.
func ParseSections(body string) Sections {
	var (
		s       Sections
		kind    SectionKind
		inBlock bool
		buf     []string
	)

	flush := func() {
		if !inBlock {
			return
		}
		text := strings.TrimSpace(strings.Join(buf, "\n"))
		switch kind {
		case SectionSource:
			s.Source = text
		case SectionLyrics:
			s.Lyrics = text
		case SectionOriginal:
			s.Original = parseOriginal(text)
		case SectionReference:
			s.Reference = text
		}
	}

	for _, line := range splitLines(body) {
		if isSectionHeading(line) {
			flush()
			kind = kindOf(line)
			inBlock = true
			buf = buf[:0]
			continue
		}
		if inBlock {
			buf = append(buf, line)
		}
	}
	flush()
	return s
}

type subKind int

const (
	subNone subKind = iota
	subArtist
	subTitle
	subLyrics
)

func subKindOf(line string) subKind {
	name := strings.TrimSpace(strings.TrimLeft(line, "#"))
	switch {
	case strings.HasPrefix(name, "Artist"):
		return subArtist
	case strings.HasPrefix(name, "Title"):
		return subTitle
	case strings.HasPrefix(name, "Lyrics"):
		return subLyrics
	}
	return subNone
}

// parseOriginal reads the "####" sub-sections of an Original section.
// Artist and Title end at the first blank line after their content, Lyrics
// runs to the next sub-heading. The first occurrence of each wins.
func parseOriginal(text string) models.Original {
	var (
		out  models.Original
		seen = map[subKind]bool{}
		cur  subKind
		done bool
		buf  []string
	)

	finish := func() {
		if cur == subNone || seen[cur] {
			return
		}
		seen[cur] = true
		val := strings.TrimSpace(strings.Join(buf, "\n"))
		switch cur {
		case subArtist:
			out.Artist = val
		case subTitle:
			out.Title = val
		case subLyrics:
			out.Lyrics = val
		}
	}

	for _, line := range splitLines(text) {
		if strings.HasPrefix(line, "####") {
			finish()
			cur = subKindOf(line)
			done = false
			buf = buf[:0]
			continue
		}
		if cur == subNone || done {
			continue
		}
		if cur != subLyrics && strings.TrimSpace(line) == "" {
			if len(buf) > 0 {
				done = true
			}
			continue
		}
		buf = append(buf, line)
	}
	finish()
	return out
}
