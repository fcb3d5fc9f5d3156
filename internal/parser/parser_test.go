package parser

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

const sampleSong = `---
title: オーバタ
id: 20230209_1519
created: 2023-02-09
updated: 2025-06-17
tags:
  - RotomSongs
---
### Source
![](https://x.com/Starlystrongest/status/1623567298064678912)

### Lyrics
一行目
二行目

三行目

### Original
#### Artist
Original Artist

#### Title
Original Title

#### Lyrics
original one

original two

### Reference
[[20230101_0000]] [[20230102_0000]]
`

func TestSplit_YAML(t *testing.T) {
	fm, body, err := Split([]byte(sampleSong))
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if fm["title"] != "オーバタ" {
		t.Errorf("title = %v", fm["title"])
	}
	if _, ok := fm["created"].(time.Time); !ok {
		t.Errorf("created decoded as %T, want time.Time", fm["created"])
	}
	if !strings.Contains(body, "### Lyrics") {
		t.Errorf("body missing sections: %q", body)
	}
	if strings.Contains(body, "title:") {
		t.Errorf("body still holds frontmatter: %q", body)
	}
}

func TestSplit_TOML(t *testing.T) {
	input := "+++\ntitle = \"x\"\nid = \"20230101_0000\"\ntags = [\"RotomSongs\"]\n+++\n### Lyrics\nla\n"
	fm, body, err := Split([]byte(input))
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if fm["title"] != "x" || fm["id"] != "20230101_0000" {
		t.Errorf("fm = %v", fm)
	}
	if ParseSections(body).Lyrics != "la" {
		t.Errorf("body = %q", body)
	}
}

func TestSplit_NoFrontmatter(t *testing.T) {
	fm, body, err := Split([]byte("### Lyrics\nla\n"))
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if fm != nil {
		t.Errorf("expected nil frontmatter, got %v", fm)
	}
	if ParseSections(body).Lyrics != "la" {
		t.Errorf("body = %q", body)
	}
}

func TestSplit_MalformedYAML(t *testing.T) {
	_, _, err := Split([]byte("---\ntitle: [unclosed\n---\nbody\n"))
	if err == nil {
		t.Error("expected error for malformed frontmatter")
	}
}

func TestParseSections_Full(t *testing.T) {
	_, body, err := Split([]byte(sampleSong))
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	s := ParseSections(body)
	if s.Source != "![](https://x.com/Starlystrongest/status/1623567298064678912)" {
		t.Errorf("source = %q", s.Source)
	}
	if s.Lyrics != "一行目\n二行目\n\n三行目" {
		t.Errorf("lyrics = %q", s.Lyrics)
	}
	if s.Original.Artist != "Original Artist" || s.Original.Title != "Original Title" {
		t.Errorf("original = %+v", s.Original)
	}
	if s.Original.Lyrics != "original one\n\noriginal two" {
		t.Errorf("original lyrics = %q", s.Original.Lyrics)
	}
	if s.Reference != "[[20230101_0000]] [[20230102_0000]]" {
		t.Errorf("reference = %q", s.Reference)
	}
}

func TestParseSections_MissingSectionsEmpty(t *testing.T) {
	s := ParseSections("### Lyrics\nonly lyrics\n")
	if s.Source != "" || s.Reference != "" || s.Original.Artist != "" {
		t.Errorf("expected empty defaults, got %+v", s)
	}
	if s.Lyrics != "only lyrics" {
		t.Errorf("lyrics = %q", s.Lyrics)
	}
}

func TestParseSections_AnyOrder(t *testing.T) {
	s := ParseSections("### Reference\n[[a]]\n### Lyrics\nla\n### Source\nsrc\n")
	if s.Reference != "[[a]]" || s.Lyrics != "la" || s.Source != "src" {
		t.Errorf("sections = %+v", s)
	}
}

func TestParseSections_UnknownHeadingTerminates(t *testing.T) {
	s := ParseSections("### Lyrics\nla\n### Notes\nprivate\n")
	if s.Lyrics != "la" {
		t.Errorf("lyrics = %q, unknown heading should end the section", s.Lyrics)
	}
}

func TestParseSections_PreambleDropped(t *testing.T) {
	s := ParseSections("intro text\n### Lyrics\nla\n")
	if s.Lyrics != "la" {
		t.Errorf("lyrics = %q", s.Lyrics)
	}
}

func TestParseSections_DuplicateLastWins(t *testing.T) {
	s := ParseSections("### Lyrics\nfirst\n### Lyrics\nsecond\n")
	if s.Lyrics != "second" {
		t.Errorf("lyrics = %q", s.Lyrics)
	}
}

func TestParseSections_HeadingNeedsSpace(t *testing.T) {
	s := ParseSections("### Lyrics\nla\n###Hashtag line\n#### not a section\n")
	if s.Lyrics != "la\n###Hashtag line\n#### not a section" {
		t.Errorf("lyrics = %q", s.Lyrics)
	}
}

func TestParseSections_CRLF(t *testing.T) {
	s := ParseSections("### Lyrics\r\na\r\nb\r\n")
	if s.Lyrics != "a\nb" {
		t.Errorf("lyrics = %q", s.Lyrics)
	}
}

func TestParseOriginal_LeadingBlanksAndFirstWins(t *testing.T) {
	o := parseOriginal("#### Artist\n\n\nFirst\nstill artist\n\nnot artist\n#### Artist\nSecond\n#### Lyrics\nl1\n")
	if o.Artist != "First\nstill artist" {
		t.Errorf("artist = %q", o.Artist)
	}
	if o.Lyrics != "l1" {
		t.Errorf("lyrics = %q", o.Lyrics)
	}
	if o.Title != "" {
		t.Errorf("title = %q", o.Title)
	}
}

func TestOutline(t *testing.T) {
	hs := Outline("intro\n### Source\nx\n### Lyrics\n### Extra\n#### Artist\n")
	want := []Heading{
		{Line: 2, Text: "### Source", Kind: SectionSource},
		{Line: 4, Text: "### Lyrics", Kind: SectionLyrics},
		{Line: 5, Text: "### Extra", Kind: SectionUnknown},
	}
	if !reflect.DeepEqual(hs, want) {
		t.Errorf("outline = %+v", hs)
	}
}

func TestSectionKindString(t *testing.T) {
	if SectionOriginal.String() != "Original" || SectionUnknown.String() != "Unknown" {
		t.Error("unexpected names")
	}
}
