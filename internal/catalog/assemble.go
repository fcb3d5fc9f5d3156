// Package catalog turns song markdown files into the ordered public catalog
// and its list-item projections.
package catalog

import (
	"strings"

	"github.com/jr6v5m2k/rotomsongs/internal/models"
	"github.com/jr6v5m2k/rotomsongs/internal/parser"
)

// Assemble builds a Song from validated frontmatter and the markdown body of
// fileName. The identifier and slug are the file stem.
func Assemble(fm models.Frontmatter, body, fileName, sum string) models.Song {
	sections := parser.ParseSections(body)
	id := strings.TrimSuffix(fileName, ".md")
	return models.Song{
		ID:          id,
		Frontmatter: fm,
		Lyrics:      sections.Lyrics,
		Original:    sections.Original,
		SourceURL:   parser.ExtractSourceURL(sections.Source),
		Slug:        id,
		FileName:    fileName,
		References:  parser.ExtractReferences(sections.Reference),
		Checksum:    sum,
	}
}
