// Package parser splits song markdown files into frontmatter and named body
// sections.
package parser

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// Frontmatter formats accepted at the top of a song file. YAML goes through
// yaml.v3 so unquoted dates decode as time.Time.
var formats = []*frontmatter.Format{
	frontmatter.NewFormat("---", "---", yaml.Unmarshal),
	frontmatter.NewFormat("+++", "+++", toml.Unmarshal),
}

// Split separates the frontmatter block from the markdown body. A file
// without frontmatter yields a nil map and the whole content as body.
func Split(data []byte) (map[string]any, string, error) {
	var fm map[string]any
	rest, err := frontmatter.Parse(bytes.NewReader(data), &fm, formats...)
	if err != nil {
		return nil, "", fmt.Errorf("parser: frontmatter: %w", err)
	}
	return fm, string(rest), nil
}
