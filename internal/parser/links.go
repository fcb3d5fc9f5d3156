package parser

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var referenceRe = regexp.MustCompile(`\[\[([^\]]+)\]\]`)

// ExtractReferences returns every [[id]] token in order. Duplicates are kept.
func ExtractReferences(reference string) []string {
	out := []string{}
	for _, m := range referenceRe.FindAllStringSubmatch(reference, -1) {
		out = append(out, m[1])
	}
	return out
}

func isPostURL(dest string) bool {
	return strings.HasPrefix(dest, "https://x.com/") || strings.HasPrefix(dest, "http://x.com/")
}

// ExtractSourceURL returns the destination of the first image embed in the
// Source section that points at an x.com post, or "" if there is none.
func ExtractSourceURL(source string) string {
	if source == "" {
		return ""
	}
	src := []byte(source)
	doc := goldmark.DefaultParser().Parse(text.NewReader(src))

	var found string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		img, ok := n.(*ast.Image)
		if !ok {
			return ast.WalkContinue, nil
		}
		if dest := string(img.Destination); isPostURL(dest) {
			found = dest
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return found
}
