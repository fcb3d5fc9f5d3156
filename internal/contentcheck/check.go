// Package contentcheck lints the content directory: it reports every file
// the catalog would skip and every authoring slip it would silently accept.
package contentcheck

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/araddon/dateparse"

	"github.com/jr6v5m2k/rotomsongs/internal/catalog"
	"github.com/jr6v5m2k/rotomsongs/internal/parser"
	"github.com/jr6v5m2k/rotomsongs/internal/storage"
	"github.com/jr6v5m2k/rotomsongs/internal/validation"
)

// Severity ranks an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Code identifies the kind of issue.
type Code string

const (
	CodeUnreadable     Code = "unreadable"
	CodeFrontmatter    Code = "frontmatter"
	CodeValidation     Code = "validation"
	CodeNotPublished   Code = "not_published"
	CodeIDMismatch     Code = "id_mismatch"
	CodeFileName       Code = "file_name"
	CodeDate           Code = "date"
	CodeMissingSection Code = "missing_section"
	CodeUnknownHeading Code = "unknown_heading"
	CodeSectionOrder   Code = "section_order"
)

// Issue is one finding for one file.
type Issue struct {
	File     string   `json:"file"`
	Line     int      `json:"line,omitempty"`
	Severity Severity `json:"severity"`
	Code     Code     `json:"code"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	loc := i.File
	if i.Line > 0 {
		loc = fmt.Sprintf("%s:%d", i.File, i.Line)
	}
	return fmt.Sprintf("%s: %s [%s] %s", loc, i.Severity, i.Code, i.Message)
}

// Report is the outcome of a full run.
type Report struct {
	Files     int     `json:"files"`
	Published int     `json:"published"`
	Issues    []Issue `json:"issues"`
}

// Count returns the number of issues of the given severity.
func (r Report) Count(sev Severity) int {
	n := 0
	for _, is := range r.Issues {
		if is.Severity == sev {
			n++
		}
	}
	return n
}

// HasErrors reports whether any issue is an error.
func (r Report) HasErrors() bool {
	return r.Count(SeverityError) > 0
}

// Checker lints files from a content store.
type Checker struct {
	store     storage.Provider
	validator *validation.Validator
	logger    *slog.Logger
}

// New creates a Checker.
func New(store storage.Provider, v *validation.Validator, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{store: store, validator: v, logger: logger}
}

// Run checks every song file in the store.
func (c *Checker) Run(ctx context.Context) (Report, error) {
	metas, err := c.store.List("")
	if err != nil {
		return Report{}, fmt.Errorf("contentcheck: %w", err)
	}
	rep := Report{Issues: []Issue{}}
	for _, m := range metas {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		rep.Files++
		issues, published := c.CheckFile(m.Path)
		if published {
			rep.Published++
		}
		rep.Issues = append(rep.Issues, issues...)
	}
	c.logger.Debug("content check finished",
		slog.Int("files", rep.Files),
		slog.Int("issues", len(rep.Issues)),
	)
	return rep, nil
}

// CheckFile checks one file. published reports whether the catalog would
// serve it.
func (c *Checker) CheckFile(name string) (issues []Issue, published bool) {
	add := func(line int, sev Severity, code Code, format string, args ...any) {
		issues = append(issues, Issue{
			File: name, Line: line, Severity: sev, Code: code,
			Message: fmt.Sprintf(format, args...),
		})
	}

	stem := strings.TrimSuffix(path.Base(name), ".md")
	if !catalog.ValidID(stem) {
		add(0, SeverityWarning, CodeFileName, "file name %q is not YYYYMMDD_HHMM.md", path.Base(name))
	}

	data, err := c.store.Read(name)
	if err != nil {
		add(0, SeverityError, CodeUnreadable, "%v", err)
		return issues, false
	}

	raw, body, err := parser.Split(data)
	if err != nil {
		add(0, SeverityError, CodeFrontmatter, "%v", err)
		return issues, false
	}

	fm, err := c.validator.Validate(raw, name)
	if err != nil {
		add(0, SeverityError, CodeValidation, "%v", err)
		return issues, false
	}

	published = fm.HasTag(c.validator.InclusionTag())
	if !published {
		add(0, SeverityInfo, CodeNotPublished, "no %q tag; file is a draft", c.validator.InclusionTag())
	}

	if fm.ID != stem {
		add(0, SeverityError, CodeIDMismatch, "frontmatter id %q does not match file name", fm.ID)
	}
	for _, d := range []struct{ field, value string }{
		{"created", fm.Created},
		{"updated", fm.Updated},
	} {
		if _, err := dateparse.ParseStrict(d.value); err != nil {
			add(0, SeverityWarning, CodeDate, "%s %q is not a date", d.field, d.value)
		}
	}

	issues = append(issues, checkOutline(name, body)...)
	return issues, published
}

func checkOutline(name, body string) []Issue {
	var issues []Issue
	seen := map[parser.SectionKind]bool{}
	last := -1
	for _, h := range parser.Outline(body) {
		if h.Kind == parser.SectionUnknown {
			issues = append(issues, Issue{
				File: name, Line: h.Line, Severity: SeverityWarning, Code: CodeUnknownHeading,
				Message: fmt.Sprintf("unknown section %q is ignored", h.Text),
			})
			continue
		}
		seen[h.Kind] = true
		pos := orderOf(h.Kind)
		if pos < last {
			issues = append(issues, Issue{
				File: name, Line: h.Line, Severity: SeverityInfo, Code: CodeSectionOrder,
				Message: fmt.Sprintf("section %s is out of order", h.Kind),
			})
		}
		if pos > last {
			last = pos
		}
	}

	sections := parser.ParseSections(body)
	if !seen[parser.SectionLyrics] || sections.Lyrics == "" {
		issues = append(issues, Issue{
			File: name, Severity: SeverityWarning, Code: CodeMissingSection,
			Message: "missing or empty Lyrics section",
		})
	}
	if !seen[parser.SectionOriginal] {
		issues = append(issues, Issue{
			File: name, Severity: SeverityWarning, Code: CodeMissingSection,
			Message: "missing Original section",
		})
	}
	return issues
}

func orderOf(k parser.SectionKind) int {
	for i, c := range parser.ConventionalOrder {
		if c == k {
			return i
		}
	}
	return -1
}
