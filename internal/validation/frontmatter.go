// Package validation coerces raw frontmatter maps into typed records and
// applies the catalog's business rules.
package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/jr6v5m2k/rotomsongs/internal/apperr"
	"github.com/jr6v5m2k/rotomsongs/internal/models"
)

// DefaultInclusionTag marks a song file as part of the public catalog.
const DefaultInclusionTag = "RotomSongs"

var (
	errRequired   = validation.NewError("validation_required", "is required")
	errStringLike = validation.NewError("validation_string_like", "must be a string or a number")
	errDateLike   = validation.NewError("validation_date_like", "must be a string or a date")
	errTagList    = validation.NewError("validation_tag_list", "must be a list of strings")
	errBlankTitle = validation.NewError("validation_blank_title", "must not be blank for catalog songs")
)

// Error is returned when a frontmatter record is rejected.
type Error struct {
	Filename string
	Err      error
}

func (e *Error) Error() string {
	if e.Filename == "" {
		return "frontmatter validation failed: " + e.Err.Error()
	}
	return fmt.Sprintf("frontmatter validation failed [file: %s]: %s", e.Filename, e.Err.Error())
}

func (e *Error) Unwrap() []error {
	return []error{apperr.ErrValidation, e.Err}
}

// Validator validates frontmatter against the inclusion tag rule.
type Validator struct {
	inclusionTag string
	logger       *slog.Logger
	verbose      bool
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger used by SafeValidate.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) { v.logger = l }
}

// WithVerbose makes SafeValidate log the rejected raw input.
// Enabled outside production.
func WithVerbose(verbose bool) Option {
	return func(v *Validator) { v.verbose = verbose }
}

// New creates a Validator for the given inclusion tag. An empty tag selects
// DefaultInclusionTag.
func New(inclusionTag string, opts ...Option) *Validator {
	if inclusionTag == "" {
		inclusionTag = DefaultInclusionTag
	}
	v := &Validator{inclusionTag: inclusionTag, logger: slog.Default()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// InclusionTag returns the tag that admits a song into the catalog.
func (v *Validator) InclusionTag() string {
	return v.inclusionTag
}

// Validate coerces raw into a Frontmatter. Every malformed field is reported
// in a single error.
func (v *Validator) Validate(raw map[string]any, filename string) (models.Frontmatter, error) {
	var fm models.Frontmatter
	errs := validation.Errors{}

	fm.Title, errs["title"] = coerceString(raw, "title")
	fm.ID, errs["id"] = coerceString(raw, "id")
	fm.Created, errs["created"] = coerceDate(raw, "created")
	fm.Updated, errs["updated"] = coerceDate(raw, "updated")
	fm.Tags, errs["tags"] = coerceTags(raw, "tags")

	if err := errs.Filter(); err != nil {
		return models.Frontmatter{}, &Error{Filename: filename, Err: err}
	}

	err := validation.ValidateStruct(&fm,
		validation.Field(&fm.Title,
			validation.When(fm.HasTag(v.inclusionTag), validation.By(notBlank)),
		),
	)
	if err != nil {
		return models.Frontmatter{}, &Error{Filename: filename, Err: err}
	}
	return fm, nil
}

func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errBlankTitle
	}
	return nil
}

func coerceString(raw map[string]any, key string) (string, error) {
	val, ok := raw[key]
	if !ok || val == nil {
		return "", errRequired
	}
	switch t := val.(type) {
	case string:
		return t, nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case uint64:
		return strconv.FormatUint(t, 10), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	default:
		return "", errStringLike
	}
}

func coerceDate(raw map[string]any, key string) (string, error) {
	val, ok := raw[key]
	if !ok || val == nil {
		return "", errRequired
	}
	switch t := val.(type) {
	case time.Time:
		return t.UTC().Format(time.DateOnly), nil
	case string:
		if date, _, found := strings.Cut(t, "T"); found {
			return date, nil
		}
		return t, nil
	default:
		return "", errDateLike
	}
}

func coerceTags(raw map[string]any, key string) ([]string, error) {
	val, ok := raw[key]
	if !ok || val == nil {
		return []string{}, nil
	}
	switch t := val.(type) {
	case []string:
		return append([]string{}, t...), nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, errTagList
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, errTagList
	}
}

// Result is the outcome of validating one record. Exactly one of
// Frontmatter (when OK) or Err is meaningful.
type Result struct {
	Frontmatter models.Frontmatter
	Err         error
}

// OK reports whether validation succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// Check validates raw and wraps the outcome in a Result.
func (v *Validator) Check(raw map[string]any, filename string) Result {
	fm, err := v.Validate(raw, filename)
	return Result{Frontmatter: fm, Err: err}
}

// SafeValidate never fails: a rejected record is logged and reported with
// ok=false so the caller can skip the file.
func (v *Validator) SafeValidate(raw map[string]any, filename string) (models.Frontmatter, bool) {
	res := v.Check(raw, filename)
	if res.OK() {
		return res.Frontmatter, true
	}
	attrs := []any{
		slog.String("file", filename),
		slog.String("error", res.Err.Error()),
	}
	if v.verbose {
		attrs = append(attrs, slog.Any("raw", raw))
	}
	v.logger.Warn("song frontmatter rejected", attrs...)
	return models.Frontmatter{}, false
}

// Input is one record submitted to Batch.
type Input struct {
	Data     map[string]any
	Filename string
}

// Valid is an accepted Batch record.
type Valid struct {
	Frontmatter models.Frontmatter
	Filename    string
}

// Invalid is a rejected Batch record.
type Invalid struct {
	Filename string
	Err      error
}

// BatchResult partitions a batch into accepted and rejected records, each in
// input order.
type BatchResult struct {
	Valid   []Valid
	Invalid []Invalid
}

// Batch validates every input without stopping at the first failure.
func (v *Validator) Batch(inputs []Input) BatchResult {
	var out BatchResult
	for _, in := range inputs {
		fm, err := v.Validate(in.Data, in.Filename)
		if err != nil {
			out.Invalid = append(out.Invalid, Invalid{Filename: in.Filename, Err: err})
			continue
		}
		out.Valid = append(out.Valid, Valid{Frontmatter: fm, Filename: in.Filename})
	}
	return out
}

// IsValidationError reports whether err came from this package.
func IsValidationError(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}
