// Package search implements weighted fuzzy search over catalog list items.
package search

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jr6v5m2k/rotomsongs/internal/models"
)

const (
	// DefaultThreshold is the highest field score still counted as a match.
	DefaultThreshold = 0.4
	// DefaultSuggestions is the default number of suggestions returned.
	DefaultSuggestions = 5

	minSuggestionRunes = 2
	epsilon            = 2.220446049250313e-16
)

// Key is a searchable field of a list item.
type Key struct {
	Name   string
	Weight float64
	Get    func(models.SongListItem) string
}

// DefaultKeys are the searched fields, most important first.
func DefaultKeys() []Key {
	return []Key{
		{Name: "title", Weight: 0.3, Get: func(s models.SongListItem) string { return s.Title }},
		{Name: "lyrics", Weight: 0.25, Get: func(s models.SongListItem) string { return s.Lyrics }},
		{Name: "originalTitle", Weight: 0.2, Get: func(s models.SongListItem) string { return s.OriginalTitle }},
		{Name: "originalArtist", Weight: 0.15, Get: func(s models.SongListItem) string { return s.OriginalArtist }},
		{Name: "originalLyrics", Weight: 0.1, Get: func(s models.SongListItem) string { return s.OriginalLyrics }},
	}
}

// Options tune an Engine. Zero values select the defaults.
type Options struct {
	Threshold      float64
	MaxQueryLength int
	Keys           []Key
}

func (o Options) withDefaults() Options {
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.MaxQueryLength <= 0 {
		o.MaxQueryLength = DefaultMaxQueryLength
	}
	if len(o.Keys) == 0 {
		o.Keys = DefaultKeys()
	}
	return o
}

// Match records a field that matched a query.
type Match struct {
	Key   string  `json:"key"`
	Score float64 `json:"score"`
}

// Result is a ranked search hit. Lower scores are better.
type Result struct {
	Item    models.SongListItem `json:"item"`
	Score   float64             `json:"score"`
	Matches []Match             `json:"matches"`
}

// Stats summarises the indexed items.
type Stats struct {
	TotalSongs int `json:"total_songs"`
	Artists    int `json:"artists"`
	Tags       int `json:"tags"`
}

type field struct {
	text []rune
	norm float64
}

// Engine is an immutable search index over a fixed item list.
type Engine struct {
	opts    Options
	weights []float64
	items   []models.SongListItem
	fields  [][]field
}

// New indexes items. The slice is copied.
func New(items []models.SongListItem, opts Options) *Engine {
	opts = opts.withDefaults()
	e := &Engine{
		opts:   opts,
		items:  append([]models.SongListItem(nil), items...),
		fields: make([][]field, len(items)),
	}

	var total float64
	for _, k := range opts.Keys {
		total += k.Weight
	}
	e.weights = make([]float64, len(opts.Keys))
	for i, k := range opts.Keys {
		if total > 0 {
			e.weights[i] = k.Weight / total
		}
	}

	for i, item := range e.items {
		fs := make([]field, len(opts.Keys))
		for j, k := range opts.Keys {
			raw := k.Get(item)
			fs[j] = field{text: normalize(raw), norm: fieldNorm(raw)}
		}
		e.fields[i] = fs
	}
	return e
}

// Items returns the indexed items in input order.
func (e *Engine) Items() []models.SongListItem {
	return append([]models.SongListItem(nil), e.items...)
}

// Len is the number of indexed items.
func (e *Engine) Len() int {
	return len(e.items)
}

// Search ranks items against query. An empty query returns every item with
// score 0 in input order; otherwise limit > 0 caps the result count.
func (e *Engine) Search(query string, limit int) []Result {
	q := SanitizeQuery(query, e.opts.MaxQueryLength)
	// Stripping brackets can leave only whitespace behind, e.g. "< >".
	if strings.TrimSpace(q) == "" {
		out := make([]Result, len(e.items))
		for i, item := range e.items {
			out[i] = Result{Item: item, Score: 0, Matches: []Match{}}
		}
		return out
	}

	pattern := normalize(q)
	type hit struct {
		idx int
		Result
	}
	var hits []hit
	for i := range e.items {
		score := 1.0
		var matches []Match
		for j, f := range e.fields[i] {
			if len(f.text) == 0 {
				continue
			}
			s := fieldScore(pattern, f.text)
			if s > e.opts.Threshold {
				continue
			}
			matches = append(matches, Match{Key: e.opts.Keys[j].Name, Score: s})
			score *= math.Pow(math.Max(s, epsilon), e.weights[j]*f.norm)
		}
		if len(matches) == 0 {
			continue
		}
		hits = append(hits, hit{idx: i, Result: Result{Item: e.items[i], Score: score, Matches: matches}})
	}

	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].Score != hits[b].Score {
			return hits[a].Score < hits[b].Score
		}
		return hits[a].idx < hits[b].idx
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	out := make([]Result, len(hits))
	for i, h := range hits {
		out[i] = h.Result
	}
	return out
}

// Suggestions returns up to limit distinct titles, original titles and
// artists containing query. Queries shorter than two runes give none.
func (e *Engine) Suggestions(query string, limit int) []string {
	if limit <= 0 {
		limit = DefaultSuggestions
	}
	q := strings.ToLower(SanitizeQuery(query, e.opts.MaxQueryLength))
	if utf8.RuneCountInString(q) < minSuggestionRunes {
		return []string{}
	}

	seen := make(map[string]struct{})
	out := []string{}
	add := func(s string) bool {
		if !strings.Contains(strings.ToLower(s), q) {
			return false
		}
		if _, dup := seen[s]; dup {
			return false
		}
		seen[s] = struct{}{}
		out = append(out, s)
		return len(out) >= limit
	}
	for _, item := range e.items {
		if add(item.Title) || add(item.OriginalTitle) || add(item.OriginalArtist) {
			break
		}
	}
	return out
}

// ArtistCount is an original artist with the number of parodies of their songs.
type ArtistCount struct {
	Artist string `json:"artist"`
	Songs  int    `json:"songs"`
}

// PopularArtists returns the artists with the most songs. Ties keep first
// appearance order; songs without an artist are not counted.
func (e *Engine) PopularArtists(limit int) []ArtistCount {
	counts := make(map[string]int)
	var order []string
	for _, item := range e.items {
		if item.OriginalArtist == "" {
			continue
		}
		if counts[item.OriginalArtist] == 0 {
			order = append(order, item.OriginalArtist)
		}
		counts[item.OriginalArtist]++
	}
	out := make([]ArtistCount, len(order))
	for i, a := range order {
		out[i] = ArtistCount{Artist: a, Songs: counts[a]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Songs > out[j].Songs })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Stats counts songs, distinct non-empty artists and distinct tags.
func (e *Engine) Stats() Stats {
	artists := make(map[string]struct{})
	tags := make(map[string]struct{})
	for _, item := range e.items {
		if item.OriginalArtist != "" {
			artists[item.OriginalArtist] = struct{}{}
		}
		for _, t := range item.Tags {
			tags[t] = struct{}{}
		}
	}
	return Stats{TotalSongs: len(e.items), Artists: len(artists), Tags: len(tags)}
}
