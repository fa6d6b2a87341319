package search

import (
	"github.com/bmatcuk/doublestar/v4"
	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/places/internal/location"
	"github.com/nikbrunner/places/internal/model"
)

// SearchResult represents a match against one list entry.
type SearchResult struct {
	Index          int // position in the list the entries were taken from
	Entry          model.Entry
	MatchedIndexes []int
	Score          int
}

// entryTitles implements fuzzy.Source for an entry slice.
type entryTitles []model.Entry

func (et entryTitles) String(i int) string {
	return et[i].Title()
}

func (et entryTitles) Len() int {
	return len(et)
}

// Fuzzy searches entries by display name using fuzzy matching.
// Returns results sorted by match score (best first).
func Fuzzy(entries []model.Entry, query string) []SearchResult {
	if query == "" {
		return nil
	}

	matches := fuzzy.FindFrom(query, entryTitles(entries))

	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		results[i] = SearchResult{
			Index:          m.Index,
			Entry:          entries[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}

// Glob returns the entries whose target matches pattern, in list order.
// Native targets are matched by file system path, others by URI.
// Patterns use doublestar syntax, so "/home/**/src" matches at any depth.
func Glob(entries []model.Entry, pattern string) ([]SearchResult, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, doublestar.ErrBadPattern
	}

	var results []SearchResult
	for i, e := range entries {
		ok, err := doublestar.Match(pattern, globSubject(e))
		if err != nil {
			return nil, err
		}
		if ok {
			results = append(results, SearchResult{Index: i, Entry: e})
		}
	}
	return results, nil
}

func globSubject(e model.Entry) string {
	loc, err := location.Parse(e.URI)
	if err != nil {
		return e.URI
	}
	if loc.IsNative() {
		return loc.Path()
	}
	return loc.String()
}
