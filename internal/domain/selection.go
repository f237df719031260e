package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// SelectionMode names a question selection variant.
type SelectionMode string

const (
	ModeIDs      SelectionMode = "ids"
	ModeProfile  SelectionMode = "profile"
	ModeSet      SelectionMode = "set"
	ModeSearch   SelectionMode = "search"
	ModeFiltered SelectionMode = "filtered"
)

// SelectionParams is the loosely typed request shape shared by the REST and
// GraphQL boundaries. ResolveSelection turns it into exactly one Selection.
type SelectionParams struct {
	IDs         []int64
	HasIDs      bool
	Profile     bool
	SetID       int64
	Search      string
	Semester    int64
	Specialties []int64
	Tags        []int64
	Year        int
	Season      Season
	N           int
	OnlyNew     bool
}

// Selection is one of IDsSelection, ProfileSelection, SetSelection,
// SearchSelection or FilteredSelection.
type Selection interface {
	Mode() SelectionMode
}

type IDsSelection struct {
	IDs []int64
}

type ProfileSelection struct {
	Semester int64
}

type SetSelection struct {
	SetID int64
}

type SearchSelection struct {
	Semester int64
	Text     string
}

// FilteredSelection matches (tag in Tags) AND (specialty in Specialties);
// an empty dimension does not constrain.
type FilteredSelection struct {
	Semester    int64
	Specialties []int64
	Tags        []int64
	Year        int
	Season      Season
	N           int
	OnlyNew     bool
}

func (IDsSelection) Mode() SelectionMode      { return ModeIDs }
func (ProfileSelection) Mode() SelectionMode  { return ModeProfile }
func (SetSelection) Mode() SelectionMode      { return ModeSet }
func (SearchSelection) Mode() SelectionMode   { return ModeSearch }
func (FilteredSelection) Mode() SelectionMode { return ModeFiltered }

// ResolveSelection picks the active mode: ids, then profile, then set, then
// search text, then the filtered default.
func ResolveSelection(p SelectionParams) (Selection, error) {
	switch {
	case p.HasIDs || len(p.IDs) > 0:
		return IDsSelection{IDs: uniqueIDs(p.IDs)}, nil
	case p.Profile:
		return ProfileSelection{Semester: p.Semester}, nil
	case p.SetID > 0:
		return SetSelection{SetID: p.SetID}, nil
	case strings.TrimSpace(p.Search) != "":
		return SearchSelection{Semester: p.Semester, Text: p.Search}, nil
	}
	if p.N < 0 {
		return nil, fmt.Errorf("%w: n must be positive", ErrModelValidation)
	}
	if p.Season != "" && !p.Season.Valid() {
		return nil, fmt.Errorf("%w: unknown season %q", ErrModelValidation, p.Season)
	}
	return FilteredSelection{
		Semester:    p.Semester,
		Specialties: uniqueIDs(p.Specialties),
		Tags:        uniqueIDs(p.Tags),
		Year:        p.Year,
		Season:      p.Season,
		N:           p.N,
		OnlyNew:     p.OnlyNew,
	}, nil
}

// SearchTokens lower-cases text and splits it into letter/digit runs.
func SearchTokens(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}

func uniqueIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
