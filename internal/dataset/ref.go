// SPDX-License-Identifier: MPL-2.0

package dataset

import (
	"fmt"
	"strings"
)

const (
	// FallbackName is the dataset name used when no reference is given.
	// It selects local JSON/JSONL files instead of a hub dataset.
	FallbackName = "json"
	// DefaultLanguage is the language variant used when none is given.
	DefaultLanguage = "default"
	// DefaultSplit is the split used when none is given.
	DefaultSplit = "train"

	colonSep = ":"
	slashSep = "/"
)

const (
	// ModeFallback means no reference was given and the fallback ref was used.
	ModeFallback Mode = iota
	// ModeColon means the reference was split on ':' (name:language[:split]).
	ModeColon
	// ModeSlash means the reference was split on '/' (org/name[/split]).
	ModeSlash
)

type (
	// Spec is a raw dataset reference as supplied by the user. The zero value
	// (or a whitespace-only value) means no reference was given.
	Spec string

	// Mode identifies which parsing branch produced a Ref.
	Mode int

	// Ref is the canonical identity of a dataset. All fields are populated
	// after resolution.
	Ref struct {
		Name     string `json:"name" toml:"name"`
		Language string `json:"language" toml:"language"`
		Split    string `json:"split" toml:"split"`
	}

	// Resolution is the tagged result of Resolve.
	Resolution struct {
		Ref  Ref
		Mode Mode
	}
)

// String returns the raw spec.
func (s Spec) String() string { return string(s) }

// IsAbsent reports whether no reference was given.
func (s Spec) IsAbsent() bool { return strings.TrimSpace(string(s)) == "" }

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeFallback:
		return "fallback"
	case ModeColon:
		return "colon"
	case ModeSlash:
		return "slash"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// FallbackRef returns the ref used when no dataset reference is given.
func FallbackRef() Ref {
	return Ref{Name: FallbackName, Language: DefaultLanguage, Split: DefaultSplit}
}

// String renders the ref in its canonical name:language:split form.
// Resolving the result yields the same ref.
func (r Ref) String() string {
	return r.Name + colonSep + r.Language + colonSep + r.Split
}

// IsFallback reports whether the ref selects local JSON files.
func (r Ref) IsFallback() bool { return r.Name == FallbackName }

// Resolve parses a raw dataset reference.
//
// A reference containing ':' is split on ':' and must have two
// (name:language) or three (name:language:split) segments. Otherwise it is
// split on '/': exactly three segments mean org/name/split, any other count
// keeps the whole string as the name. Missing language and split take
// DefaultLanguage and DefaultSplit.
//
// Leading and trailing whitespace of raw is trimmed before parsing, so
// "  squad:en  " yields squad/en; whitespace inside segments is kept.
func Resolve(raw Spec) (Resolution, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return Resolution{Ref: FallbackRef(), Mode: ModeFallback}, nil
	}

	var res Resolution
	if strings.Contains(s, colonSep) {
		ref, err := parseColon(raw, s)
		if err != nil {
			return Resolution{}, err
		}
		res = Resolution{Ref: ref, Mode: ModeColon}
	} else {
		res = Resolution{Ref: parseSlash(s), Mode: ModeSlash}
	}

	ref, err := splitEmbeddedLanguage(raw, res.Ref)
	if err != nil {
		return Resolution{}, err
	}
	res.Ref = ref
	if res.Ref.Name == "" {
		return Resolution{}, &MalformedSpecError{Spec: raw, Segments: segmentCount(s), Reason: "dataset name is empty"}
	}
	if res.Ref.Language == "" {
		res.Ref.Language = DefaultLanguage
	}
	if res.Ref.Split == "" {
		res.Ref.Split = DefaultSplit
	}

	return res, nil
}

func parseColon(raw Spec, s string) (Ref, error) {
	segs := strings.Split(s, colonSep)
	switch len(segs) {
	case 3:
		return Ref{Name: segs[0], Language: segs[1], Split: segs[2]}, nil
	case 2:
		return Ref{Name: segs[0], Language: segs[1], Split: DefaultSplit}, nil
	default:
		return Ref{}, &MalformedSpecError{
			Spec:     raw,
			Segments: len(segs),
			Reason:   "expected name:language or name:language:split",
		}
	}
}

func parseSlash(s string) Ref {
	segs := strings.Split(s, slashSep)
	if len(segs) == 3 {
		return Ref{
			Name:     strings.Join(segs[:2], slashSep),
			Language: DefaultLanguage,
			Split:    segs[2],
		}
	}
	return Ref{Name: strings.Join(segs, slashSep), Language: DefaultLanguage, Split: DefaultSplit}
}

// splitEmbeddedLanguage moves a "name:language" tag left in the name into the
// language field. The split is left untouched.
func splitEmbeddedLanguage(raw Spec, ref Ref) (Ref, error) {
	name, lang, found := strings.Cut(ref.Name, colonSep)
	if !found {
		return ref, nil
	}
	if strings.Contains(lang, colonSep) {
		return Ref{}, &MalformedSpecError{
			Spec:     raw,
			Segments: strings.Count(ref.Name, colonSep) + 1,
			Reason:   "dataset name carries more than one language tag",
		}
	}
	ref.Name = name
	ref.Language = lang
	return ref, nil
}

func segmentCount(s string) int {
	if strings.Contains(s, colonSep) {
		return strings.Count(s, colonSep) + 1
	}
	return strings.Count(s, slashSep) + 1
}
