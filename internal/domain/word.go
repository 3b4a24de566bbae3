package domain

import (
	"errors"
	"strings"
)

// Column names of the vocabulary table, in canonical order.
const (
	ColWord       = "Word"
	ColPOS        = "POS"
	ColMeaning    = "Meaning"
	ColExample    = "Example"
	ColSynonyms   = "Synonyms"
	ColTopic      = "Topic"
	ColSource     = "Source"
	ColReviewDate = "Review Date"
	ColNote       = "Note"
)

// Headers is the canonical header row every vocabulary tab must expose
var Headers = []string{
	ColWord, ColPOS, ColMeaning, ColExample, ColSynonyms,
	ColTopic, ColSource, ColReviewDate, ColNote,
}

// SynonymSeparator joins synonyms in the Synonyms cell
const SynonymSeparator = " | "

// DefaultPOS is used when no part of speech could be determined
const DefaultPOS = "n."

// ErrEmptyWord is returned when a record has no word
var ErrEmptyWord = errors.New("word cannot be empty")

// Record represents one vocabulary entry (one table row)
type Record struct {
	Word       string
	POS        string
	Meaning    string
	Example    string
	Synonyms   []string
	Topic      string
	Source     string
	ReviewDate string
	Note       string
}

// Key returns the dedup key of the record
func (r Record) Key() DedupKey {
	return NewDedupKey(r.Word, r.Meaning)
}

// Validate checks the record invariants that must hold before a write
func (r Record) Validate() error {
	if strings.TrimSpace(r.Word) == "" {
		return ErrEmptyWord
	}
	return nil
}

// SynonymsString returns synonyms joined for storage
func (r Record) SynonymsString() string {
	return strings.Join(r.Synonyms, SynonymSeparator)
}

// Row returns the record as a fully-ordered row matching Headers
func (r Record) Row() []string {
	return []string{
		r.Word,
		r.POS,
		r.Meaning,
		r.Example,
		r.SynonymsString(),
		r.Topic,
		r.Source,
		r.ReviewDate,
		r.Note,
	}
}

// RecordFromMap builds a record from a header-name to cell-value mapping.
// Missing keys leave the field blank.
func RecordFromMap(m map[string]string) Record {
	return Record{
		Word:       m[ColWord],
		POS:        m[ColPOS],
		Meaning:    m[ColMeaning],
		Example:    m[ColExample],
		Synonyms:   ParseSynonyms(m[ColSynonyms]),
		Topic:      m[ColTopic],
		Source:     m[ColSource],
		ReviewDate: m[ColReviewDate],
		Note:       m[ColNote],
	}
}

// ParseSynonyms splits a stored Synonyms cell. Both "|" and "," are accepted.
func ParseSynonyms(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '|' || r == ','
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// DedupKey is the normalized (word, meaning) pair used as the uniqueness boundary
type DedupKey struct {
	Word    string
	Meaning string
}

// NewDedupKey normalizes word and meaning into a key
func NewDedupKey(word, meaning string) DedupKey {
	return DedupKey{
		Word:    normalizeKeyPart(word),
		Meaning: normalizeKeyPart(meaning),
	}
}

func normalizeKeyPart(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
