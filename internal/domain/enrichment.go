package domain

import (
	"encoding/json"
	"time"
)

// EnrichmentPayload is the combined raw result of the external lookups for
// one word. It is what the enrichment cache stores.
type EnrichmentPayload struct {
	Word              string          `json:"word"`
	Source            string          `json:"source,omitempty"`
	Dictionary        json.RawMessage `json:"dictionary,omitempty"`
	DictionaryError   string          `json:"dictionary_error,omitempty"`
	SynonymCandidates []string        `json:"synonyms,omitempty"`
	SynonymsError     string          `json:"synonyms_error,omitempty"`
	PartOfSpeech      string          `json:"pos,omitempty"`
	PartOfSpeechError string          `json:"pos_error,omitempty"`
	FetchedAt         time.Time       `json:"fetched_at"`
}

// Empty reports whether every lookup failed
func (p EnrichmentPayload) Empty() bool {
	return len(p.Dictionary) == 0 && len(p.SynonymCandidates) == 0 && p.PartOfSpeech == "" &&
		p.DictionaryError != "" && p.SynonymsError != "" && p.PartOfSpeechError != ""
}
