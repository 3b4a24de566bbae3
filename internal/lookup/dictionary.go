package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"vocabsheet/internal/backoff"
)

// DictionaryName is the provenance tag of records enriched by the dictionary
const DictionaryName = "dictionaryapi.dev"

// Entry is one dictionary entry (one etymology)
type Entry struct {
	Word     string    `json:"word"`
	Meanings []Meaning `json:"meanings"`
}

// Meaning groups definitions sharing a part of speech
type Meaning struct {
	PartOfSpeech string       `json:"partOfSpeech"`
	Definitions  []Definition `json:"definitions"`
}

// Definition is a single sense with an optional usage example
type Definition struct {
	Definition string `json:"definition"`
	Example    string `json:"example"`
}

// DictionaryClient queries the free dictionary API: GET {base}/{word}
type DictionaryClient struct {
	baseURL string
	src     httpSource
}

// NewDictionaryClient creates a dictionary client
func NewDictionaryClient(baseURL string, timeout time.Duration, ratePerSecond float64, exec *backoff.Executor) *DictionaryClient {
	return &DictionaryClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		src:     newHTTPSource(timeout, ratePerSecond, exec),
	}
}

// Name returns the provenance tag of this source
func (c *DictionaryClient) Name() string {
	return DictionaryName
}

// Lookup returns the raw JSON array of entries for word
func (c *DictionaryClient) Lookup(ctx context.Context, word string) (json.RawMessage, error) {
	body, err := c.src.get(ctx, "dictionary lookup", c.baseURL+"/"+url.PathEscape(word))
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("dictionary lookup: malformed response")
	}
	return json.RawMessage(body), nil
}

// ParseEntries decodes a raw dictionary response
func ParseEntries(raw json.RawMessage) ([]Entry, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode dictionary entries: %w", err)
	}
	return entries, nil
}
