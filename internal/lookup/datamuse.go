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

// datamuseTags maps Datamuse part-of-speech tag codes to full names
var datamuseTags = map[string]string{
	"n":   "noun",
	"v":   "verb",
	"adj": "adjective",
	"adv": "adverb",
}

type datamuseWord struct {
	Word string   `json:"word"`
	Tags []string `json:"tags"`
}

// DatamuseClient queries the Datamuse words API for synonyms and tags
type DatamuseClient struct {
	baseURL string
	src     httpSource
}

// NewDatamuseClient creates a Datamuse client
func NewDatamuseClient(baseURL string, timeout time.Duration, ratePerSecond float64, exec *backoff.Executor) *DatamuseClient {
	return &DatamuseClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		src:     newHTTPSource(timeout, ratePerSecond, exec),
	}
}

// Synonyms returns up to 20 candidate synonyms, unfiltered
func (c *DatamuseClient) Synonyms(ctx context.Context, word string) ([]string, error) {
	q := url.Values{}
	q.Set("rel_syn", word)
	q.Set("max", "20")

	items, err := c.query(ctx, "synonym lookup", q)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(items))
	for _, it := range items {
		if it.Word != "" {
			out = append(out, it.Word)
		}
	}
	return out, nil
}

// PartOfSpeech returns the most likely part of speech ("noun", "verb",
// "adjective" or "adverb"), or "" when the source has no tagged guess.
func (c *DatamuseClient) PartOfSpeech(ctx context.Context, word string) (string, error) {
	q := url.Values{}
	q.Set("sp", strings.ToLower(word))
	q.Set("md", "p")
	q.Set("max", "1")

	items, err := c.query(ctx, "part-of-speech lookup", q)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "", nil
	}

	for _, tag := range items[0].Tags {
		if name, ok := datamuseTags[tag]; ok {
			return name, nil
		}
	}
	return "", nil
}

func (c *DatamuseClient) query(ctx context.Context, name string, q url.Values) ([]datamuseWord, error) {
	body, err := c.src.get(ctx, name, c.baseURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var items []datamuseWord
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return items, nil
}
