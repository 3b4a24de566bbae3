package lookup

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"vocabsheet/internal/backoff"

	"github.com/tidwall/gjson"
)

// GoogleTranslator calls the public Google translate endpoint
// (client=gtx), which answers with nested JSON arrays of translated segments.
type GoogleTranslator struct {
	baseURL string
	source  string
	target  string
	src     httpSource
}

// NewGoogleTranslator creates a translator from auto-detected language to target
func NewGoogleTranslator(baseURL, target string, timeout time.Duration, ratePerSecond float64, exec *backoff.Executor) *GoogleTranslator {
	return &GoogleTranslator{
		baseURL: baseURL,
		source:  "auto",
		target:  target,
		src:     newHTTPSource(timeout, ratePerSecond, exec),
	}
}

// Translate returns text translated to the target language
func (t *GoogleTranslator) Translate(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}

	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", t.source)
	q.Set("tl", t.target)
	q.Set("dt", "t")
	q.Set("q", text)

	body, err := t.src.get(ctx, "translate", t.baseURL+"?"+q.Encode())
	if err != nil {
		return "", err
	}

	return parseTranslation(body)
}

// parseTranslation joins the translated segments: [[["seg","orig",...],...],...]
func parseTranslation(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("translate: malformed response")
	}

	var b strings.Builder
	for _, seg := range gjson.GetBytes(body, "0.#.0").Array() {
		b.WriteString(seg.String())
	}
	return strings.TrimSpace(b.String()), nil
}
