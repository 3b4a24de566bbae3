package service

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"vocabsheet/internal/domain"
	"vocabsheet/internal/lookup"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AutoSource is the provenance tag of records the dictionary could not fill
const AutoSource = "auto"

// maxSynonyms caps the synonyms kept on a record
const maxSynonyms = 8

var synonymPattern = regexp.MustCompile(`^[A-Za-z-]+$`)

// DictionarySource is the primary lookup: full dictionary entries for a word
type DictionarySource interface {
	Name() string
	Lookup(ctx context.Context, word string) (json.RawMessage, error)
}

// LexicalSource is the secondary lookup: synonyms and a part-of-speech guess
type LexicalSource interface {
	Synonyms(ctx context.Context, word string) ([]string, error)
	PartOfSpeech(ctx context.Context, word string) (string, error)
}

// Translator translates a definition into the target language
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// PayloadCache stores raw lookup results keyed by lowercased word
type PayloadCache interface {
	Load(word string) (*domain.EnrichmentPayload, bool)
	Save(p *domain.EnrichmentPayload) error
}

// Enricher fills in a vocabulary record from the external lookup sources.
// Lookup failures never abort enrichment; the affected fields stay blank.
type Enricher struct {
	dict       DictionarySource
	lexical    LexicalSource
	translator Translator
	cache      PayloadCache
	logger     *zap.Logger
	now        func() time.Time
}

// NewEnricher creates an enricher. translator and cache may be nil.
func NewEnricher(dict DictionarySource, lexical LexicalSource, translator Translator, cache PayloadCache, logger *zap.Logger) *Enricher {
	return &Enricher{
		dict:       dict,
		lexical:    lexical,
		translator: translator,
		cache:      cache,
		logger:     logger,
		now:        time.Now,
	}
}

// sense is the definition chosen for a record
type sense struct {
	pos        string
	definition string
	example    string
}

// Enrich returns a best-effort record for word. It only fails on an empty word.
func (e *Enricher) Enrich(ctx context.Context, word string, wantTranslation bool) (domain.Record, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return domain.Record{}, domain.ErrEmptyWord
	}

	payload := e.payload(ctx, word)

	rec := domain.Record{
		Word:     word,
		Source:   AutoSource,
		Synonyms: cleanSynonyms(payload.SynonymCandidates),
	}

	entries, err := lookup.ParseEntries(payload.Dictionary)
	if err != nil {
		e.logger.Warn("Ignoring malformed dictionary payload", zap.String("word", word), zap.Error(err))
		entries = nil
	}

	var best sense
	var found bool
	if len(entries) > 0 {
		rec.Source = payload.Source
		if rec.Source == "" {
			rec.Source = e.dict.Name()
		}
		best, found = pickBestSense(entries[0].Meanings, payload.PartOfSpeech)
	}

	rec.POS = choosePOS(best, found, payload.PartOfSpeech, entries)

	if found {
		rec.Example = best.example
		rec.Meaning = best.definition
		if wantTranslation {
			rec.Meaning = e.translate(ctx, best.definition)
		}
	}

	return rec, nil
}

// payload returns the cached lookup results for word, or runs the lookups
// concurrently and caches what they produced.
func (e *Enricher) payload(ctx context.Context, word string) *domain.EnrichmentPayload {
	if e.cache != nil {
		if p, ok := e.cache.Load(word); ok {
			e.logger.Debug("Enrichment cache hit", zap.String("word", word))
			return p
		}
	}

	var (
		dict     lookup.Outcome[json.RawMessage]
		synonyms lookup.Outcome[[]string]
		pos      lookup.Outcome[string]
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := e.dict.Lookup(gctx, word)
		if err != nil {
			dict = lookup.Failed[json.RawMessage](err)
		} else {
			dict = lookup.Succeeded(raw)
		}
		return nil
	})
	g.Go(func() error {
		words, err := e.lexical.Synonyms(gctx, word)
		if err != nil {
			synonyms = lookup.Failed[[]string](err)
		} else {
			synonyms = lookup.Succeeded(words)
		}
		return nil
	})
	g.Go(func() error {
		guess, err := e.lexical.PartOfSpeech(gctx, word)
		if err != nil {
			pos = lookup.Failed[string](err)
		} else {
			pos = lookup.Succeeded(guess)
		}
		return nil
	})
	_ = g.Wait()

	p := &domain.EnrichmentPayload{
		Word:      word,
		FetchedAt: e.now().UTC(),
	}

	if dict.Ok() {
		p.Source = e.dict.Name()
		p.Dictionary = dict.Value
	} else {
		p.DictionaryError = dict.ErrorString()
		e.logger.Warn("Dictionary lookup failed", zap.String("word", word), zap.Error(dict.Err))
	}

	if synonyms.Ok() {
		p.SynonymCandidates = synonyms.Value
	} else {
		p.SynonymsError = synonyms.ErrorString()
		e.logger.Warn("Synonym lookup failed", zap.String("word", word), zap.Error(synonyms.Err))
	}

	if pos.Ok() {
		p.PartOfSpeech = pos.Value
	} else {
		p.PartOfSpeechError = pos.ErrorString()
		e.logger.Debug("Part-of-speech lookup failed", zap.String("word", word), zap.Error(pos.Err))
	}

	if e.cache != nil && !p.Empty() {
		if err := e.cache.Save(p); err != nil {
			e.logger.Warn("Failed to cache enrichment payload", zap.String("word", word), zap.Error(err))
		}
	}

	return p
}

// translate returns the translated text, or text itself when translation
// is unavailable, fails or comes back empty.
func (e *Enricher) translate(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	if text == "" || e.translator == nil {
		return text
	}

	out, err := e.translator.Translate(ctx, text)
	if err != nil {
		e.logger.Warn("Translation failed, keeping definition", zap.Error(err))
		return text
	}
	if out = strings.TrimSpace(out); out == "" {
		return text
	}
	return out
}

// pickBestSense prefers a sense group matching preferredPOS; within a group
// the first definition carrying an example wins, else the first definition.
func pickBestSense(meanings []lookup.Meaning, preferredPOS string) (sense, bool) {
	preferred := strings.ToLower(strings.TrimSpace(preferredPOS))
	if preferred != "" {
		for _, m := range meanings {
			if strings.ToLower(m.PartOfSpeech) != preferred {
				continue
			}
			if s, ok := pickFromMeaning(m); ok {
				return s, true
			}
		}
	}

	for _, m := range meanings {
		if s, ok := pickFromMeaning(m); ok {
			return s, true
		}
	}
	return sense{}, false
}

func pickFromMeaning(m lookup.Meaning) (sense, bool) {
	pos := strings.ToLower(m.PartOfSpeech)
	for _, d := range m.Definitions {
		if d.Definition != "" && d.Example != "" {
			return sense{
				pos:        pos,
				definition: strings.TrimSpace(d.Definition),
				example:    strings.TrimSpace(d.Example),
			}, true
		}
	}

	if len(m.Definitions) > 0 && m.Definitions[0].Definition != "" {
		d := m.Definitions[0]
		return sense{
			pos:        pos,
			definition: strings.TrimSpace(d.Definition),
			example:    strings.TrimSpace(d.Example),
		}, true
	}
	return sense{}, false
}

// choosePOS takes the chosen sense's part of speech, then the lexical
// guess, then the first recognized dictionary tag, then the default.
func choosePOS(best sense, found bool, guess string, entries []lookup.Entry) string {
	if found {
		if pos := domain.NormalizePOS(best.pos); domain.IsCanonicalPOS(pos) {
			return pos
		}
	}
	if pos := domain.NormalizePOS(guess); domain.IsCanonicalPOS(pos) {
		return pos
	}
	for _, entry := range entries {
		for _, m := range entry.Meanings {
			if pos := domain.NormalizePOS(m.PartOfSpeech); domain.IsCanonicalPOS(pos) {
				return pos
			}
		}
	}
	return domain.DefaultPOS
}

// cleanSynonyms keeps single alphabetic (hyphenated) words, lowercased,
// de-duplicated in first-seen order, capped at maxSynonyms.
func cleanSynonyms(candidates []string) []string {
	seen := make(map[string]struct{}, len(candidates))
	var out []string
	for _, w := range candidates {
		w = strings.TrimSpace(w)
		if !synonymPattern.MatchString(w) {
			continue
		}
		w = strings.ToLower(w)
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
		if len(out) == maxSynonyms {
			break
		}
	}
	return out
}
