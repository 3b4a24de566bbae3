package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"vocabsheet/internal/cache"
	"vocabsheet/internal/domain"
	"vocabsheet/internal/lookup"
	"vocabsheet/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const runEntries = `[{"word":"run","meanings":[
	{"partOfSpeech":"noun","definitions":[{"definition":"An act of running."},{"definition":"A score in cricket.","example":"He made a run."}]},
	{"partOfSpeech":"verb","definitions":[{"definition":"To move swiftly on foot."},{"definition":"To manage.","example":"She runs a shop."}]}
]}]`

type enrichFixture struct {
	dict       *testutil.MockDictionarySource
	lexical    *testutil.MockLexicalSource
	translator *testutil.MockTranslator
	cache      *cache.Store
	enricher   *Enricher
}

func newEnrichFixture(t *testing.T) *enrichFixture {
	t.Helper()
	store, err := cache.New("", testutil.NewTestLogger())
	require.NoError(t, err)

	f := &enrichFixture{
		dict:       new(testutil.MockDictionarySource),
		lexical:    new(testutil.MockLexicalSource),
		translator: new(testutil.MockTranslator),
		cache:      store,
	}
	f.enricher = NewEnricher(f.dict, f.lexical, f.translator, f.cache, testutil.NewTestLogger())
	return f
}

func TestEnricher_Enrich(t *testing.T) {
	tests := []struct {
		name        string
		posGuess    string
		synonyms    []string
		translate   bool
		translation string
		translErr   error
		expected    domain.Record
	}{
		{
			name:     "preferred part of speech picks sense with example",
			posGuess: "verb",
			synonyms: []string{"Sprint", "dash", "go for", "sprint", "jog"},
			expected: domain.Record{
				Word:     "run",
				POS:      "v.",
				Meaning:  "To manage.",
				Example:  "She runs a shop.",
				Synonyms: []string{"sprint", "dash", "jog"},
				Source:   lookup.DictionaryName,
			},
		},
		{
			name:     "no guess falls back to first group",
			posGuess: "",
			expected: domain.Record{
				Word:    "run",
				POS:     "n.",
				Meaning: "A score in cricket.",
				Example: "He made a run.",
				Source:  lookup.DictionaryName,
			},
		},
		{
			name:        "translation replaces meaning",
			posGuess:    "verb",
			translate:   true,
			translation: "經營。",
			expected: domain.Record{
				Word:    "run",
				POS:     "v.",
				Meaning: "經營。",
				Example: "She runs a shop.",
				Source:  lookup.DictionaryName,
			},
		},
		{
			name:      "failed translation keeps definition",
			posGuess:  "verb",
			translate: true,
			translErr: errors.New("blocked"),
			expected: domain.Record{
				Word:    "run",
				POS:     "v.",
				Meaning: "To manage.",
				Example: "She runs a shop.",
				Source:  lookup.DictionaryName,
			},
		},
		{
			name:        "empty translation keeps definition",
			posGuess:    "verb",
			translate:   true,
			translation: "  ",
			expected: domain.Record{
				Word:    "run",
				POS:     "v.",
				Meaning: "To manage.",
				Example: "She runs a shop.",
				Source:  lookup.DictionaryName,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEnrichFixture(t)
			f.dict.On("Lookup", mock.Anything, "run").Return(json.RawMessage(runEntries), nil)
			f.lexical.On("Synonyms", mock.Anything, "run").Return(tt.synonyms, nil)
			f.lexical.On("PartOfSpeech", mock.Anything, "run").Return(tt.posGuess, nil)
			if tt.translate {
				f.translator.On("Translate", mock.Anything, "To manage.").Return(tt.translation, tt.translErr)
			}

			rec, err := f.enricher.Enrich(context.Background(), "  run ", tt.translate)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, rec)
			f.dict.AssertExpectations(t)
			f.lexical.AssertExpectations(t)
			f.translator.AssertExpectations(t)
		})
	}
}

func TestEnricher_AllSourcesFail(t *testing.T) {
	f := newEnrichFixture(t)
	f.dict.On("Lookup", mock.Anything, "qwzx").Return(nil, errors.New("status 404"))
	f.lexical.On("Synonyms", mock.Anything, "qwzx").Return(nil, errors.New("timeout"))
	f.lexical.On("PartOfSpeech", mock.Anything, "qwzx").Return("", errors.New("timeout"))

	rec, err := f.enricher.Enrich(context.Background(), "qwzx", true)

	require.NoError(t, err)
	assert.Equal(t, "qwzx", rec.Word)
	assert.Equal(t, domain.DefaultPOS, rec.POS)
	assert.Empty(t, rec.Meaning)
	assert.Empty(t, rec.Synonyms)
	assert.Equal(t, AutoSource, rec.Source)
	f.translator.AssertNotCalled(t, "Translate", mock.Anything, mock.Anything)

	_, cached := f.cache.Load("qwzx")
	assert.False(t, cached, "a payload with no data is not cached")
}

func TestEnricher_DictionaryFailsLexicalGuessUsed(t *testing.T) {
	f := newEnrichFixture(t)
	f.dict.On("Lookup", mock.Anything, "swiftly").Return(nil, errors.New("status 404"))
	f.lexical.On("Synonyms", mock.Anything, "swiftly").Return([]string{"quickly"}, nil)
	f.lexical.On("PartOfSpeech", mock.Anything, "swiftly").Return("adverb", nil)

	rec, err := f.enricher.Enrich(context.Background(), "swiftly", false)

	require.NoError(t, err)
	assert.Equal(t, "adv.", rec.POS)
	assert.Equal(t, []string{"quickly"}, rec.Synonyms)
	assert.Equal(t, AutoSource, rec.Source)
	assert.Empty(t, rec.Meaning)
}

func TestEnricher_CacheHitSkipsNetwork(t *testing.T) {
	f := newEnrichFixture(t)
	f.dict.On("Lookup", mock.Anything, "run").Return(json.RawMessage(runEntries), nil).Once()
	f.lexical.On("Synonyms", mock.Anything, "run").Return([]string{"sprint"}, nil).Once()
	f.lexical.On("PartOfSpeech", mock.Anything, "run").Return("verb", nil).Once()

	first, err := f.enricher.Enrich(context.Background(), "run", false)
	require.NoError(t, err)

	second, err := f.enricher.Enrich(context.Background(), "RUN", false)
	require.NoError(t, err)

	assert.Equal(t, first.Meaning, second.Meaning)
	assert.Equal(t, first.POS, second.POS)
	assert.Equal(t, "RUN", second.Word)
	f.dict.AssertNumberOfCalls(t, "Lookup", 1)
	f.lexical.AssertNumberOfCalls(t, "PartOfSpeech", 1)
}

func TestEnricher_EmptyWord(t *testing.T) {
	f := newEnrichFixture(t)

	_, err := f.enricher.Enrich(context.Background(), "   ", false)

	assert.ErrorIs(t, err, domain.ErrEmptyWord)
	f.dict.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
}

func TestCleanSynonyms(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil", input: nil, expected: nil},
		{name: "phrases and symbols dropped", input: []string{"well-off", "go on", "a1", "rich"}, expected: []string{"well-off", "rich"}},
		{
			name:     "capped at eight",
			input:    []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"},
			expected: []string{"a", "b", "c", "d", "e", "f", "g", "h"},
		},
		{name: "dedupe is case-insensitive", input: []string{"Glad", "glad", "GLAD"}, expected: []string{"glad"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanSynonyms(tt.input))
		})
	}
}

func TestPickBestSense(t *testing.T) {
	meanings := []lookup.Meaning{
		{PartOfSpeech: "noun", Definitions: []lookup.Definition{{Definition: ""}, {Definition: "second", Example: "ex"}}},
		{PartOfSpeech: "Verb", Definitions: []lookup.Definition{{Definition: "plain verb"}}},
	}

	s, ok := pickBestSense(meanings, "verb")
	require.True(t, ok)
	assert.Equal(t, "plain verb", s.definition)
	assert.Equal(t, "verb", s.pos)

	s, ok = pickBestSense(meanings, "adjective")
	require.True(t, ok)
	assert.Equal(t, "second", s.definition)

	_, ok = pickBestSense(nil, "noun")
	assert.False(t, ok)
}
