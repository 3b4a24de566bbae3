package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"vocabsheet/internal/domain"
	"vocabsheet/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestVocab(enricher *Enricher, rows ...[]string) (*VocabService, *testutil.MemoryBackend) {
	table, backend := newTestTable(rows...)
	dedup := NewDedupCache(table, testutil.NewTestLogger())
	clock := testutil.FixedClock(2025, time.January, 1)
	return NewVocabService(table, dedup, enricher, clock, testutil.NewTestLogger()), backend
}

func TestVocabService_AddWord_Dedup(t *testing.T) {
	vocab, backend := newTestVocab(nil, testutil.HeaderRow())

	rec := domain.Record{Word: " apple ", POS: "noun", Meaning: "fruit"}

	added, err := vocab.AddWord(context.Background(), rec)
	require.NoError(t, err)
	assert.True(t, added)

	rec.Word = "APPLE"
	rec.Meaning = " Fruit"
	added, err = vocab.AddWord(context.Background(), rec)
	require.NoError(t, err)
	assert.False(t, added)

	rows := backend.Get(testSheet).Snapshot()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"apple", "n.", "fruit", "", "", "", "", "2025-01-01", ""}, rows[1])
	assert.Equal(t, 1, backend.Get(testSheet).Calls("AppendRows"))
}

func TestVocabService_AddWord_Validation(t *testing.T) {
	tests := []struct {
		name string
		rec  domain.Record
	}{
		{name: "empty word", rec: domain.Record{Word: "  ", Meaning: "x"}},
		{name: "bad review date", rec: domain.Record{Word: "apple", ReviewDate: "someday"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vocab, backend := newTestVocab(nil, testutil.HeaderRow())

			added, err := vocab.AddWord(context.Background(), tt.rec)

			assert.Error(t, err)
			assert.False(t, added)
			assert.Equal(t, 0, backend.Get(testSheet).Calls("Rows"))
		})
	}
}

func TestVocabService_AddWord_NormalizesReviewDate(t *testing.T) {
	vocab, backend := newTestVocab(nil, testutil.HeaderRow())

	_, err := vocab.AddWord(context.Background(), domain.Record{Word: "apple", ReviewDate: "Jan 9, 2025"})
	require.NoError(t, err)

	assert.Equal(t, "2025-01-09", backend.Get(testSheet).Snapshot()[1][7])
}

func TestVocabService_SmartAdd(t *testing.T) {
	f := newEnrichFixture(t)
	f.dict.On("Lookup", mock.Anything, "run").Return(json.RawMessage(runEntries), nil)
	f.lexical.On("Synonyms", mock.Anything, "run").Return([]string{"sprint"}, nil)
	f.lexical.On("PartOfSpeech", mock.Anything, "run").Return("verb", nil)

	vocab, backend := newTestVocab(f.enricher, testutil.HeaderRow())

	rec, added, err := vocab.SmartAdd(context.Background(), "run", domain.Record{Topic: "sport"}, false)

	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, "sport", rec.Topic)
	assert.Equal(t,
		[]string{"run", "v.", "To manage.", "She runs a shop.", "sprint", "sport", "dictionaryapi.dev", "2025-01-01", ""},
		backend.Get(testSheet).Snapshot()[1],
	)
}

func TestVocabService_SmartAdd_WithoutEnricher(t *testing.T) {
	vocab, _ := newTestVocab(nil, testutil.HeaderRow())

	_, _, err := vocab.SmartAdd(context.Background(), "run", domain.Record{}, false)

	assert.Error(t, err)
}

func TestVocabService_Peek(t *testing.T) {
	rows := [][]string{testutil.HeaderRow()}
	for i := 0; i < 25; i++ {
		rows = append(rows, row(strings.Repeat("a", i+1), "m", ""))
	}
	vocab, _ := newTestVocab(nil, rows...)

	tests := []struct {
		n        int
		expected int
	}{
		{n: 0, expected: DefaultPeekSize},
		{n: 5, expected: 5},
		{n: 100, expected: 25},
	}

	for _, tt := range tests {
		records, err := vocab.Peek(context.Background(), tt.n)
		require.NoError(t, err)
		assert.Len(t, records, tt.expected)
	}
}

func TestVocabService_Backup_CSV(t *testing.T) {
	vocab, _ := newTestVocab(nil,
		testutil.HeaderRow(),
		row("蘋果", "fruit, red", "2025-01-01"),
		[]string{},
		[]string{"pear"},
	)

	var buf bytes.Buffer
	n, err := vocab.Backup(context.Background(), &buf, BackupCSV)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.True(t, strings.HasPrefix(buf.String(), "\ufeff"))

	records, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), "\ufeff"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, domain.Headers, records[0])
	assert.Equal(t, "fruit, red", records[1][2])
	assert.Len(t, records[2], len(domain.Headers))
}

func TestVocabService_Backup_XLSX(t *testing.T) {
	vocab, _ := newTestVocab(nil, testutil.HeaderRow(), row("apple", "fruit", "2025-01-01"))

	var buf bytes.Buffer
	n, err := vocab.Backup(context.Background(), &buf, BackupXLSX)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(testSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "apple", rows[1][0])
	assert.Equal(t, "2025-01-01", rows[1][7])
}

func TestVocabService_Backup_UnknownFormat(t *testing.T) {
	vocab, _ := newTestVocab(nil, testutil.HeaderRow())

	_, err := vocab.Backup(context.Background(), &bytes.Buffer{}, BackupFormat("pdf"))

	assert.Error(t, err)
}

func TestVocabService_AddWord_Concurrent(t *testing.T) {
	vocab, backend := newTestVocab(nil, testutil.HeaderRow())
	backend.Get(testSheet).Delay("AppendRows", 50*time.Millisecond)

	const callers = 5
	results := make([]bool, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = vocab.AddWord(context.Background(), domain.Record{Word: "apple", Meaning: "fruit"})
		}(i)
	}
	wg.Wait()

	added := 0
	for i := range results {
		require.NoError(t, errs[i])
		if results[i] {
			added++
		}
	}
	assert.Equal(t, 1, added)
	assert.Len(t, backend.Get(testSheet).Snapshot(), 2)
}

func TestVocabService_AddWord_RefreshKeepsNewKey(t *testing.T) {
	vocab, backend := newTestVocab(nil, testutil.HeaderRow())
	sheet := backend.Get(testSheet)
	stats := NewStatsService(vocab.table, vocab.dedup, NewReviewService(vocab.table, nil, testutil.NewTestLogger()),
		testutil.FixedClock(2025, time.January, 1), testutil.NewTestLogger())

	_, err := vocab.table.Open(context.Background())
	require.NoError(t, err)
	sheet.Delay("Rows", 30*time.Millisecond)
	sheet.Delay("AppendRows", 30*time.Millisecond)

	var wg sync.WaitGroup
	var refreshErr, addErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		refreshErr = stats.RefreshDueView(context.Background(), "Due")
	}()
	go func() {
		defer wg.Done()
		_, addErr = vocab.AddWord(context.Background(), domain.Record{Word: "apple", Meaning: "fruit"})
	}()
	wg.Wait()
	require.NoError(t, refreshErr)
	require.NoError(t, addErr)

	added, err := vocab.AddWord(context.Background(), domain.Record{Word: "apple", Meaning: "fruit"})
	require.NoError(t, err)
	assert.False(t, added)
	assert.Len(t, sheet.Snapshot(), 2)
}
