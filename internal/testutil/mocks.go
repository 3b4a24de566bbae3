package testutil

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock for UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) IsAuthorized(userID int64) (bool, error) {
	args := m.Called(userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) AuthorizeUser(userID int64) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockUserRepository) EnsureUserExists(userID int64) error {
	args := m.Called(userID)
	return args.Error(0)
}

// MockDictionarySource is a mock for the primary dictionary lookup
type MockDictionarySource struct {
	mock.Mock
}

func (m *MockDictionarySource) Name() string {
	return "dictionaryapi.dev"
}

func (m *MockDictionarySource) Lookup(ctx context.Context, word string) (json.RawMessage, error) {
	args := m.Called(ctx, word)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

// MockLexicalSource is a mock for the secondary synonym/part-of-speech lookup
type MockLexicalSource struct {
	mock.Mock
}

func (m *MockLexicalSource) Synonyms(ctx context.Context, word string) ([]string, error) {
	args := m.Called(ctx, word)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockLexicalSource) PartOfSpeech(ctx context.Context, word string) (string, error) {
	args := m.Called(ctx, word)
	return args.String(0), args.Error(1)
}

// MockTranslator is a mock for the translation step
type MockTranslator struct {
	mock.Mock
}

func (m *MockTranslator) Translate(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}
