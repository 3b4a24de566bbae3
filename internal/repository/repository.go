package repository

import (
	"context"
	"errors"
)

// Configuration errors. These are fatal and never retried.
var (
	ErrMissingCredentials = errors.New("service credential file not found")
	ErrMissingDocument    = errors.New("target document is not configured")
)

// ErrSheetNotFound is returned by SheetBackend.Sheet when no tab has the title
var ErrSheetNotFound = errors.New("sheet not found")

// Sheet is one tab of the remote tabular store. Rows and columns are 1-based.
type Sheet interface {
	Title() string
	// Rows returns every non-trailing row of the tab in order
	Rows(ctx context.Context) ([][]string, error)
	// RowValues returns a single row; a missing row is returned as empty
	RowValues(ctx context.Context, row int) ([]string, error)
	// UpdateRows overwrites rows starting at startRow, column 1
	UpdateRows(ctx context.Context, startRow int, rows [][]string) error
	// InsertRow inserts values at row, shifting existing rows down
	InsertRow(ctx context.Context, row int, values []string) error
	// AppendRows adds rows after the last non-empty row
	AppendRows(ctx context.Context, rows [][]string) error
	UpdateCell(ctx context.Context, row, col int, value string) error
	Clear(ctx context.Context) error
}

// SheetBackend opens and creates tabs of one remote document
type SheetBackend interface {
	Sheet(ctx context.Context, title string) (Sheet, error)
	AddSheet(ctx context.Context, title string, rows, cols int) (Sheet, error)
}

// UserRepository defines bot user access operations
type UserRepository interface {
	IsAuthorized(userID int64) (bool, error)
	AuthorizeUser(userID int64) error
	EnsureUserExists(userID int64) error
}
