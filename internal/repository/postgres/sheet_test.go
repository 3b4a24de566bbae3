package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"vocabsheet/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func q(s string) string {
	return regexp.QuoteMeta(s)
}

func TestSheetRepo_Sheet(t *testing.T) {
	tests := []struct {
		name           string
		mockRows       *sqlmock.Rows
		mockError      error
		expectNotFound bool
		expectedError  bool
	}{
		{
			name:     "sheet exists",
			mockRows: sqlmock.NewRows([]string{"title"}).AddRow("Sheet1"),
		},
		{
			name:           "sheet missing",
			mockError:      sql.ErrNoRows,
			expectNotFound: true,
			expectedError:  true,
		},
		{
			name:          "query error",
			mockError:     errors.New("connection reset"),
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			expect := mock.ExpectQuery(q("SELECT title FROM sheets WHERE title = $1")).WithArgs("Sheet1")
			if tt.mockError != nil {
				expect.WillReturnError(tt.mockError)
			} else {
				expect.WillReturnRows(tt.mockRows)
			}

			sheet, err := NewSheetRepo(db).Sheet(context.Background(), "Sheet1")

			if tt.expectedError {
				assert.Error(t, err)
				assert.Equal(t, tt.expectNotFound, errors.Is(err, repository.ErrSheetNotFound))
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "Sheet1", sheet.Title())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSheetRepo_AddSheet(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO sheets").
		WithArgs("Due", 1000, 10).
		WillReturnResult(sqlmock.NewResult(0, 1))

	sheet, err := NewSheetRepo(db).AddSheet(context.Background(), "Due", 1000, 10)

	assert.NoError(t, err)
	assert.Equal(t, "Due", sheet.Title())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSheet_Rows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT row_num, array_replace").
		WithArgs("Sheet1").
		WillReturnRows(sqlmock.NewRows([]string{"row_num", "cells"}).
			AddRow(1, "{Word,POS}").
			AddRow(3, "{apple,n.}"))

	s := &Sheet{db: db, title: "Sheet1"}
	rows, err := s.Rows(context.Background())

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Word", "POS"}, {}, {"apple", "n."}}, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSheet_RowValues(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT array_replace").
		WithArgs("Sheet1", 1).
		WillReturnError(sql.ErrNoRows)

	s := &Sheet{db: db, title: "Sheet1"}
	row, err := s.RowValues(context.Background(), 1)

	assert.NoError(t, err)
	assert.Nil(t, row)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSheet_AppendRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(q("SELECT pg_advisory_xact_lock(hashtext($1))")).
		WithArgs("Sheet1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(q("SELECT COALESCE(MAX(row_num), 0) FROM sheet_rows WHERE sheet = $1")).
		WithArgs("Sheet1").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(4))
	mock.ExpectExec("INSERT INTO sheet_rows").
		WithArgs("Sheet1", 5, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO sheet_rows").
		WithArgs("Sheet1", 6, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s := &Sheet{db: db, title: "Sheet1"}
	err = s.AppendRows(context.Background(), [][]string{{"pear"}, {"plum"}})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSheet_AppendRows_RollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	s := &Sheet{db: db, title: "Sheet1"}
	err = s.AppendRows(context.Background(), [][]string{{"pear"}})

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSheet_InsertRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(q("UPDATE sheet_rows SET row_num = -(row_num + 1)")).
		WithArgs("Sheet1", 1).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(q("UPDATE sheet_rows SET row_num = -row_num")).
		WithArgs("Sheet1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO sheet_rows").
		WithArgs("Sheet1", 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s := &Sheet{db: db, title: "Sheet1"}
	err = s.InsertRow(context.Background(), 1, []string{"Word", "POS"})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSheet_UpdateCell(t *testing.T) {
	tests := []struct {
		name         string
		rowsAffected int64
		expectInsert bool
	}{
		{name: "existing row", rowsAffected: 1},
		{name: "missing row is created", rowsAffected: 0, expectInsert: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectExec(q("UPDATE sheet_rows SET cells[$3] = $4")).
				WithArgs("Sheet1", 2, 8, "2025-01-08").
				WillReturnResult(sqlmock.NewResult(0, tt.rowsAffected))
			if tt.expectInsert {
				mock.ExpectExec("INSERT INTO sheet_rows").
					WithArgs("Sheet1", 2, sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(0, 1))
			}

			s := &Sheet{db: db, title: "Sheet1"}
			err = s.UpdateCell(context.Background(), 2, 8, "2025-01-08")

			assert.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSheet_Clear(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(q("DELETE FROM sheet_rows WHERE sheet = $1")).
		WithArgs("Due").
		WillReturnResult(sqlmock.NewResult(0, 5))

	s := &Sheet{db: db, title: "Due"}
	assert.NoError(t, s.Clear(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
