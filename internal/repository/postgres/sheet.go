package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"vocabsheet/internal/repository"

	"github.com/lib/pq"
)

// SheetRepo implements repository.SheetBackend on Postgres.
// Each tab is a row in sheets; its cells live in sheet_rows keyed by row number.
type SheetRepo struct {
	db *sql.DB
}

// NewSheetRepo creates a new sheet repository
func NewSheetRepo(db *sql.DB) *SheetRepo {
	return &SheetRepo{db: db}
}

// Sheet opens an existing tab
func (r *SheetRepo) Sheet(ctx context.Context, title string) (repository.Sheet, error) {
	var found string
	err := r.db.QueryRowContext(ctx, `SELECT title FROM sheets WHERE title = $1`, title).Scan(&found)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", repository.ErrSheetNotFound, title)
	}
	if err != nil {
		return nil, err
	}
	return &Sheet{db: r.db, title: found}, nil
}

// AddSheet creates a tab
func (r *SheetRepo) AddSheet(ctx context.Context, title string, rows, cols int) (repository.Sheet, error) {
	query := `
		INSERT INTO sheets (title, row_count, col_count)
		VALUES ($1, $2, $3)
		ON CONFLICT (title) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, title, rows, cols); err != nil {
		return nil, err
	}
	return &Sheet{db: r.db, title: title}, nil
}

// Sheet is one tab stored in Postgres
type Sheet struct {
	db    *sql.DB
	title string
}

// Title returns the tab name
func (s *Sheet) Title() string {
	return s.title
}

// Rows returns all rows in order. Gaps in row numbers come back as empty rows.
func (s *Sheet) Rows(ctx context.Context) ([][]string, error) {
	query := `
		SELECT row_num, array_replace(cells, NULL, '')
		FROM sheet_rows
		WHERE sheet = $1
		ORDER BY row_num
	`
	rows, err := s.db.QueryContext(ctx, query, s.title)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var rowNum int
		var cells []string
		if err := rows.Scan(&rowNum, pq.Array(&cells)); err != nil {
			return nil, err
		}
		for len(out) < rowNum-1 {
			out = append(out, []string{})
		}
		out = append(out, cells)
	}

	return out, rows.Err()
}

// RowValues returns one row, or nil when it does not exist
func (s *Sheet) RowValues(ctx context.Context, row int) ([]string, error) {
	query := `SELECT array_replace(cells, NULL, '') FROM sheet_rows WHERE sheet = $1 AND row_num = $2`

	var cells []string
	err := s.db.QueryRowContext(ctx, query, s.title, row).Scan(pq.Array(&cells))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cells, nil
}

const upsertRowQuery = `
	INSERT INTO sheet_rows (sheet, row_num, cells)
	VALUES ($1, $2, $3)
	ON CONFLICT (sheet, row_num)
	DO UPDATE SET cells = EXCLUDED.cells
`

// UpdateRows overwrites rows starting at startRow
func (s *Sheet) UpdateRows(ctx context.Context, startRow int, rows [][]string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for i, row := range rows {
			if _, err := tx.ExecContext(ctx, upsertRowQuery, s.title, startRow+i, pq.Array(row)); err != nil {
				return fmt.Errorf("upsert row %d: %w", startRow+i, err)
			}
		}
		return nil
	})
}

// InsertRow shifts rows at and below row down by one and writes values at row.
// The shift goes through negative row numbers so the primary key never collides.
func (s *Sheet) InsertRow(ctx context.Context, row int, values []string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`UPDATE sheet_rows SET row_num = -(row_num + 1) WHERE sheet = $1 AND row_num >= $2`,
			s.title, row,
		); err != nil {
			return fmt.Errorf("shift rows: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE sheet_rows SET row_num = -row_num WHERE sheet = $1 AND row_num < 0`,
			s.title,
		); err != nil {
			return fmt.Errorf("restore rows: %w", err)
		}
		if _, err := tx.ExecContext(ctx, upsertRowQuery, s.title, row, pq.Array(values)); err != nil {
			return fmt.Errorf("insert row: %w", err)
		}
		return nil
	})
}

// AppendRows writes rows after the current last row
func (s *Sheet) AppendRows(ctx context.Context, rows [][]string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		// Serialize appenders to the same tab
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, s.title); err != nil {
			return fmt.Errorf("lock sheet: %w", err)
		}

		var last int
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(row_num), 0) FROM sheet_rows WHERE sheet = $1`, s.title,
		).Scan(&last); err != nil {
			return fmt.Errorf("find last row: %w", err)
		}

		for i, row := range rows {
			if _, err := tx.ExecContext(ctx, upsertRowQuery, s.title, last+1+i, pq.Array(row)); err != nil {
				return fmt.Errorf("append row %d: %w", last+1+i, err)
			}
		}
		return nil
	})
}

// UpdateCell writes a single cell, creating the row if needed
func (s *Sheet) UpdateCell(ctx context.Context, row, col int, value string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sheet_rows SET cells[$3] = $4 WHERE sheet = $1 AND row_num = $2`,
		s.title, row, col, value,
	)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	cells := make([]string, col)
	cells[col-1] = value
	_, err = s.db.ExecContext(ctx, upsertRowQuery, s.title, row, pq.Array(cells))
	return err
}

// Clear deletes every row of the tab
func (s *Sheet) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sheet_rows WHERE sheet = $1`, s.title)
	return err
}

func (s *Sheet) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
