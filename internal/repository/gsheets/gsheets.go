// Package gsheets implements repository.SheetBackend on the Google Sheets API.
package gsheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"

	"vocabsheet/internal/backoff"
	"vocabsheet/internal/repository"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// valueInputOption lets the service interpret values as if typed by a user
const valueInputOption = "USER_ENTERED"

var spreadsheetURLPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`)

// Backend implements repository.SheetBackend for one spreadsheet
type Backend struct {
	svc           *sheets.Service
	spreadsheetID string
}

// New authenticates with a service account credential file and addresses the
// spreadsheet by URL or bare ID. Missing configuration is reported with the
// repository configuration errors.
func New(ctx context.Context, credentialsFile, document string) (*Backend, error) {
	if strings.TrimSpace(document) == "" {
		return nil, repository.ErrMissingDocument
	}
	if _, err := os.Stat(credentialsFile); err != nil {
		return nil, fmt.Errorf("%w: %s", repository.ErrMissingCredentials, credentialsFile)
	}

	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return NewWithService(svc, SpreadsheetID(document)), nil
}

// NewWithService wraps an existing sheets service
func NewWithService(svc *sheets.Service, spreadsheetID string) *Backend {
	return &Backend{svc: svc, spreadsheetID: spreadsheetID}
}

// SpreadsheetID extracts the document ID from a spreadsheet URL.
// Anything that is not a URL is treated as an ID already.
func SpreadsheetID(document string) string {
	document = strings.TrimSpace(document)
	if m := spreadsheetURLPattern.FindStringSubmatch(document); m != nil {
		return m[1]
	}
	return document
}

// Sheet opens a tab by title
func (b *Backend) Sheet(ctx context.Context, title string) (repository.Sheet, error) {
	ss, err := b.svc.Spreadsheets.Get(b.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: spreadsheet %s", repository.ErrMissingDocument, b.spreadsheetID)
		}
		return nil, wrapErr("get spreadsheet", err)
	}

	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == title {
			return b.sheet(s.Properties.SheetId, title), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", repository.ErrSheetNotFound, title)
}

// AddSheet creates a tab with a fixed grid size
func (b *Backend) AddSheet(ctx context.Context, title string, rows, cols int) (repository.Sheet, error) {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: title,
					GridProperties: &sheets.GridProperties{
						RowCount:    int64(rows),
						ColumnCount: int64(cols),
					},
				},
			},
		}},
	}

	resp, err := b.svc.Spreadsheets.BatchUpdate(b.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return nil, wrapErr("add sheet", err)
	}
	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil || resp.Replies[0].AddSheet.Properties == nil {
		return nil, fmt.Errorf("add sheet %q: empty reply", title)
	}

	return b.sheet(resp.Replies[0].AddSheet.Properties.SheetId, title), nil
}

func (b *Backend) sheet(id int64, title string) *Sheet {
	return &Sheet{backend: b, id: id, title: title}
}

// wrapErr maps API errors onto backoff.StatusError so retry classifiers
// can see the status code and message.
func wrapErr(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Body
		}
		return fmt.Errorf("%s: %w", op, &backoff.StatusError{Code: apiErr.Code, Message: msg})
	}
	return fmt.Errorf("%s: %w", op, err)
}
