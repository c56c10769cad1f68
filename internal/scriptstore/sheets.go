package scriptstore

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/saadbenchakroun/auto-video-generator/internal/config"
	"github.com/saadbenchakroun/auto-video-generator/internal/queue"
	"github.com/saadbenchakroun/auto-video-generator/internal/services"
)

// SheetsStore reads and writes script rows in a Google Sheets worksheet.
// Columns are resolved by header name from the first row, so the sheet layout
// can change without code changes.
type SheetsStore struct {
	svc           *sheets.Service
	spreadsheetID string
	worksheet     string
	idColumn      string
	scriptColumn  string
	statusColumn  string
	searchKeyword string

	mu      sync.Mutex
	headers map[string]int
}

// NewSheetsStore builds a store from the sheets configuration section.
func NewSheetsStore(ctx context.Context, cfg config.Sheets) (*SheetsStore, error) {
	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "scriptstore", "connect", "create sheets service", err)
	}
	return &SheetsStore{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		worksheet:     cfg.Worksheet,
		idColumn:      cfg.IDColumn,
		scriptColumn:  cfg.ScriptColumn,
		statusColumn:  cfg.StatusColumn,
		searchKeyword: cfg.SearchKeyword,
	}, nil
}

// FetchPending scans the worksheet for rows whose status column matches the
// configured pending keyword.
func (s *SheetsStore) FetchPending(ctx context.Context, limit int) ([]PendingScript, error) {
	if limit <= 0 {
		return nil, nil
	}
	values, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.worksheet).Context(ctx).Do()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "scriptstore", "fetch", "read worksheet", err)
	}
	if len(values.Values) < 2 {
		return nil, nil
	}

	headers := headerIndex(values.Values[0])
	s.setHeaders(headers)

	idCol, ok := headers[strings.ToLower(s.idColumn)]
	if !ok {
		idCol = -1
	}
	scriptCol, ok := headers[strings.ToLower(s.scriptColumn)]
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "scriptstore", "fetch",
			fmt.Sprintf("script column %q not found in header row", s.scriptColumn), nil)
	}
	statusCol, ok := headers[strings.ToLower(s.statusColumn)]
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "scriptstore", "fetch",
			fmt.Sprintf("status column %q not found in header row", s.statusColumn), nil)
	}

	var pending []PendingScript
	for i, row := range values.Values[1:] {
		if len(pending) >= limit {
			break
		}
		status := cellString(row, statusCol)
		if !strings.EqualFold(strings.TrimSpace(status), s.searchKeyword) {
			continue
		}
		text := strings.TrimSpace(cellString(row, scriptCol))
		if text == "" {
			continue
		}
		// Sheet rows are 1-based and the header occupies row 1.
		rowNumber := int64(i + 2)
		id := strings.TrimSpace(cellString(row, idCol))
		if id == "" {
			id = strconv.FormatInt(rowNumber, 10)
		}
		pending = append(pending, PendingScript{ID: id, RowHandle: rowNumber, Text: text})
	}
	return pending, nil
}

// PersistStatus overwrites the status cell for a row, batching any extra
// columns into the same values update.
func (s *SheetsStore) PersistStatus(ctx context.Context, rowHandle int64, status queue.Status, extra map[string]string) error {
	headers, err := s.loadHeaders(ctx)
	if err != nil {
		return err
	}
	statusCol, ok := headers[strings.ToLower(s.statusColumn)]
	if !ok {
		return services.Wrap(services.ErrConfiguration, "scriptstore", "persist",
			fmt.Sprintf("status column %q not found in header row", s.statusColumn), nil)
	}

	data := []*sheets.ValueRange{{
		Range:  s.cellRange(statusCol, rowHandle),
		Values: [][]any{{status.DisplayValue()}},
	}}
	for column, value := range extra {
		idx, ok := headers[strings.ToLower(column)]
		if !ok {
			continue
		}
		data = append(data, &sheets.ValueRange{
			Range:  s.cellRange(idx, rowHandle),
			Values: [][]any{{value}},
		})
	}

	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}
	if _, err := s.svc.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return services.Wrap(services.ErrTransient, "scriptstore", "persist", "batch update values", err)
	}
	return nil
}

func (s *SheetsStore) cellRange(column int, row int64) string {
	return fmt.Sprintf("%s!%s%d", s.worksheet, columnLetter(column), row)
}

func (s *SheetsStore) setHeaders(headers map[string]int) {
	s.mu.Lock()
	s.headers = headers
	s.mu.Unlock()
}

func (s *SheetsStore) loadHeaders(ctx context.Context) (map[string]int, error) {
	s.mu.Lock()
	cached := s.headers
	s.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	headerRange := fmt.Sprintf("%s!1:1", s.worksheet)
	values, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, headerRange).Context(ctx).Do()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "scriptstore", "persist", "read header row", err)
	}
	if len(values.Values) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "scriptstore", "persist", "worksheet has no header row", nil)
	}
	headers := headerIndex(values.Values[0])
	s.setHeaders(headers)
	return headers, nil
}

func headerIndex(row []any) map[string]int {
	headers := make(map[string]int, len(row))
	for i, cell := range row {
		name := strings.ToLower(strings.TrimSpace(fmt.Sprint(cell)))
		if name == "" {
			continue
		}
		if _, exists := headers[name]; !exists {
			headers[name] = i
		}
	}
	return headers
}

func cellString(row []any, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return fmt.Sprint(row[index])
}

// columnLetter converts a zero-based column index to A1 notation.
func columnLetter(index int) string {
	if index < 0 {
		return "A"
	}
	var letters []byte
	for index >= 0 {
		letters = append([]byte{byte('A' + index%26)}, letters...)
		index = index/26 - 1
	}
	return string(letters)
}
