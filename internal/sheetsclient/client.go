// Пакет sheetsclient — клиент Google Sheets API v4 поверх google.golang.org/api/sheets/v4.
// Авторизация через OAuth2 (ключ сервисного аккаунта), чтение метаданных
// и значений диапазона, запись одной ячейки без интерпретации формул.
package sheetsclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/bigkaa/sheetcheck/internal/domain/model"
)

// ErrNotFound — документ или диапазон не найден.
var ErrNotFound = errors.New("таблица не найдена")

// APIError — ответ Sheets API с кодом, отличным от 2xx.
type APIError struct {
	StatusCode int
	Message    string
	cause      error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Sheets API вернул статус %d: %s", e.StatusCode, e.Message)
}

// Unwrap отдаёт исходную *googleapi.Error и ErrNotFound для 404.
func (e *APIError) Unwrap() []error {
	errs := []error{e.cause}
	if e.StatusCode == http.StatusNotFound {
		errs = append(errs, ErrNotFound)
	}
	return errs
}

// Client — клиент Google Sheets API.
type Client struct {
	svc    *sheets.Service
	logger *slog.Logger
}

// New создаёт клиент с заданным источником токенов.
// baseURL — базовый URL API (например, https://sheets.googleapis.com).
// timeout — таймаут HTTP-запросов (SC_SHEETS_TIMEOUT).
func New(
	ctx context.Context,
	baseURL string,
	timeout time.Duration,
	ts oauth2.TokenSource,
	logger *slog.Logger,
) (*Client, error) {
	httpClient := oauth2.NewClient(ctx, ts)
	httpClient.Timeout = timeout

	svc, err := sheets.NewService(ctx,
		option.WithHTTPClient(httpClient),
		option.WithEndpoint(strings.TrimRight(baseURL, "/")+"/"),
	)
	if err != nil {
		return nil, fmt.Errorf("создание сервиса Sheets API: %w", err)
	}

	return &Client{
		svc:    svc,
		logger: logger.With(slog.String("component", "sheets_client")),
	}, nil
}

// NewFromCredentialsFile создаёт клиент по JSON-ключу сервисного аккаунта.
func NewFromCredentialsFile(
	ctx context.Context,
	baseURL string,
	credentialsFile string,
	timeout time.Duration,
	logger *slog.Logger,
) (*Client, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("чтение ключа сервисного аккаунта: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("разбор ключа сервисного аккаунта: %w", err)
	}

	logger.Info("Ключ сервисного аккаунта Google загружен",
		slog.String("credentials_file", credentialsFile),
	)
	return New(ctx, baseURL, timeout, creds.TokenSource, logger)
}

// GetMetadata запрашивает свойства первого листа документа.
func (c *Client) GetMetadata(ctx context.Context, spreadsheetID string) (*model.SheetMetadata, error) {
	resp, err := c.svc.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("метаданные таблицы %s: %w", spreadsheetID, apiError(err))
	}
	if len(resp.Sheets) == 0 || resp.Sheets[0].Properties == nil {
		return nil, fmt.Errorf("метаданные таблицы %s: %w: документ не содержит листов", spreadsheetID, ErrNotFound)
	}

	p := resp.Sheets[0].Properties
	md := &model.SheetMetadata{Title: p.Title}
	if p.GridProperties != nil {
		md.RowCount = int(p.GridProperties.RowCount)
		md.ColumnCount = int(p.GridProperties.ColumnCount)
	}
	return md, nil
}

// GetValues читает значения диапазона в форматированном виде.
// Отсутствующие в ответе хвостовые ячейки не добавляются.
func (c *Client) GetValues(ctx context.Context, spreadsheetID, rangeExpr string) ([][]string, error) {
	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, rangeExpr).
		MajorDimension("ROWS").
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("значения %s!%s: %w", spreadsheetID, rangeExpr, apiError(err))
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = cellString(v)
		}
		rows[i] = cells
	}
	return rows, nil
}

// UpdateCell записывает значение в одну ячейку как есть (valueInputOption=RAW).
func (c *Client) UpdateCell(ctx context.Context, spreadsheetID, rangeExpr, value string) error {
	body := &sheets.ValueRange{
		Range:          rangeExpr,
		MajorDimension: "ROWS",
		Values:         [][]any{{value}},
	}
	_, err := c.svc.Spreadsheets.Values.Update(spreadsheetID, rangeExpr, body).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("запись %s!%s: %w", spreadsheetID, rangeExpr, apiError(err))
	}

	c.logger.Debug("Ячейка записана",
		slog.String("spreadsheet_id", spreadsheetID),
		slog.String("range", rangeExpr),
	)
	return nil
}

// apiError приводит *googleapi.Error к APIError; прочие ошибки (сеть,
// таймаут, отмена контекста) возвращаются без изменений.
func apiError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	msg := gerr.Message
	if msg == "" {
		msg = strings.TrimSpace(gerr.Body)
	}
	return &APIError{StatusCode: gerr.Code, Message: msg, cause: gerr}
}

// cellString преобразует значение ячейки JSON в строку.
func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprint(t)
	}
}
