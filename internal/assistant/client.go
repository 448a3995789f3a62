// Пакет assistant — клиент OpenAI Assistants API (v2).
// Один вызов Run: создание потока, добавление сообщения пользователя,
// запуск ассистента, опрос состояния запуска и чтение ответа ассистента.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const maxErrorBodyBytes = 2048

// Ошибки анализатора.
var (
	// ErrUnauthorized — ключ API отклонён (401/403).
	ErrUnauthorized = errors.New("анализатор: доступ запрещён")
	// ErrRateLimited — превышен лимит запросов (429).
	ErrRateLimited = errors.New("анализатор: превышен лимит запросов")
	// ErrUnavailable — анализатор недоступен (сеть, 5xx).
	ErrUnavailable = errors.New("анализатор недоступен")
	// ErrRunFailed — запуск завершился неуспешным статусом.
	ErrRunFailed = errors.New("запуск ассистента завершился неуспешно")
	// ErrEmptyReply — в потоке нет текстового ответа ассистента.
	ErrEmptyReply = errors.New("ассистент не вернул ответ")
)

// Options — параметры клиента.
type Options struct {
	// BaseURL — базовый URL API (https://api.openai.com/v1)
	BaseURL string
	// APIKey — ключ API
	APIKey string
	// Timeout — таймаут одного HTTP-запроса
	Timeout time.Duration
	// PollInterval — интервал опроса состояния запуска
	PollInterval time.Duration
	// RunTimeout — предельное время одного запуска (0 — без ограничения)
	RunTimeout time.Duration
	// RateLimit — запросов в секунду (0 — без ограничения)
	RateLimit float64
}

// Client — клиент Assistants API.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	apiKey       string
	pollInterval time.Duration
	runTimeout   time.Duration
	limiter      *rate.Limiter
	logger       *slog.Logger
}

// New создаёт клиент Assistants API.
func New(opts Options, logger *slog.Logger) *Client {
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = time.Second
	}

	return &Client{
		httpClient:   &http.Client{Timeout: opts.Timeout},
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		apiKey:       opts.APIKey,
		pollInterval: pollInterval,
		runTimeout:   opts.RunTimeout,
		limiter:      rate.NewLimiter(limit, 1),
		logger:       logger.With(slog.String("component", "assistant_client")),
	}
}

// run — объект запуска.
type run struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	LastError *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"last_error"`
}

// messageList — ответ GET /threads/{id}/messages.
type messageList struct {
	Data []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text struct {
				Value string `json:"value"`
			} `json:"text"`
		} `json:"content"`
	} `json:"data"`
}

// Run отправляет сообщение ассистенту assistantID и возвращает текст
// его последнего ответа. Ожидание ограничено RunTimeout и контекстом.
func (c *Client) Run(ctx context.Context, assistantID, message string) (string, error) {
	if c.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.runTimeout)
		defer cancel()
	}

	var thread struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/threads", struct{}{}, &thread); err != nil {
		return "", fmt.Errorf("создание потока: %w", err)
	}

	msg := map[string]string{"role": "user", "content": message}
	if err := c.do(ctx, http.MethodPost, "/threads/"+url.PathEscape(thread.ID)+"/messages", msg, nil); err != nil {
		return "", fmt.Errorf("добавление сообщения: %w", err)
	}

	var r run
	body := map[string]string{"assistant_id": assistantID}
	if err := c.do(ctx, http.MethodPost, "/threads/"+url.PathEscape(thread.ID)+"/runs", body, &r); err != nil {
		return "", fmt.Errorf("запуск ассистента: %w", err)
	}

	c.logger.Debug("Запуск ассистента создан",
		slog.String("assistant_id", assistantID),
		slog.String("thread_id", thread.ID),
		slog.String("run_id", r.ID),
	)

	if err := c.waitRun(ctx, thread.ID, &r); err != nil {
		return "", err
	}

	var list messageList
	path := "/threads/" + url.PathEscape(thread.ID) + "/messages?order=desc&limit=20"
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return "", fmt.Errorf("чтение ответа: %w", err)
	}
	for _, m := range list.Data {
		if m.Role != "assistant" {
			continue
		}
		for _, part := range m.Content {
			if part.Type == "text" {
				return part.Text.Value, nil
			}
		}
	}
	return "", ErrEmptyReply
}

// waitRun опрашивает запуск до терминального статуса.
func (c *Client) waitRun(ctx context.Context, threadID string, r *run) error {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	path := "/threads/" + url.PathEscape(threadID) + "/runs/"
	for {
		switch r.Status {
		case "completed":
			return nil
		case "failed", "cancelled", "expired", "incomplete", "requires_action":
			reason := r.Status
			if r.LastError != nil && r.LastError.Message != "" {
				reason += ": " + r.LastError.Message
			}
			return fmt.Errorf("%w: %s", ErrRunFailed, reason)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("ожидание запуска %s: %w", r.ID, ctx.Err())
		case <-ticker.C:
		}

		id := r.ID
		if err := c.do(ctx, http.MethodGet, path+url.PathEscape(id), nil, r); err != nil {
			return fmt.Errorf("состояние запуска %s: %w", id, err)
		}
	}
}

// do выполняет JSON-запрос к API с учётом лимита запросов.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("сериализация запроса: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("создание запроса: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("OpenAI-Beta", "assistants=v2")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req) //nolint:gosec // G704: URL из конфигурации
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: статус %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return fmt.Errorf("ошибка API анализатора: %s - %s", resp.Status, strings.TrimSpace(string(errorBody)))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("декодирование ответа анализатора: %w", err)
	}
	return nil
}
