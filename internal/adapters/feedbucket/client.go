package feedbucket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"feedbucket-mcp/internal/domain"
	"feedbucket-mcp/internal/infra/metrics"
)

// unreadableBody подставляется, когда тело ответа с ошибкой не удалось прочитать.
const unreadableBody = "Unknown error"

// Config - параметры подключения к API Feedbucket.
type Config struct {
	BaseURL    string
	ProjectID  string
	PrivateKey string
	APIKey     string
	// Timeout 0 означает поведение http.Client по умолчанию, то есть без таймаута.
	Timeout time.Duration
}

// Client реализует domain.FeedbackAPI поверх REST API Feedbucket.
type Client struct {
	baseURL    string
	projectID  string
	privateKey string
	apiKey     string
	httpClient *http.Client
	log        zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

var _ domain.FeedbackAPI = (*Client)(nil)

func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("baseURL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("project id is required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		projectID:  cfg.ProjectID,
		privateKey: cfg.PrivateKey,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// BaseURL возвращает адрес API без завершающего слэша.
func (c *Client) BaseURL() string { return c.baseURL }

// HasAPIKey сообщает, настроен ли публичный токен доступа.
func (c *Client) HasAPIKey() bool { return c.apiKey != "" }

// HasPrivateKey сообщает, настроен ли приватный ключ для изменяющих вызовов.
func (c *Client) HasPrivateKey() bool { return c.privateKey != "" }

// GetProject загружает проект вместе со всей коллекцией отзывов.
func (c *Client) GetProject(ctx context.Context) (domain.Project, error) {
	endpoint := "/projects/" + url.PathEscape(c.projectID)
	if c.apiKey != "" {
		endpoint += "?authToken=" + url.QueryEscape(c.apiKey)
	}
	raw, err := c.Request(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Project{}, err
	}
	var project domain.Project
	if err := json.Unmarshal(raw, &project); err != nil {
		return domain.Project{}, fmt.Errorf("decode project: %w", err)
	}
	return project, nil
}

// AddComment публикует комментарий; Resolve одновременно закрывает отзыв.
func (c *Client) AddComment(ctx context.Context, feedbackID int64, comment domain.NewComment) (json.RawMessage, error) {
	endpoint, err := c.privateEndpoint(fmt.Sprintf("/feedback/%d/comments", feedbackID))
	if err != nil {
		return nil, err
	}
	payload := map[string]any{
		"body":           comment.Body,
		"reporter_name":  comment.ReporterName,
		"reporter_email": comment.ReporterEmail,
		"resolve":        comment.Resolve,
	}
	return c.Request(ctx, http.MethodPost, endpoint, payload)
}

// ResolveFeedback помечает отзыв решённым запросом с пустым телом.
func (c *Client) ResolveFeedback(ctx context.Context, feedbackID int64) (json.RawMessage, error) {
	endpoint, err := c.privateEndpoint(fmt.Sprintf("/feedback/%d/resolve", feedbackID))
	if err != nil {
		return nil, err
	}
	return c.Request(ctx, http.MethodPut, endpoint, nil)
}

func (c *Client) privateEndpoint(endpoint string) (string, error) {
	if c.privateKey == "" {
		return "", fmt.Errorf("private key is required for write operations")
	}
	return endpoint + "?key=" + url.QueryEscape(c.privateKey), nil
}

// Request выполняет запрос к baseURL+endpoint и возвращает тело ответа как JSON без проверки схемы.
// Токены авторизации в query string добавляет вызывающая сторона.
func (c *Client) Request(ctx context.Context, method, endpoint string, body any) (raw json.RawMessage, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveNetworkRequest("feedbucket", method, target(endpoint), start, err)
	}()

	var buf io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		buf = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.APIError{StatusCode: 0, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text := unreadableBody
		if data, readErr := io.ReadAll(resp.Body); readErr == nil {
			text = string(data)
		}
		c.log.Error().Int("status", resp.StatusCode).Str("body", text).Msg("feedbucket: api error response")
		return nil, &domain.APIError{StatusCode: resp.StatusCode, Body: text}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.APIError{StatusCode: 0, Err: fmt.Errorf("read response: %w", err)}
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("decode response: body is not valid json")
	}
	return json.RawMessage(data), nil
}

// target возвращает первый сегмент пути для метрик, чтобы не плодить метки по id.
func target(endpoint string) string {
	trimmed := strings.TrimLeft(endpoint, "/")
	if i := strings.IndexAny(trimmed, "/?"); i >= 0 {
		trimmed = trimmed[:i]
	}
	return trimmed
}
