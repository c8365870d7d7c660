package setup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"feedbucket-mcp/internal/infra/metrics"
)

// ErrProjectIDNotFound возвращается, если ни одна эвристика не нашла id проекта на странице.
var ErrProjectIDNotFound = errors.New("feedbucket project id not found on page")

// maxPageSize ограничивает объём читаемой страницы.
const maxPageSize = 5 << 20

// Эвристики проверяются по порядку, первая сработавшая побеждает.
var projectIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`data-feedbucket\s*=\s*["']([A-Za-z0-9_-]+)["']`),
	regexp.MustCompile(`feedbucket\.js\?[^"'\s>]*\bproject=([A-Za-z0-9_-]+)`),
	regexp.MustCompile(`feedbucketProjectId\s*[:=]\s*["']([A-Za-z0-9_-]+)["']`),
}

// ExtractProjectID ищет id проекта Feedbucket в HTML страницы.
func ExtractProjectID(html string) (string, bool) {
	for _, re := range projectIDPatterns {
		if m := re.FindStringSubmatch(html); len(m) == 2 {
			return m[1], true
		}
	}
	return "", false
}

// Discoverer загружает страницу сайта и извлекает из неё id проекта.
type Discoverer struct {
	httpClient *http.Client
	log        zerolog.Logger
}

type DiscoverOption func(*Discoverer)

func WithDiscoverHTTPClient(client *http.Client) DiscoverOption {
	return func(d *Discoverer) {
		if client != nil {
			d.httpClient = client
		}
	}
}

func WithDiscoverLogger(log zerolog.Logger) DiscoverOption {
	return func(d *Discoverer) {
		d.log = log
	}
}

// NewDiscoverer создаёт Discoverer с таймаутом 15 секунд по умолчанию.
func NewDiscoverer(opts ...DiscoverOption) *Discoverer {
	d := &Discoverer{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Discover загружает siteURL и возвращает найденный id проекта.
func (d *Discoverer) Discover(ctx context.Context, siteURL string) (projectID string, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveNetworkRequest("site", http.MethodGet, "discover", start, err)
	}()

	target, err := normalizeSiteURL(siteURL)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/html")
	req.Header.Set("User-Agent", "feedbucket-setup")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch %s: unexpected status %d", target, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", target, err)
	}

	id, ok := ExtractProjectID(string(body))
	if !ok {
		d.log.Warn().Str("url", target).Int("bytes", len(body)).Msg("setup: project id not found")
		return "", ErrProjectIDNotFound
	}
	d.log.Info().Str("url", target).Str("project_id", id).Msg("setup: project id discovered")
	return id, nil
}

func normalizeSiteURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("site url is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse site url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("site url must be an http(s) address; got %q", raw)
	}
	return u.String(), nil
}
