package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"NewsNotify/internal/config"
	"NewsNotify/internal/domain"
	"NewsNotify/internal/ports"
)

// Client translates article titles to Japanese through a MyMemory-style
// translation endpoint. Everything is best effort: any failure returns
// the article unchanged.
type Client struct {
	endpoint   string
	email      string
	httpClient *http.Client
	metrics    ports.Metrics
	logger     *slog.Logger
}

var _ ports.Translator = (*Client)(nil)

// NewClient builds a translator from configuration.
func NewClient(cfg config.TranslationConfig, client *http.Client, metrics ports.Metrics, logger *slog.Logger) *Client {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		email:      cfg.Email,
		httpClient: client,
		metrics:    metrics,
		logger:     logger,
	}
}

// TranslateTitle returns a copy of the article with a Japanese title and
// the pre-translation title preserved in OriginalTitle. Blank titles,
// titles already containing Japanese characters, and already-translated
// articles pass through untouched.
func (c *Client) TranslateTitle(ctx context.Context, article domain.Article) domain.Article {
	if strings.TrimSpace(article.Title) == "" {
		return article
	}
	if article.OriginalTitle != "" {
		// Already translated once; never re-translate.
		return article
	}
	if containsJapanese(article.Title) {
		c.debug("title already Japanese, skipping translation", "title", article.Title)
		return article
	}

	translated, err := c.translate(ctx, article.Title)
	if err != nil {
		c.error("title translation failed", "title", article.Title, "error", err)
		if c.metrics != nil {
			c.metrics.IncTranslationFailure()
		}
		return article
	}

	return domain.Article{
		Title:         translated,
		URL:           article.URL,
		OriginalTitle: article.Title,
	}
}

type translationResponse struct {
	ResponseStatus  int    `json:"responseStatus"`
	ResponseDetails string `json:"responseDetails"`
	ResponseData    struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
}

func (c *Client) translate(ctx context.Context, text string) (string, error) {
	params := url.Values{}
	params.Set("q", text)
	params.Set("langpair", "en|ja")
	if c.email != "" {
		params.Set("de", c.email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request translation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translation service returned %s", resp.Status)
	}

	var payload translationResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if payload.ResponseStatus != http.StatusOK {
		return "", fmt.Errorf("translation rejected: %s", payload.ResponseDetails)
	}

	translated := strings.TrimSpace(payload.ResponseData.TranslatedText)
	if translated == "" {
		return "", fmt.Errorf("translation returned empty text")
	}

	return translated, nil
}

// containsJapanese reports whether the text carries Hiragana, Katakana,
// or CJK ideograph runes.
func containsJapanese(text string) bool {
	for _, r := range text {
		switch {
		case r >= 0x3040 && r <= 0x309F: // Hiragana
			return true
		case r >= 0x30A0 && r <= 0x30FF: // Katakana
			return true
		case r >= 0x4E00 && r <= 0x9FAF: // CJK Unified Ideographs
			return true
		}
	}
	return false
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

func (c *Client) error(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Error(msg, args...)
	}
}
