// Package linkedin — клиент сервиса LinkedIn-сводок по профилям.
package linkedin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultURL — адрес сервиса сводок по умолчанию.
const DefaultURL = "http://localhost:13732"

const defaultTimeout = 45 * time.Second

// Summary — сводка по профилю.
type Summary struct {
	Username  string `json:"username"`
	Summary   string `json:"summary"`
	FetchedAt string `json:"fetched_at"`
}

// Client — клиент сервиса сводок.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient создаёт клиента. Пустой baseURL заменяется DefaultURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// Research запрашивает сводку по профилю. tags — темы, которые сервис
// должен учесть; пустой список допустим.
func (c *Client) Research(ctx context.Context, username string, tags []string) (*Summary, error) {
	endpoint := fmt.Sprintf("%s/linkedin-summary/%s", c.baseURL, url.PathEscape(username))
	if len(tags) > 0 {
		q := url.Values{}
		q.Set("tags", strings.Join(tags, ","))
		endpoint += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("research %q: create request: %w", username, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("research %q: %w", username, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("research %q: HTTP %d: %s",
			username, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var summary Summary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, fmt.Errorf("research %q: decode response: %w", username, err)
	}
	if summary.Username == "" {
		summary.Username = username
	}
	return &summary, nil
}
