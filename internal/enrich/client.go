// Package enrich — клиент HTTP-сервиса обогащения профилей.
package enrich

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

// DefaultURL — адрес сервиса обогащения по умолчанию.
const DefaultURL = "http://localhost:13732"

const defaultTimeout = 30 * time.Second

// Profile — обогащённый профиль из внешнего сервиса.
type Profile struct {
	Username string `json:"username"`
	RawText  string `json:"raw_text"`
}

// Client — клиент сервиса обогащения.
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

// EnrichProfile запрашивает сырой текст профиля по username.
func (c *Client) EnrichProfile(ctx context.Context, username string) (*Profile, error) {
	endpoint := fmt.Sprintf("%s/enrich-profile/%s", c.baseURL, url.PathEscape(username))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("enrich %q: create request: %w", username, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("enrich %q: %w", username, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("enrich %q: HTTP %d: %s",
			username, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("enrich %q: decode response: %w", username, err)
	}
	if profile.Username == "" {
		profile.Username = username
	}
	return &profile, nil
}
