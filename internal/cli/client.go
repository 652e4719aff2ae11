package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// --- Response types (дублируются из api, CLI не импортирует internal/*) ---

// PlanResponse — план из API (представление без полных результатов шагов).
type PlanResponse struct {
	PlanID    string         `json:"planId"`
	Objective string         `json:"objective"`
	Steps     []StepResponse `json:"steps"`
	Notes     string         `json:"notes,omitempty"`
	CreatedAt string         `json:"createdAt,omitempty"`
	StoredAt  string         `json:"storedAt"`
}

// StepResponse — шаг плана из API.
type StepResponse struct {
	ID                  string         `json:"id"`
	Kind                string         `json:"kind"`
	Title               string         `json:"title"`
	Description         string         `json:"description,omitempty"`
	Params              map[string]any `json:"params,omitempty"`
	Status              string         `json:"status"`
	StartedAt           string         `json:"startedAt,omitempty"`
	EndedAt             string         `json:"endedAt,omitempty"`
	Error               string         `json:"error,omitempty"`
	OutputSummary       string         `json:"outputSummary,omitempty"`
	ProducedArtifactIDs []string       `json:"producedArtifactIds,omitempty"`
}

// ValidationResponse — отчёт о валидации плана.
type ValidationResponse struct {
	Valid     bool     `json:"valid"`
	PlanID    string   `json:"planId"`
	Objective string   `json:"objective"`
	Steps     int      `json:"steps"`
	Warnings  []string `json:"warnings,omitempty"`
}

// ArtifactResponse — артефакт из API.
type ArtifactResponse struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Filename  string         `json:"filename"`
	Mime      string         `json:"mime"`
	CreatedAt string         `json:"createdAt"`
	Bytes     int64          `json:"bytes"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// StreamEvent — одно событие SSE-потока выполнения плана.
type StreamEvent struct {
	// Name — имя события из кадра (plan_started, step_result, ...).
	Name string

	// At — время события на сервере.
	At time.Time

	// Payload — тело события как есть; форма зависит от Name.
	Payload json.RawMessage
}

// --- Request types ---

// GeneratePlanRequest — запрос на генерацию плана из цели.
type GeneratePlanRequest struct {
	Objective string `json:"objective"`
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		StepID  string `json:"stepId"`
		Field   string `json:"field"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Prospector API.
type Client struct {
	baseURL    string
	httpClient *http.Client

	// streamClient — без таймаута: выполнение плана длится дольше
	// любого разумного request timeout, соединение держит сервер.
	streamClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		streamClient: &http.Client{},
	}
}

// --- Plans ---

// ListPlans возвращает все планы, новые первыми.
func (c *Client) ListPlans() ([]PlanResponse, error) {
	var plans []PlanResponse
	err := c.list("/api/v1/plans", nil, &plans)
	return plans, err
}

// SubmitPlan отправляет сырой JSON плана на валидацию и сохранение.
func (c *Client) SubmitPlan(raw json.RawMessage) (*PlanResponse, error) {
	var plan PlanResponse
	err := c.post("/api/v1/plans", raw, &plan)
	return &plan, err
}

// ValidatePlan проверяет план без сохранения.
func (c *Client) ValidatePlan(raw json.RawMessage) (*ValidationResponse, error) {
	var report ValidationResponse
	err := c.post("/api/v1/plans/validate", raw, &report)
	return &report, err
}

// GeneratePlan просит сервер сгенерировать план по цели.
func (c *Client) GeneratePlan(objective string) (*PlanResponse, error) {
	var plan PlanResponse
	err := c.post("/api/v1/plans/generate", GeneratePlanRequest{Objective: objective}, &plan)
	return &plan, err
}

// GetPlan возвращает план по ID.
func (c *Client) GetPlan(id string) (*PlanResponse, error) {
	var plan PlanResponse
	err := c.get("/api/v1/plans/"+url.PathEscape(id), &plan)
	return &plan, err
}

// ExecutePlan запускает план и вызывает onEvent на каждое событие
// SSE-потока до финального кадра done. Блокируется до конца прогона.
func (c *Client) ExecutePlan(id string, snippetLimit int, onEvent func(StreamEvent)) error {
	path := "/api/v1/plans/" + url.PathEscape(id) + "/execute"
	if snippetLimit != 0 {
		path += "?snippet_limit=" + strconv.Itoa(snippetLimit)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	return readEventStream(resp.Body, onEvent)
}

// readEventStream разбирает SSE-кадры: имя из event:, тело из data:,
// пустая строка завершает кадр. Комментарии (heartbeat) и retry-
// подсказки пропускаются. Кадр done завершает чтение.
func readEventStream(r io.Reader, onEvent func(StreamEvent)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var name string
	var data bytes.Buffer

	flush := func() bool {
		if name == "" {
			return false
		}
		if name == "done" {
			return true
		}

		event := StreamEvent{Name: name}
		var body struct {
			At      time.Time       `json:"at"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(data.Bytes(), &body); err == nil {
			event.At = body.At
			event.Payload = body.Payload
		}
		onEvent(event)
		return false
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if flush() {
				return nil
			}
			name = ""
			data.Reset()
		case strings.HasPrefix(line, ":"):
			// heartbeat-комментарий
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream interrupted: %w", err)
	}

	// Сервер оборвал соединение без done: недоигранный кадр не теряем.
	flush()
	return nil
}

// --- Artifacts ---

// ListArtifacts возвращает метаданные всех артефактов, новые первыми.
func (c *Client) ListArtifacts() ([]ArtifactResponse, error) {
	var artifacts []ArtifactResponse
	err := c.list("/api/v1/artifacts", nil, &artifacts)
	return artifacts, err
}

// GetArtifact возвращает метаданные артефакта.
func (c *Client) GetArtifact(id string) (*ArtifactResponse, error) {
	var artifact ArtifactResponse
	err := c.get("/api/v1/artifacts/"+url.PathEscape(id), &artifact)
	return &artifact, err
}

// DownloadArtifact скачивает содержимое артефакта в w.
func (c *Client) DownloadArtifact(id string, w io.Writer) (int64, error) {
	resp, err := c.do(http.MethodGet, "/api/v1/artifacts/"+url.PathEscape(id)+"/download", nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return 0, err
	}

	return io.Copy(w, resp.Body)
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	// 204 No Content
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	msg := er.Error.Message
	if er.Error.StepID != "" {
		msg = fmt.Sprintf("%s (step %s)", msg, er.Error.StepID)
	}
	return fmt.Errorf("%s: %s", er.Error.Code, msg)
}
