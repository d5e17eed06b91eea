package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// TaskResponse — задача из /tasks.
type TaskResponse struct {
	Key        string   `json:"key"`
	Operations []string `json:"operations"`
}

// ResultResponse — результат из /results/{taskID}.
type ResultResponse struct {
	TaskID    string          `json:"task_id"`
	Status    string          `json:"status"`
	Result    json.RawMessage `json:"result"`
	Traceback *string         `json:"traceback,omitempty"`
	DateDone  string          `json:"date_done"`
}

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
	} `json:"error"`
}

// Client — HTTP-клиент для поверхности воркера.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт Client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ListTasks возвращает задачи, зарегистрированные в воркере.
func (c *Client) ListTasks() ([]TaskResponse, error) {
	var tasks []TaskResponse
	err := c.list("/tasks", &tasks)
	return tasks, err
}

// GetResult возвращает сохранённый результат задачи.
func (c *Client) GetResult(taskID string) (*ResultResponse, error) {
	var result ResultResponse
	err := c.get("/results/"+taskID, &result)
	return &result, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	resp, err := c.do(path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return json.Unmarshal(dr.Data, result)
}

func (c *Client) list(path string, result any) error {
	resp, err := c.do(path)
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

func (c *Client) do(path string) (*http.Response, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("worker error: HTTP %d", resp.StatusCode)
	}
	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
