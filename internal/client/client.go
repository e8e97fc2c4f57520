// Package client is an HTTP client for the task server's endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/seantiz/tasksolver/internal/model"
)

const defaultTimeout = 15 * time.Second

// ErrNotFound is returned by Status for ids the server does not know.
var ErrNotFound = errors.New("task not found")

// Client talks to a task server at a fixed base URL.
type Client struct {
	baseURL string
	http    *http.Client
}

// Status mirrors the server's status document.
type Status struct {
	Status model.Status `json:"status"`
	Meta   struct {
		CreatedAt  time.Time  `json:"created_at"`
		StartedAt  *time.Time `json:"started_at,omitempty"`
		FinishedAt *time.Time `json:"finished_at,omitempty"`
	} `json:"meta"`
	Result struct {
		Stdout string  `json:"stdout"`
		Stderr *string `json:"stderr,omitempty"`
	} `json:"result"`
}

// New creates a client for the server at baseURL, e.g. http://127.0.0.1:8080.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// CreateTask submits a task and returns its id.
func (c *Client) CreateTask(ctx context.Context, kind model.Kind, payload, args string) (string, error) {
	body := map[string]string{"type": string(kind), "file": payload, "args": args}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/create_task", body, &out); err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}
	return out.ID, nil
}

// CreateTaskFromFile reads path and submits it. Binaries are base64 encoded
// before upload; scripts are sent as text.
func (c *Client) CreateTaskFromFile(ctx context.Context, kind model.Kind, path, args string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read task file: %w", err)
	}
	payload := string(data)
	if kind == model.KindBinary {
		payload = base64.StdEncoding.EncodeToString(data)
	}
	return c.CreateTask(ctx, kind, payload, args)
}

// Status fetches the status document of task id.
func (c *Client) Status(ctx context.Context, id string) (Status, error) {
	var out Status
	if err := c.do(ctx, http.MethodGet, "/get_status", map[string]string{"id": id}, &out); err != nil {
		return Status{}, fmt.Errorf("get status %s: %w", id, err)
	}
	return out, nil
}

// TaskCount returns the number of tasks waiting in the server's queue.
func (c *Client) TaskCount(ctx context.Context) (int, error) {
	var out struct {
		Tasks int `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodGet, "/get_task_count", nil, &out); err != nil {
		return 0, fmt.Errorf("get task count: %w", err)
	}
	return out.Tasks, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error  string       `json:"error"`
			Status model.Status `json:"status"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&e)
		// Only a task lookup answers NOT_FOUND; any other 404 is a routing
		// problem such as a wrong base URL.
		if resp.StatusCode == http.StatusNotFound && e.Status == model.StatusNotFound {
			return ErrNotFound
		}
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, e.Error)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
