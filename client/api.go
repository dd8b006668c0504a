package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"taskboard/logging"
	"taskboard/models"

	"github.com/sony/gobreaker"
)

type FieldError struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
	Fields  []FieldError
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// APIClient calls the taskboard REST API. Every call goes through a circuit
// breaker; server errors and transport failures count against it, client
// errors do not.
type APIClient struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker

	mu    sync.RWMutex
	token string
}

type Option func(*APIClient)

func WithHTTPClient(c *http.Client) Option {
	return func(a *APIClient) { a.http = c }
}

func WithBreakerSettings(s gobreaker.Settings) Option {
	return func(a *APIClient) { a.breaker = gobreaker.NewCircuitBreaker(s) }
}

func NewAPIClient(baseURL string, opts ...Option) *APIClient {
	c := &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "TaskboardAPI",
			MaxRequests: 1,
			Timeout:     5 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 3
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logging.Logger.Infof("Event ID: CIRCUIT_BREAKER_STATE_CHANGE, Description: Circuit Breaker '%s' changed from '%s' to '%s'", name, from.String(), to.String())
			},
		}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *APIClient) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *APIClient) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type response struct {
	status int
	body   []byte
}

func (c *APIClient) do(ctx context.Context, method, path string, in, out interface{}) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		if in != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token := c.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, decodeAPIError(resp.StatusCode, body)
		}
		return &response{status: resp.StatusCode, body: body}, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logging.Logger.Warnf("Event ID: CIRCUIT_BREAKER_REJECTED, Description: %s %s rejected: %v", method, path, err)
		}
		return err
	}

	resp := result.(*response)
	if resp.status >= http.StatusBadRequest {
		return decodeAPIError(resp.status, resp.body)
	}
	if out == nil || len(resp.body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	var payload struct {
		Msg    string       `json:"msg"`
		Errors []FieldError `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Message = payload.Msg
		apiErr.Fields = payload.Errors
	}
	if apiErr.Message == "" && len(apiErr.Fields) > 0 {
		msgs := make([]string, 0, len(apiErr.Fields))
		for _, f := range apiErr.Fields {
			msgs = append(msgs, f.Msg)
		}
		apiErr.Message = strings.Join(msgs, "; ")
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

func (c *APIClient) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) Profile(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/api/users/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) ListProjects(ctx context.Context) ([]models.ProjectView, error) {
	var out []models.ProjectView
	if err := c.do(ctx, http.MethodGet, "/api/projects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) CreateProject(ctx context.Context, input models.ProjectInput) (*models.ProjectView, error) {
	var out models.ProjectView
	if err := c.do(ctx, http.MethodPost, "/api/projects", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) GetProject(ctx context.Context, id string) (*models.ProjectView, error) {
	var out models.ProjectView
	if err := c.do(ctx, http.MethodGet, "/api/projects/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) UpdateProject(ctx context.Context, id string, patch models.ProjectPatch) (*models.ProjectView, error) {
	var out models.ProjectView
	if err := c.do(ctx, http.MethodPut, "/api/projects/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/projects/"+url.PathEscape(id), nil, nil)
}

func (c *APIClient) AddCollaborator(ctx context.Context, projectID, email string) (*models.CollaboratorResponse, error) {
	var out models.CollaboratorResponse
	path := "/api/projects/" + url.PathEscape(projectID) + "/collaborators"
	if err := c.do(ctx, http.MethodPost, path, models.CollaboratorInput{Email: email}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) RemoveCollaborator(ctx context.Context, projectID, userID string) error {
	path := "/api/projects/" + url.PathEscape(projectID) + "/collaborators/" + url.PathEscape(userID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *APIClient) ListTasks(ctx context.Context, projectID string) ([]models.TaskView, error) {
	var out []models.TaskView
	if err := c.do(ctx, http.MethodGet, "/api/tasks?project="+url.QueryEscape(projectID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) CreateTask(ctx context.Context, input models.TaskInput) (*models.TaskView, error) {
	var out models.TaskView
	if err := c.do(ctx, http.MethodPost, "/api/tasks", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) GetTask(ctx context.Context, id string) (*models.TaskView, error) {
	var out models.TaskView
	if err := c.do(ctx, http.MethodGet, "/api/tasks/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.TaskView, error) {
	var out models.TaskView
	if err := c.do(ctx, http.MethodPut, "/api/tasks/"+url.PathEscape(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *APIClient) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil)
}

func (c *APIClient) Stats(ctx context.Context) (*models.DashboardStats, error) {
	var out models.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/api/dashboard/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
