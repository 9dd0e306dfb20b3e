// Package client is a Go client for the messagely HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/iudanet/messagely/pkg/api"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// Client представляет HTTP клиент для взаимодействия с сервером.
// Токен, полученный при Register/Login, передается как _token:
// в query для GET и в теле для POST.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	mu         sync.RWMutex
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient создает новый API клиент
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken sets the token sent with subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Register регистрирует нового пользователя и запоминает выданный токен
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (string, error) {
	var resp api.TokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return "", fmt.Errorf("register request failed: %w", err)
	}
	c.SetToken(resp.Token)
	return resp.Token, nil
}

// Login выполняет аутентификацию и запоминает выданный токен
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp api.TokenResponse
	req := api.LoginRequest{Username: username, Password: password}
	if err := c.doRequest(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return "", fmt.Errorf("login request failed: %w", err)
	}
	c.SetToken(resp.Token)
	return resp.Token, nil
}

// ListUsers returns all users.
func (c *Client) ListUsers(ctx context.Context) ([]api.UserSummary, error) {
	var resp api.UsersResponse
	if err := c.doRequest(ctx, http.MethodGet, "/users", nil, &resp); err != nil {
		return nil, fmt.Errorf("list users request failed: %w", err)
	}
	return resp.Users, nil
}

// GetUser returns the profile of username.
func (c *Client) GetUser(ctx context.Context, username string) (*api.UserDetail, error) {
	var resp api.UserResponse
	if err := c.doRequest(ctx, http.MethodGet, "/users/"+url.PathEscape(username), nil, &resp); err != nil {
		return nil, fmt.Errorf("get user request failed: %w", err)
	}
	return &resp.User, nil
}

// MessagesTo returns messages received by username.
func (c *Client) MessagesTo(ctx context.Context, username string) ([]api.InboxMessage, error) {
	var resp api.InboxResponse
	if err := c.doRequest(ctx, http.MethodGet, "/users/"+url.PathEscape(username)+"/to", nil, &resp); err != nil {
		return nil, fmt.Errorf("messages to request failed: %w", err)
	}
	return resp.Messages, nil
}

// MessagesFrom returns messages sent by username.
func (c *Client) MessagesFrom(ctx context.Context, username string) ([]api.OutboxMessage, error) {
	var resp api.OutboxResponse
	if err := c.doRequest(ctx, http.MethodGet, "/users/"+url.PathEscape(username)+"/from", nil, &resp); err != nil {
		return nil, fmt.Errorf("messages from request failed: %w", err)
	}
	return resp.Messages, nil
}

// SendMessage sends a message from the current user.
func (c *Client) SendMessage(ctx context.Context, to, body string) (*api.SentMessage, error) {
	var resp api.SentMessageResponse
	req := api.SendMessageRequest{ToUsername: to, Body: body}
	if err := c.doRequest(ctx, http.MethodPost, "/messages", req, &resp); err != nil {
		return nil, fmt.Errorf("send message request failed: %w", err)
	}
	return &resp.Message, nil
}

// GetMessage returns a message with both participants.
func (c *Client) GetMessage(ctx context.Context, id int64) (*api.MessageDetail, error) {
	var resp api.MessageDetailResponse
	if err := c.doRequest(ctx, http.MethodGet, "/messages/"+strconv.FormatInt(id, 10), nil, &resp); err != nil {
		return nil, fmt.Errorf("get message request failed: %w", err)
	}
	return &resp.Message, nil
}

// MarkRead marks a message as read by its recipient.
func (c *Client) MarkRead(ctx context.Context, id int64) (*api.ReadReceipt, error) {
	var resp api.ReadReceiptResponse
	if err := c.doRequest(ctx, http.MethodPost, "/messages/"+strconv.FormatInt(id, 10)+"/read", struct{}{}, &resp); err != nil {
		return nil, fmt.Errorf("mark read request failed: %w", err)
	}
	return &resp.Message, nil
}

// encodeBody marshals body and adds the _token field when a token is set.
func encodeBody(body any, token string) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return data, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("request body must be a JSON object: %w", err)
	}
	if fields == nil {
		fields = make(map[string]json.RawMessage, 1)
	}
	quoted, err := json.Marshal(token)
	if err != nil {
		return nil, err
	}
	fields[api.TokenField] = quoted
	return json.Marshal(fields)
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	token := c.Token()
	target := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := encodeBody(body, token)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	} else if token != "" {
		target += "?" + url.Values{api.TokenField: {token}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			apiErr.Message = errResp.Message
			if apiErr.Message == "" {
				apiErr.Message = errResp.Error
			}
		}
		return apiErr
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
