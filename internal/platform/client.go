// Package platform предоставляет клиент API платформы пользователей.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmeshcher/crmsync-system/internal/model"
	"github.com/mmeshcher/crmsync-system/internal/retryutil"
)

// Client инкапсулирует HTTP-взаимодействие с платформой пользователей.
// Каждый вызов выполняется с ограниченными повторами: транспортная ошибка
// и не-2xx статус считаются равнозначными отказами.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client

	retryAttempts int
	retryStep     time.Duration
}

// NewClient создаёт HTTP-клиент платформы пользователей по указанному адресу.
func NewClient(baseURL, token string) *Client {
	base := strings.TrimRight(baseURL, "/")
	if base != "" && !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	return &Client{
		baseURL: base,
		token:   token,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		retryAttempts: retryutil.DefaultAttempts,
		retryStep:     retryutil.DefaultStep,
	}
}

// LookupByEmail ищет пользователя по email. Отсутствие пользователя
// не является ошибкой: возвращается (nil, nil).
func (c *Client) LookupByEmail(ctx context.Context, email string) (*model.UserRecord, error) {
	if c == nil || c.baseURL == "" {
		return nil, fmt.Errorf("platform client not configured")
	}

	query := url.Values{"email": []string{email}}
	endpoint := fmt.Sprintf("%s/users?%s", c.baseURL, query.Encode())

	var users []model.UserRecord
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &users); err != nil {
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

type createUserRequest struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Plan      string `json:"plan"`
	Joined    string `json:"joined"`
}

// Create заводит нового пользователя со сгенерированным идентификатором
// и датой регистрации.
func (c *Client) Create(ctx context.Context, event model.PurchaseEvent) (*model.UserRecord, error) {
	if c == nil || c.baseURL == "" {
		return nil, fmt.Errorf("platform client not configured")
	}

	payload := createUserRequest{
		ID:        uuid.NewString(),
		FirstName: event.FirstName,
		LastName:  event.LastName,
		Email:     event.Email,
		Plan:      event.Plan,
		Joined:    time.Now().UTC().Format(time.RFC3339),
	}

	var user model.UserRecord
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/users", payload, &user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if user.ID == "" {
		user.ID = payload.ID
	}
	if user.Email == "" {
		user.Email = event.Email
	}
	return &user, nil
}

type updateUserRequest struct {
	Plan        string `json:"plan"`
	LastUpdated string `json:"last_updated"`
}

// Update обновляет план существующего пользователя.
func (c *Client) Update(ctx context.Context, id string, event model.PurchaseEvent) (*model.UserRecord, error) {
	if c == nil || c.baseURL == "" {
		return nil, fmt.Errorf("platform client not configured")
	}

	payload := updateUserRequest{
		Plan:        event.Plan,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
	}

	endpoint := fmt.Sprintf("%s/users/%s", c.baseURL, url.PathEscape(id))

	var user model.UserRecord
	if err := c.doJSON(ctx, http.MethodPut, endpoint, payload, &user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if user.ID == "" {
		user.ID = id
	}
	if user.Email == "" {
		user.Email = event.Email
	}
	return &user, nil
}

// doJSON выполняет один логический вызов API с политикой повторов.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, payload, out any) error {
	var raw []byte
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
	}

	return retryutil.DoWithPolicy(ctx, c.retryAttempts, c.retryStep, func(ctx context.Context) error {
		var body *bytes.Reader
		if raw != nil {
			body = bytes.NewReader(raw)
		} else {
			body = bytes.NewReader(nil)
		}

		req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("do request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			return fmt.Errorf("unexpected status: %d", resp.StatusCode)
		}

		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	})
}
