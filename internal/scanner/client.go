package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/noah-isme/gardenia-api/internal/dto"
	"github.com/noah-isme/gardenia-api/internal/models"
	appErrors "github.com/noah-isme/gardenia-api/pkg/errors"
)

// DefaultTimeout bounds every call to the API.
const DefaultTimeout = 10 * time.Second

// Client talks to the gate endpoints of the API with a bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a client; baseURL includes the API prefix, e.g. http://host:8080/api/v1.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// Validate resolves a raw scanner payload.
func (c *Client) Validate(ctx context.Context, payload string) (*dto.RegistrationView, error) {
	var view dto.RegistrationView
	if err := c.do(ctx, http.MethodPost, "/registrations/validate", dto.ValidatePayloadRequest{Payload: payload}, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// RecordDecision appends an entry decision.
func (c *Client) RecordDecision(ctx context.Context, req dto.RecordDecisionRequest) (*models.EntryDecision, error) {
	var decision models.EntryDecision
	if err := c.do(ctx, http.MethodPost, "/entry-decisions", req, &decision); err != nil {
		return nil, err
	}
	return &decision, nil
}

type envelope struct {
	Data  json.RawMessage  `json:"data"`
	Error *appErrors.Error `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUnavailable.Code, http.StatusServiceUnavailable, "gate server unreachable, dismiss and rescan")
	}
	defer res.Body.Close()

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, res.StatusCode, fmt.Sprintf("unexpected response (HTTP %d)", res.StatusCode))
	}
	if res.StatusCode >= http.StatusBadRequest {
		if env.Error != nil {
			if env.Error.Status == 0 {
				env.Error.Status = res.StatusCode
			}
			return env.Error
		}
		return appErrors.New(appErrors.ErrInternal.Code, res.StatusCode, http.StatusText(res.StatusCode))
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

// IsNotFound reports whether err means the credential is unknown.
func IsNotFound(err error) bool {
	return errors.Is(err, appErrors.ErrNotFound)
}

// IsMalformed reports whether err means the operator should rescan.
func IsMalformed(err error) bool {
	return errors.Is(err, appErrors.ErrMalformedPayload)
}
