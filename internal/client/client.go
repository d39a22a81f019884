package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"liveability/internal/user"
)

// ErrSessionExpired marks a request that came back 401. Match with
// errors.Is; the concrete error may carry the server's message.
var ErrSessionExpired = errors.New("session expired")

// SessionExpiredError is the explicit session-expiry result of the request
// layer. Callers decide what to do with it; the operation methods clear the
// session and navigate to login.
type SessionExpiredError struct {
	Message string
}

func (e *SessionExpiredError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "session expired"
}

func (e *SessionExpiredError) Unwrap() error {
	return ErrSessionExpired
}

// APIError is a non-401 error response from the API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

// Navigator is how the client asks the embedding application to move to the
// login entry point after a session expires
type Navigator interface {
	ToLogin()
}

// Client calls the Liveability API through the gateway, holding the session
// on behalf of the application
type Client struct {
	baseURL  string
	http     *http.Client
	sessions *SessionStore
	nav      Navigator
}

// New creates an API client. baseURL is the gateway address; nav may be nil
// when no navigation target exists (headless use).
func New(baseURL string, sessions *SessionStore, nav Navigator) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 10 * time.Second},
		sessions: sessions,
		nav:      nav,
	}
}

// Session exposes the current session to the embedding application
func (c *Client) Session() *Session {
	return c.sessions.Current()
}

// Register creates an account and stores the resulting session
func (c *Client) Register(ctx context.Context, email, password string) (*user.User, error) {
	var result user.AuthResult
	err := c.call(ctx, http.MethodPost, "/api/users/register", user.RegisterRequest{
		Email:    email,
		Password: password,
	}, &result)
	if err != nil {
		return nil, err
	}

	if err := c.sessions.Set(result.Token, result.User); err != nil {
		return nil, err
	}
	return result.User, nil
}

// Login authenticates and stores the resulting session
func (c *Client) Login(ctx context.Context, email, password string) (*user.User, error) {
	var result user.AuthResult
	err := c.call(ctx, http.MethodPost, "/api/users/login", user.LoginRequest{
		Email:    email,
		Password: password,
	}, &result)
	if err != nil {
		return nil, err
	}

	if err := c.sessions.Set(result.Token, result.User); err != nil {
		return nil, err
	}
	return result.User, nil
}

// Logout discards the client-held session. Tokens are stateless, so there is
// nothing to revoke server-side.
func (c *Client) Logout() {
	c.sessions.Clear()
}

// GetUser fetches a user's public record
func (c *Client) GetUser(ctx context.Context, id int64) (*user.User, error) {
	var result struct {
		User *user.User `json:"user"`
	}
	err := c.call(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d", id), nil, &result)
	if err != nil {
		return nil, err
	}
	return result.User, nil
}

// SaveCommutePreferences submits the commute step and refreshes the stored user
func (c *Client) SaveCommutePreferences(ctx context.Context, prefs *user.CommutePreferences) (*user.User, error) {
	return c.savePreferences(ctx, "/api/users/commute-preferences", prefs)
}

// SaveHousingPreferences submits the housing step and refreshes the stored user
func (c *Client) SaveHousingPreferences(ctx context.Context, prefs *user.HousingPreferences) (*user.User, error) {
	return c.savePreferences(ctx, "/api/users/housing-preferences", prefs)
}

// SaveAmenitiesPreferences submits the amenities step and refreshes the stored user
func (c *Client) SaveAmenitiesPreferences(ctx context.Context, prefs *user.AmenitiesPreferences) (*user.User, error) {
	return c.savePreferences(ctx, "/api/users/amenities-preferences", prefs)
}

func (c *Client) savePreferences(ctx context.Context, path string, prefs any) (*user.User, error) {
	var result user.PreferencesResponse
	if err := c.call(ctx, http.MethodPost, path, prefs, &result); err != nil {
		return nil, err
	}

	if err := c.sessions.SetUser(result.User); err != nil {
		return nil, err
	}
	return result.User, nil
}

// call runs one request and decodes the 200 body into out. On session
// expiry it clears the session and triggers the login redirect; the clear is
// guarded, so concurrent failing requests produce exactly one redirect.
func (c *Client) call(ctx context.Context, method, path string, payload, out any) error {
	resp, err := c.send(ctx, method, path, payload)
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			c.expireSession()
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: decodeError(resp.Body)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// send is the request layer. The bearer header is built per request from the
// session store rather than kept as shared client state, and a 401 comes
// back as an explicit SessionExpiredError instead of a response.
func (c *Client) send(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if sess := c.sessions.Current(); sess.Authenticated() {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		msg := decodeError(resp.Body)
		resp.Body.Close()
		return nil, &SessionExpiredError{Message: msg}
	}

	return resp, nil
}

// expireSession clears state and redirects to login. Clear reports whether
// this caller actually performed the transition, so simultaneous failures
// cannot trigger a redirect storm.
func (c *Client) expireSession() {
	if c.sessions.Clear() && c.nav != nil {
		c.nav.ToLogin()
	}
}

// decodeError pulls the {error} message out of an error body
func decodeError(r io.Reader) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return ""
	}
	return body.Error
}
