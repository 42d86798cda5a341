package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"
)

// AuthorizedRoles may use the studio.
var AuthorizedRoles = []string{"administrator", "editor", "author", "contributor", "kg_expert"}

// User is the authenticated account.
type User struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Roles       []string `json:"roles"`
}

// Authorized reports whether any of the user's roles may use the studio.
func (u User) Authorized() bool {
	for _, r := range u.Roles {
		if slices.Contains(AuthorizedRoles, strings.ToLower(strings.TrimSpace(r))) {
			return true
		}
	}
	return false
}

// Session is the result of a successful login.
type Session struct {
	Token       string
	DisplayName string
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (Session, error) {
	u := c.endpoint(pathLogin, nil)
	resp, err := c.do(ctx, http.MethodPost, u, map[string]string{"email": username, "password": password}, "")
	if err != nil {
		return Session{}, err
	}
	defer resp.Body.Close()
	var body struct {
		Token    string `json:"token"`
		Message  string `json:"message"`
		Display  string `json:"user_display_name"`
		NiceName string `json:"user_nicename"`
		Data     struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = json.NewDecoder(resp.Body).Decode(&body)
		msg := body.Message
		if msg == "" {
			msg = fmt.Sprintf("Giriş başarısız (%d)", resp.StatusCode)
		}
		return Session{}, fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Session{}, fmt.Errorf("decode login: %w", err)
	}
	token := body.Token
	if token == "" {
		token = body.Data.Token
	}
	if token == "" {
		return Session{}, fmt.Errorf("%w: no token in response", ErrUnauthorized)
	}
	name := body.Display
	if name == "" {
		name = body.NiceName
	}
	if name == "" {
		name = username
	}
	return Session{Token: token, DisplayName: name}, nil
}

// Me returns the account behind the client's token.
func (c *Client) Me(ctx context.Context) (User, error) {
	if c.token == "" {
		return User{}, fmt.Errorf("%w: no token", ErrUnauthorized)
	}
	var u User
	if err := c.get(ctx, c.endpoint(pathMe, nil), &u, false); err != nil {
		return User{}, err
	}
	return u, nil
}

// Authorize reports whether the client's token belongs to a user allowed to
// use the studio.
func (c *Client) Authorize(ctx context.Context) (bool, error) {
	u, err := c.Me(ctx)
	if errors.Is(err, ErrUnauthorized) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.Authorized(), nil
}

// DefaultWatermark returns the site logo from the options endpoint, or
// FallbackWatermark when it is unavailable.
func (c *Client) DefaultWatermark(ctx context.Context) string {
	var opts map[string]any
	if err := c.get(ctx, c.endpoint(pathOptions, nil), &opts, false); err != nil {
		c.log.WithFields(logrus.Fields{"error": err}).Debug("site options unavailable, using fallback watermark")
		return FallbackWatermark
	}
	if logo := stringOf(opts["kg_email_logo"]); logo != "" {
		return logo
	}
	return FallbackWatermark
}
