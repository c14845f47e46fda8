package remotesvc

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/incluso/backend/core/user"
)

var _ user.Remote = (*Client)(nil) // interface compliance check

// SignIn exchanges credentials for an access token at the optional
// remote session endpoint.
func (c *Client) SignIn(ctx context.Context, email, password string) (string, error) {
	b, err := c.request(ctx, http.MethodPost, "/auth", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return "", err
	}

	m, ok := b.Map()
	if !ok {
		return "", errors.New("remote: malformed auth response")
	}
	for _, key := range []string{"accessToken", "access_token", "token"} {
		if token, ok := m[key].(string); ok && token != "" {
			return token, nil
		}
	}
	return "", errors.New("remote: no access token in auth response")
}

// Me fetches the authenticated profile for a freshly issued token.
func (c *Client) Me(ctx context.Context, token string) (user.User, error) {
	b, err := c.request(ctx, http.MethodGet, "/me", token, nil)
	if err != nil {
		return user.User{}, err
	}

	usr := userFromRecord(unwrapRecord(b, "user"))
	if usr.ID == "" || usr.Email == "" {
		return user.User{}, errors.New("remote: malformed profile response")
	}
	return usr, nil
}

// LookupByEmail finds a remote user by email, case-insensitively.
func (c *Client) LookupByEmail(ctx context.Context, email string) (user.User, error) {
	b, err := c.request(ctx, http.MethodGet, "/users?email="+url.QueryEscape(email), "", nil)
	if err != nil {
		return user.User{}, err
	}

	records, err := b.List("users")
	if err != nil {
		return user.User{}, err
	}
	for _, m := range records {
		usr := userFromRecord(m)
		if strings.EqualFold(usr.Email, email) {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}
