// Package auth provides authentication support for download requests.
package auth

import (
	"net/http"

	"github.com/ravel-run/ravel/pkg/model"
)

// Authenticator applies an authentication scheme to an HTTP request.
type Authenticator interface {
	Apply(req *http.Request) error
	Type() Type
}

// Type represents the type of authentication.
type Type string

// Authentication types.
const (
	BasicAuthType  Type = "basic"
	HeaderAuthType Type = "header"
	BearerAuthType Type = "bearer"
)

// BasicAuth represents HTTP Basic Authentication credentials.
type BasicAuth struct {
	Username string
	Password string
}

// Apply adds Basic Authentication headers to the HTTP request.
func (b BasicAuth) Apply(req *http.Request) error {
	req.SetBasicAuth(b.Username, b.Password)
	return nil
}

// Type returns the authentication type (BasicAuthType).
func (b BasicAuth) Type() Type { return BasicAuthType }

// HeaderAuth represents authentication via custom HTTP headers.
type HeaderAuth struct {
	Headers map[string]string
}

// Apply adds custom headers to the HTTP request.
func (h HeaderAuth) Apply(req *http.Request) error {
	for k, v := range h.Headers {
		req.Header.Set(k, v)
	}
	return nil
}

// Type returns the authentication type (HeaderAuthType).
func (h HeaderAuth) Type() Type { return HeaderAuthType }

// BearerAuth represents Bearer token authentication.
type BearerAuth struct {
	Token string
}

// Apply adds a Bearer token to the Authorization header of the HTTP request.
func (b BearerAuth) Apply(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+b.Token)
	return nil
}

// Type returns the authentication type (BearerAuthType).
func (b BearerAuth) Type() Type { return BearerAuthType }

// FromConfig builds an Authenticator from a download group's auth section.
// Precedence when several schemes are present: bearer, then basic, then
// headers. Returns nil when cfg is nil or empty.
func FromConfig(cfg *model.AuthConfig) Authenticator {
	if cfg == nil {
		return nil
	}
	switch {
	case cfg.Bearer != "":
		return BearerAuth{Token: cfg.Bearer}
	case cfg.Username != "" || cfg.Password != "":
		return BasicAuth{Username: cfg.Username, Password: cfg.Password}
	case len(cfg.Headers) > 0:
		return HeaderAuth{Headers: cfg.Headers}
	default:
		return nil
	}
}
