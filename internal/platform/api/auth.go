package api

import (
	"context"
	"net/http"
	"strings"

	"m2b4a/internal/domain/model"
	log "m2b4a/pkg/log"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Authenticate logs identity in and returns the dashboard session.
func (c *Client) Authenticate(ctx context.Context, identity, secret string) (model.Credential, error) {
	log.Info("Logging in", "identity", identity)
	cred, err := c.credentialCall(ctx, "login", "/login", identity, secret)
	if err != nil {
		return model.Credential{}, err
	}
	if !cred.Valid() {
		return model.Credential{}, &AuthError{Op: "login", StatusCode: http.StatusOK, Body: "no session cookie in response"}
	}
	return cred, nil
}

// Register creates an account. The returned credential may be empty; the
// caller must authenticate afterwards either way.
func (c *Client) Register(ctx context.Context, identity, secret string) (model.Credential, error) {
	log.Info("Signing up", "identity", identity)
	return c.credentialCall(ctx, "signup", "/signup", identity, secret)
}

func (c *Client) credentialCall(ctx context.Context, op, path, identity, secret string) (model.Credential, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := c.newJSONRequest(ctx, http.MethodPost, c.endpoints.Dashboard+path, credentialsRequest{
		Username: identity,
		Password: secret,
	})
	if err != nil {
		return model.Credential{}, err
	}

	resp, err := c.send(op, req)
	if err != nil {
		return model.Credential{}, err
	}
	if !resp.ok() {
		return model.Credential{}, &AuthError{Op: op, StatusCode: resp.StatusCode, Body: truncate(resp.Body)}
	}

	return model.Credential{
		Token:    cookieToken(resp.Cookies),
		Identity: identity,
	}, nil
}

// cookieToken serializes session cookies into a Cookie header value.
func cookieToken(cookies []*http.Cookie) string {
	pairs := make([]string, 0, len(cookies))
	for _, ck := range cookies {
		if ck.Name == "" {
			continue
		}
		pairs = append(pairs, ck.Name+"="+ck.Value)
	}
	return strings.Join(pairs, "; ")
}

func setSession(req *http.Request, cred model.Credential) {
	req.Header.Set("Cookie", cred.Token)
}
