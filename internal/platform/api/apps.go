package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"m2b4a/internal/domain/model"
	log "m2b4a/pkg/log"
)

type createAppRequest struct {
	AppName        string `json:"appName"`
	AppDescription string `json:"appDescription"`
}

// CreateApplication provisions a new application named name.
func (c *Client) CreateApplication(ctx context.Context, cred model.Credential, name string) (model.Application, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Application{}, &ProvisionError{Name: name, Body: "application name must not be empty"}
	}
	log.Info("Creating a new app", "name", name)

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := c.newJSONRequest(ctx, http.MethodPost, c.endpoints.Dashboard+"/create-parse-app", createAppRequest{
		AppName:        name,
		AppDescription: appDescription,
	})
	if err != nil {
		return model.Application{}, err
	}
	setSession(req, cred)

	resp, err := c.send("create application", req)
	if err != nil {
		return model.Application{}, err
	}
	if !resp.ok() {
		return model.Application{}, &ProvisionError{Name: name, StatusCode: resp.StatusCode, Body: truncate(resp.Body)}
	}

	var app model.Application
	if err := json.Unmarshal(resp.Body, &app); err != nil {
		return model.Application{}, &APIError{Op: "create application", StatusCode: resp.StatusCode,
			Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return app, nil
}

// ListApplications returns the applications owned by the session's identity.
// An account without applications yields an empty, non-nil slice.
func (c *Client) ListApplications(ctx context.Context, cred model.Credential) ([]model.ApplicationSummary, error) {
	log.Info("Listing your apps")
	const op = "list applications"

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := c.newJSONRequest(ctx, http.MethodGet, c.endpoints.Dashboard+"/listApps", nil)
	if err != nil {
		return nil, err
	}
	setSession(req, cred)

	resp, err := c.send(op, req)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, &APIError{Op: op, StatusCode: resp.StatusCode, Body: truncate(resp.Body)}
	}

	// A stale session is answered with a login page instead of a JSON array.
	apps := []model.ApplicationSummary{}
	if err := json.Unmarshal(resp.Body, &apps); err != nil {
		return nil, &APIError{Op: op, StatusCode: http.StatusUnauthorized,
			Err: fmt.Errorf("unexpected response, the session may have expired: %w", err)}
	}
	if apps == nil {
		apps = []model.ApplicationSummary{}
	}
	return apps, nil
}

// GetApplication fetches the full application, key bag included.
func (c *Client) GetApplication(ctx context.Context, cred model.Credential, id string) (model.Application, error) {
	log.Info("Getting app details", "id", id)
	const op = "get application"

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := c.newJSONRequest(ctx, http.MethodGet, c.endpoints.Dashboard+"/parse-app/"+url.PathEscape(id), nil)
	if err != nil {
		return model.Application{}, err
	}
	setSession(req, cred)

	resp, err := c.send(op, req)
	if err != nil {
		return model.Application{}, err
	}
	if !resp.ok() {
		return model.Application{}, &APIError{Op: op, StatusCode: resp.StatusCode, Body: truncate(resp.Body)}
	}

	var app model.Application
	if err := json.Unmarshal(resp.Body, &app); err != nil {
		return model.Application{}, &APIError{Op: op, StatusCode: resp.StatusCode,
			Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return app, nil
}

// RestartApplication asks the platform to restart the application's server.
func (c *Client) RestartApplication(ctx context.Context, cred model.Credential, id string) error {
	log.Info("Restarting your app", "id", id)
	const op = "restart application"

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := c.newJSONRequest(ctx, http.MethodPost, c.endpoints.Dashboard+"/parse-app/"+url.PathEscape(id)+"/restart", nil)
	if err != nil {
		return err
	}
	setSession(req, cred)

	resp, err := c.send(op, req)
	if err != nil {
		return err
	}
	if !resp.ok() {
		return &APIError{Op: op, StatusCode: resp.StatusCode, Body: truncate(resp.Body)}
	}
	return nil
}
