package api

import (
	"context"
	"net/http"

	"m2b4a/internal/domain/model"
)

const (
	headerApplicationID = "X-Parse-Application-Id"
	headerMasterKey     = "X-Parse-Master-Key"
)

func setAppIdentity(req *http.Request, app model.Application) {
	req.Header.Set(headerApplicationID, app.AppID)
	req.Header.Set(headerMasterKey, app.MasterKey)
}

// VerifyReachable probes the application's public endpoint with its own
// keys. A single attempt; polling is the caller's business.
func (c *Client) VerifyReachable(ctx context.Context, app model.Application) error {
	const op = "verify application"

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, c.endpoints.Parse+"/serverInfo", nil)
	if err != nil {
		return err
	}
	setAppIdentity(req, app)

	resp, err := c.send(op, req)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{Op: op, StatusCode: resp.StatusCode, Body: truncate(resp.Body)}
	}
	return nil
}
