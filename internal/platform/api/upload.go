package api

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"

	"m2b4a/internal/domain/model"
)

// UploadFile streams one file to the application's file storage as the
// multipart field "upload". A single attempt.
func (c *Client) UploadFile(ctx context.Context, app model.Application, name string, r io.Reader) error {
	const op = "upload file"

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	// r belongs to the caller again only once the writer has stopped.
	done := make(chan struct{})
	defer func() {
		pr.Close()
		<-done
	}()

	go func() {
		defer close(done)
		part, err := mw.CreateFormFile("upload", name)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := c.newRequest(ctx, http.MethodPost, c.endpoints.Files+"/uploadFile", pr)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	setAppIdentity(req, app)

	resp, err := c.send(op, req)
	if err != nil {
		return err
	}
	if !resp.ok() {
		return &APIError{Op: op, StatusCode: resp.StatusCode, Body: truncate(resp.Body)}
	}
	return nil
}
