package scrapbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
)

// Multipart field names expected by the import endpoint. The uploaded file
// must be named import.json; the name field is a literal placeholder the
// web UI sends and the endpoint requires.
const (
	importFileField = "import-file"
	importFileName  = "import.json"
	importNameField = "name"
	importNameValue = "undefined"
)

// csrfHeader carries the token obtained from /api/users/me.
const csrfHeader = "X-CSRF-TOKEN"

// Import uploads pages into the destination project. It first obtains a
// CSRF token tied to the session, then posts the pages as a multipart
// import.json upload. Failures are wrapped in *ImportError.
func (c *Client) Import(ctx context.Context, project string, pages []Page) error {
	token, err := c.csrfToken(ctx)
	if err != nil {
		return &ImportError{Project: project, Err: err}
	}

	body, contentType, err := buildImportBody(pages)
	if err != nil {
		return &ImportError{Project: project, Err: err}
	}

	path := fmt.Sprintf("/api/page-data/import/%s.json", url.PathEscape(project))

	resp, err := c.do(ctx, &request{
		method:      http.MethodPost,
		path:        path,
		body:        body,
		contentType: contentType,
		headers:     map[string]string{csrfHeader: token},
	})
	if err != nil {
		return &ImportError{Project: project, Err: err}
	}
	resp.Body.Close()

	c.logger.Info("imported pages",
		slog.String("project", project),
		slog.Int("pages", len(pages)),
	)

	return nil
}

// csrfToken fetches the session's CSRF token from the user endpoint.
func (c *Client) csrfToken(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, &request{method: http.MethodGet, path: "/api/users/me"})
	if err != nil {
		return "", fmt.Errorf("obtaining CSRF token: %w", err)
	}
	defer resp.Body.Close()

	var user userResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", fmt.Errorf("decoding user response: %w", err)
	}

	if user.CSRFToken == "" {
		return "", fmt.Errorf("user response contained no CSRF token")
	}

	return user.CSRFToken, nil
}

// buildImportBody encodes pages as the multipart form the import endpoint
// expects. Returns the encoded body and its content type.
func buildImportBody(pages []Page) ([]byte, string, error) {
	payload, err := json.Marshal(importPayload{Pages: pages})
	if err != nil {
		return nil, "", fmt.Errorf("encoding import payload: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile(importFileField, importFileName)
	if err != nil {
		return nil, "", fmt.Errorf("creating form file: %w", err)
	}

	if _, err := part.Write(payload); err != nil {
		return nil, "", fmt.Errorf("writing import payload: %w", err)
	}

	if err := w.WriteField(importNameField, importNameValue); err != nil {
		return nil, "", fmt.Errorf("writing name field: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("finalizing multipart body: %w", err)
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}
