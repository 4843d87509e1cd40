package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/chaldal/admin-console/internal/core/ports"
)

// methodField is the form field the API reads to route a POST as another verb.
const methodField = "_method"

func encodeMultipart(fields ports.FormFields, uploads []ports.Upload) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, kv := range fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", err
		}
	}
	for _, u := range uploads {
		part, err := w.CreateFormFile(u.Field, u.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(u.Content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// postForm sends fields and uploads as multipart/form-data.
func (c *Client) postForm(ctx context.Context, endpoint, path string, fields ports.FormFields, uploads []ports.Upload) (json.RawMessage, error) {
	body, contentType, err := encodeMultipart(fields, uploads)
	if err != nil {
		return nil, fmt.Errorf("apiclient: encode %s: %w", endpoint, err)
	}
	return c.send(ctx, request{
		endpoint:    endpoint,
		method:      http.MethodPost,
		path:        path,
		body:        body,
		contentType: contentType,
	})
}

// update sends an update. Uploads force a multipart POST carrying
// _method=PUT; otherwise the fields go out as a JSON PUT.
func (c *Client) update(ctx context.Context, endpoint, path string, fields ports.FormFields, uploads []ports.Upload) (json.RawMessage, error) {
	if len(uploads) > 0 {
		spoofed := make(ports.FormFields, 0, len(fields)+1)
		spoofed.Add(methodField, http.MethodPut)
		for _, kv := range fields {
			if kv[0] != methodField {
				spoofed = append(spoofed, kv)
			}
		}
		return c.postForm(ctx, endpoint, path, spoofed, uploads)
	}

	obj := make(map[string]string, len(fields))
	for _, kv := range fields {
		if _, seen := obj[kv[0]]; !seen {
			obj[kv[0]] = kv[1]
		}
	}
	return c.sendJSON(ctx, endpoint, http.MethodPut, path, obj)
}

func single(u *ports.Upload) []ports.Upload {
	if u == nil {
		return nil
	}
	return []ports.Upload{*u}
}
