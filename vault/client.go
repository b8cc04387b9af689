package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

const (
	// maxRedirects is the maximum number of HTTP redirects to follow
	// before giving up, matching the default net/http limit.
	maxRedirects = 10

	// httpClientTimeout is the timeout for the default HTTP client
	// used when no custom client is provided.
	httpClientTimeout = 30 * time.Second

	// maxAPIResponseBytes caps response body reads to prevent a
	// misbehaving server from consuming unbounded memory.
	maxAPIResponseBytes = 8 * 1024 * 1024
)

// Client talks to the remote vault service over HTTP and implements
// RemoteService.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	device     string
}

// sameHostRedirectPolicy follows redirects only when the target host
// matches the original request host. This prevents the bearer token
// from leaking to third-party domains.
func sameHostRedirectPolicy(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return errors.New("stopped after 10 redirects")
	}

	if len(via) > 0 {
		origHost := via[0].URL.Host
		if req.URL.Host != origHost {
			return fmt.Errorf("redirect to different host blocked: %s -> %s", origHost, req.URL.Host)
		}
	}

	return nil
}

// NewClient creates a remote vault service client. If httpClient is
// nil, a client with a 30-second timeout and same-host redirect policy
// is used. An empty token puts every call into local-only failure mode
// (ErrAuthenticationMissing) without touching the network.
func NewClient(baseURL, token, device string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:       httpClientTimeout,
			CheckRedirect: sameHostRedirectPolicy,
		}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      token,
		device:     device,
	}
}

// sanitizeResponseBody truncates and sanitizes a response body for
// inclusion in error messages. Limits to 256 bytes and replaces
// non-printable characters to prevent log injection.
func sanitizeResponseBody(body []byte) string {
	const maxLen = 256
	if len(body) > maxLen {
		body = body[:maxLen]
	}

	var clean []byte

	for len(body) > 0 {
		r, size := utf8.DecodeRune(body)
		if r == utf8.RuneError && size <= 1 {
			clean = append(clean, '?')
			body = body[1:]

			continue
		}

		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
			clean = append(clean, '?')
		} else {
			clean = append(clean, body[:size]...)
		}

		body = body[size:]
	}

	return string(clean)
}

// do issues one API request and returns the response body. Server
// errors (5xx) and transport failures come back wrapped in
// TransientError so the upload retry loop knows they are retryable;
// 4xx responses are permanent.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body []byte) ([]byte, error) {
	if c.token == "" {
		return nil, ErrAuthenticationMissing
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("X-Device-Name", c.device)

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransientError{Err: fmt.Errorf("%s %s: %w", method, path, err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAPIResponseBytes))
	if err != nil {
		return nil, &TransientError{Err: fmt.Errorf("reading %s %s response: %w", method, path, err)}
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, &TransientError{Err: fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, sanitizeResponseBody(data))}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		if msg := gjson.GetBytes(data, "error").Str; msg != "" {
			return nil, fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, sanitizeResponseBody([]byte(msg)))
		}

		return nil, fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, sanitizeResponseBody(data))
	}

	return data, nil
}

// postJSON marshals v and issues a POST.
func (c *Client) postJSON(ctx context.Context, path string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshalling request: %w", err)
	}

	return c.do(ctx, http.MethodPost, path, nil, "application/json", body)
}

// ListItems fetches the authoritative media listing.
func (c *Client) ListItems(ctx context.Context) ([]ItemRecord, error) {
	data, err := c.do(ctx, http.MethodGet, "/items", nil, "", nil)
	if err != nil {
		return nil, err
	}

	var out struct {
		Items []ItemRecord `json:"items"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding item listing: %w", err)
	}

	return out.Items, nil
}

// ListFolders fetches the folder listing.
func (c *Client) ListFolders(ctx context.Context) ([]FolderRecord, error) {
	data, err := c.do(ctx, http.MethodGet, "/folders", nil, "", nil)
	if err != nil {
		return nil, err
	}

	var out struct {
		Folders []FolderRecord `json:"folders"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding folder listing: %w", err)
	}

	return out.Folders, nil
}

// CreateUploadSession opens a resumable upload session.
func (c *Client) CreateUploadSession(ctx context.Context, meta UploadMeta) (SessionHandle, error) {
	data, err := c.postJSON(ctx, "/uploads", meta)
	if err != nil {
		return SessionHandle{}, err
	}

	var session SessionHandle
	if err := json.Unmarshal(data, &session); err != nil {
		return SessionHandle{}, fmt.Errorf("decoding upload session: %w", err)
	}

	if session.ID == "" {
		return SessionHandle{}, fmt.Errorf("upload session response missing id: %s", sanitizeResponseBody(data))
	}

	return session, nil
}

// PatchChunk sends one chunk at the given byte offset.
func (c *Client) PatchChunk(ctx context.Context, session SessionHandle, offset int64, chunk []byte) error {
	query := url.Values{"offset": {strconv.FormatInt(offset, 10)}}

	_, err := c.do(ctx, http.MethodPatch, "/uploads/"+url.PathEscape(session.ID), query, "application/octet-stream", chunk)

	return err
}

// FinalizeUpload makes the uploaded object durable.
func (c *Client) FinalizeUpload(ctx context.Context, session SessionHandle) (FinalizeResult, error) {
	data, err := c.postJSON(ctx, "/uploads/"+url.PathEscape(session.ID)+"/finalize", struct{}{})
	if err != nil {
		return FinalizeResult{}, err
	}

	var result FinalizeResult
	if err := json.Unmarshal(data, &result); err != nil {
		return FinalizeResult{}, fmt.Errorf("decoding finalize response: %w", err)
	}

	if result.RemoteID == "" {
		return FinalizeResult{}, fmt.Errorf("finalize response missing remote id: %s", sanitizeResponseBody(data))
	}

	return result, nil
}

// RegisterMetadata records the item's metadata against the finalized
// object, making it visible in the listing.
func (c *Client) RegisterMetadata(ctx context.Context, remoteID string, meta UploadMeta) error {
	_, err := c.postJSON(ctx, "/items/"+url.PathEscape(remoteID)+"/metadata", meta)
	return err
}

// SoftDelete marks items deleted on the server. folderID carries the
// folder context the delete was issued from, or "" for unsorted.
func (c *Client) SoftDelete(ctx context.Context, ids []string, folderID string) error {
	payload := struct {
		IDs      []string `json:"ids"`
		FolderID string   `json:"folderId,omitempty"`
	}{IDs: ids, FolderID: folderID}

	_, err := c.postJSON(ctx, "/items/delete", payload)

	return err
}

// RenameItem assigns a new display name.
func (c *Client) RenameItem(ctx context.Context, id string, name string) error {
	payload := struct {
		Name string `json:"name"`
	}{Name: name}

	_, err := c.postJSON(ctx, "/items/"+url.PathEscape(id)+"/rename", payload)

	return err
}

// MoveMedia reassigns items to a folder, or to unsorted when folderID
// is empty.
func (c *Client) MoveMedia(ctx context.Context, ids []string, folderID string) error {
	payload := struct {
		IDs      []string `json:"ids"`
		FolderID string   `json:"folderId,omitempty"`
	}{IDs: ids, FolderID: folderID}

	_, err := c.postJSON(ctx, "/items/move", payload)

	return err
}

// CreateFolder creates a folder and returns the server's record.
func (c *Client) CreateFolder(ctx context.Context, spec FolderRecord) (FolderRecord, error) {
	data, err := c.postJSON(ctx, "/folders", spec)
	if err != nil {
		return FolderRecord{}, err
	}

	var record FolderRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return FolderRecord{}, fmt.Errorf("decoding folder record: %w", err)
	}

	if record.ID == "" {
		return FolderRecord{}, fmt.Errorf("folder record missing id: %s", sanitizeResponseBody(data))
	}

	return record, nil
}

// UpdateFolder applies a partial update.
func (c *Client) UpdateFolder(ctx context.Context, id string, patch FolderPatch) error {
	body, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("marshalling folder patch: %w", err)
	}

	_, err = c.do(ctx, http.MethodPatch, "/folders/"+url.PathEscape(id), nil, "application/json", body)

	return err
}

// DeleteFolder removes a folder. Members become unsorted server-side;
// the underlying media is untouched.
func (c *Client) DeleteFolder(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/folders/"+url.PathEscape(id), nil, "", nil)
	return err
}
