package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/object"
)

// HTTPClient implements Client against the workspace Metadata API.
type HTTPClient struct {
	baseURL     string
	workspaceID int64
	branch      string
	token       string
	hc          *http.Client
}

// NewHTTP creates an HTTP client for the given workspace. branch may be
// empty for the live branch.
func NewHTTP(baseURL string, workspaceID int64, branch, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		workspaceID: workspaceID,
		branch:      branch,
		token:       token,
		hc:          &http.Client{Timeout: 60 * time.Second},
	}
}

// APIError is a non-2xx response from the Metadata API. It unwraps to a
// sentinel so callers can classify conflicts and misses with errors.Is.
type APIError struct {
	Status   int
	Message  string
	sentinel error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote: %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.sentinel
}

func newAPIError(status int, message string) *APIError {
	e := &APIError{Status: status, Message: message}
	switch {
	case status == http.StatusNotFound:
		e.sentinel = apperr.ErrNotFound
	case status == http.StatusConflict:
		e.sentinel = apperr.ErrConflict
	case status == http.StatusBadRequest && looksLikeConflict(message):
		e.sentinel = apperr.ErrConflict
	}
	return e
}

// looksLikeConflict matches the uniqueness-violation messages the remote
// returns with a generic 400 instead of a 409.
func looksLikeConflict(message string) bool {
	m := strings.ToLower(message)
	return strings.Contains(m, "already in use") ||
		strings.Contains(m, "already exists") ||
		strings.Contains(m, "must be unique") ||
		strings.Contains(m, "duplicate")
}

// resource returns the API path segment for an object type. Endpoints are
// nested under their owning api group.
func resource(typ object.Type, opts Options) (string, error) {
	switch typ {
	case object.TypeAPIGroup:
		return "apigroup", nil
	case object.TypeAPIEndpoint:
		if opts.GroupID == 0 {
			return "", fmt.Errorf("remote: endpoint operation requires a group id")
		}
		return fmt.Sprintf("apigroup/%d/api", opts.GroupID), nil
	default:
		if !typ.Valid() {
			return "", fmt.Errorf("remote: %w: %q", apperr.ErrUnknownType, typ)
		}
		return string(typ), nil
	}
}

// wireItem is the remote record shape shared by list and get responses.
// The script payload may arrive as a plain string or a {status, value}
// wrapper; some entries carry no script at all.
type wireItem struct {
	ID         int64           `json:"id"`
	GUID       string          `json:"guid"`
	Name       string          `json:"name"`
	Verb       string          `json:"verb"`
	Path       string          `json:"path"`
	APIGroupID int64           `json:"apigroup_id"`
	XanoScript json.RawMessage `json:"xanoscript"`
}

type listResponse struct {
	Items    []wireItem `json:"items"`
	CurPage  int        `json:"curPage"`
	NextPage *int       `json:"nextPage"`
}

type idResponse struct {
	ID int64 `json:"id"`
}

func (w wireItem) toObject(groupID int64) Object {
	script, ok := decodeScript(w.XanoScript)
	if groupID == 0 {
		groupID = w.APIGroupID
	}
	return Object{
		ID:        w.ID,
		GUID:      w.GUID,
		Name:      w.Name,
		Verb:      w.Verb,
		HTTPPath:  w.Path,
		GroupID:   groupID,
		Script:    script,
		HasScript: ok,
	}
}

// decodeScript extracts source from either a JSON string or a
// {status, value} wrapper. The second return is false when no source could
// be extracted.
func decodeScript(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}
	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain, true
	}
	var wrapped struct {
		Status string `json:"status"`
		Value  string `json:"value"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Value != "" {
		return wrapped.Value, true
	}
	return "", false
}

func (c *HTTPClient) url(res string) string {
	return fmt.Sprintf("%s/workspace/%d/%s", c.baseURL, c.workspaceID, res)
}

func (c *HTTPClient) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("remote: marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("remote: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.branch != "" {
		req.Header.Set("X-Branch", c.branch)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("remote: %s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return fmt.Errorf("remote: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, errorMessage(data))
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("remote: decode response: %w", err)
		}
	}
	return nil
}

// errorMessage pulls the remote's message field out of an error payload,
// falling back to the raw body so remote errors surface verbatim.
func errorMessage(data []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(data))
}

// List implements Client.
func (c *HTTPClient) List(ctx context.Context, typ object.Type, page, perPage int, opts Options) ([]Object, bool, error) {
	res, err := resource(typ, opts)
	if err != nil {
		return nil, false, err
	}
	url := c.url(res) + "?page=" + strconv.Itoa(page) + "&per_page=" + strconv.Itoa(perPage)
	var out listResponse
	if err := c.do(ctx, http.MethodGet, url, nil, &out); err != nil {
		return nil, false, err
	}
	objs := make([]Object, 0, len(out.Items))
	for _, it := range out.Items {
		objs = append(objs, it.toObject(opts.GroupID))
	}
	return objs, out.NextPage != nil, nil
}

// Get implements Client.
func (c *HTTPClient) Get(ctx context.Context, typ object.Type, id int64, opts Options) (Object, error) {
	res, err := resource(typ, opts)
	if err != nil {
		return Object{}, err
	}
	var out wireItem
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/%d", c.url(res), id), nil, &out); err != nil {
		return Object{}, err
	}
	return out.toObject(opts.GroupID), nil
}

// Create implements Client.
func (c *HTTPClient) Create(ctx context.Context, typ object.Type, script string, opts Options) (int64, error) {
	res, err := resource(typ, opts)
	if err != nil {
		return 0, err
	}
	body := map[string]any{"xanoscript": script}
	var out idResponse
	if err := c.do(ctx, http.MethodPost, c.url(res), body, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// Update implements Client.
func (c *HTTPClient) Update(ctx context.Context, typ object.Type, id int64, script string, opts Options) error {
	res, err := resource(typ, opts)
	if err != nil {
		return err
	}
	body := map[string]any{"xanoscript": script}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("%s/%d", c.url(res), id), body, nil)
}

// Delete implements Client.
func (c *HTTPClient) Delete(ctx context.Context, typ object.Type, id int64, opts Options) error {
	res, err := resource(typ, opts)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", c.url(res), id), nil, nil)
}

// Verify *HTTPClient satisfies Client at compile time.
var _ Client = (*HTTPClient)(nil)
