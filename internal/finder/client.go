package finder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Service defines the operations the UI layers depend on. It is implemented
// by *Client and can be faked in tests.
type Service interface {
	CheckHealth(ctx context.Context) (*Health, error)
	UploadVideo(ctx context.Context, file *VideoFile) (*UploadResult, error)
	GetUploadStatus(ctx context.Context, videoNo string) (*UploadStatus, error)
	TeachObject(ctx context.Context, name, alias string) (*TrackedObject, error)
	ListTrackedObjects(ctx context.Context) ([]TrackedObject, error)
	FindTrackedObjects(ctx context.Context, filter ObjectFilter) ([]TrackedObject, error)
	GetTrackedObject(ctx context.Context, id ObjectID) (*TrackedObject, error)
	DeleteTrackedObject(ctx context.Context, id ObjectID) (*Confirmation, error)
	Search(ctx context.Context, query string) (*SearchResult, error)
	GetSearchHistory(ctx context.Context) (*SearchHistory, error)
	GetSearchSuggestions(ctx context.Context) ([]string, error)
	GetCommonObjects(ctx context.Context) ([]ObjectTemplate, error)
}

// Ensure Client implements Service at compile time.
var _ Service = (*Client)(nil)

const (
	DefaultBaseURL       = "http://localhost:8000"
	DefaultTimeout       = 30 * time.Second
	DefaultUploadTimeout = 120 * time.Second
	defaultUserAgent     = "finder/0.1"
)

// Options configure a Client. Zero values select the defaults.
type Options struct {
	BaseURL       string
	Timeout       time.Duration
	UploadTimeout time.Duration
	UserAgent     string
	Logger        *slog.Logger
	HTTPClient    *http.Client
}

// Client talks to the object finder HTTP API. It holds only immutable
// configuration and is safe for concurrent use.
type Client struct {
	baseURL       *url.URL
	doer          Doer
	timeout       time.Duration
	uploadTimeout time.Duration
	logger        *slog.Logger
}

// NewClient builds a Client from opts.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = logger.With("component", "api")
	httpClient := opts.HTTPClient
	if httpClient == nil {
		// Deadlines come from the request context, per operation class.
		httpClient = &http.Client{}
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	uploadTimeout := opts.UploadTimeout
	if uploadTimeout <= 0 {
		uploadTimeout = DefaultUploadTimeout
	}
	return &Client{
		baseURL: base,
		doer: Chain(httpClient,
			normalizeErrors(),
			logRequests(logger),
			cacheBust(),
			defaultHeaders(userAgent),
		),
		timeout:       timeout,
		uploadTimeout: uploadTimeout,
		logger:        logger,
	}, nil
}

// BaseURL returns the service origin the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// CheckHealth reports the service status. Every failure carries the same
// "unable to connect" message; Kind still reflects the cause.
func (c *Client) CheckHealth(ctx context.Context) (*Health, error) {
	const op = "check health"
	var payload Health
	if err := c.send(ctx, call{op: op, method: http.MethodGet, path: "/health"}, &payload); err != nil {
		fe := normalize(op, err)
		return nil, &Error{Kind: fe.Kind, Op: op, Status: fe.Status, Message: msgUnreachable, Err: fe}
	}
	return &payload, nil
}

// UploadVideo streams file to the service as multipart form field "file".
// The caller keeps ownership of file.Body.
func (c *Client) UploadVideo(ctx context.Context, file *VideoFile) (*UploadResult, error) {
	const op = "upload video"
	if err := validateVideo(op, file); err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	written := make(chan error, 1)
	go func() {
		err := writeVideoPart(form, file)
		pw.CloseWithError(err)
		written <- err
	}()

	var payload UploadResult
	err := c.send(ctx, call{
		op:          op,
		method:      http.MethodPost,
		path:        "/api/upload",
		body:        pr,
		contentType: form.FormDataContentType(),
		timeout:     c.uploadTimeout,
	}, &payload)
	pr.Close()
	// A local read failure outranks whatever the transport made of it.
	var readErr *bodyError
	if werr := <-written; err != nil && errors.As(werr, &readErr) {
		err = werr
	}
	if err != nil {
		fe := normalize(op, err)
		if fe.Kind == Timeout {
			return nil, &Error{Kind: Timeout, Op: op, Message: msgUploadTimeout, Err: fe}
		}
		return nil, fe
	}
	c.logger.Info("video uploaded", "video_no", payload.VideoNo, "file", file.Name, "size", file.Size)
	return &payload, nil
}

func writeVideoPart(form *multipart.Writer, file *VideoFile) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(file.Name)))
	header.Set("Content-Type", file.ContentType)
	part, err := form.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create form part: %w", err)
	}
	var body io.Reader = sourceReader{r: file.Body}
	if file.Progress != nil {
		body = &progressReader{r: body, total: file.Size, fn: file.Progress}
	}
	if _, err := io.Copy(part, body); err != nil {
		return fmt.Errorf("copy video: %w", err)
	}
	return form.Close()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// GetUploadStatus reports processing progress for an uploaded video.
func (c *Client) GetUploadStatus(ctx context.Context, videoNo string) (*UploadStatus, error) {
	const op = "get upload status"
	videoNo, err := validateID(op, "video number", videoNo)
	if err != nil {
		return nil, err
	}
	var payload UploadStatus
	if err := c.send(ctx, call{op: op, method: http.MethodGet, path: "/api/upload/status/" + url.PathEscape(videoNo)}, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// TeachObject registers a new object to track. Name and alias are trimmed
// before validation and transmission.
func (c *Client) TeachObject(ctx context.Context, name, alias string) (*TrackedObject, error) {
	const op = "teach object"
	name, alias, err := validateObject(op, name, alias)
	if err != nil {
		return nil, err
	}
	var payload TrackedObject
	if err := c.sendJSON(ctx, op, http.MethodPost, "/api/objects/", objectRequest{Name: name, Alias: alias}, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ListTrackedObjects returns every tracked object in server order.
func (c *Client) ListTrackedObjects(ctx context.Context) ([]TrackedObject, error) {
	return c.FindTrackedObjects(ctx, ObjectFilter{})
}

// ObjectFilter narrows FindTrackedObjects. Zero values mean no filter.
type ObjectFilter struct {
	Limit  int
	Search string
}

// FindTrackedObjects lists tracked objects matching filter.
func (c *Client) FindTrackedObjects(ctx context.Context, filter ObjectFilter) ([]TrackedObject, error) {
	const op = "list tracked objects"
	if filter.Limit < 0 || filter.Limit > MaxListLimit {
		return nil, invalidf(op, "limit must be between 1 and %d", MaxListLimit)
	}
	values := url.Values{}
	if filter.Limit > 0 {
		values.Set("limit", strconv.Itoa(filter.Limit))
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		values.Set("search", term)
	}
	var payload []TrackedObject
	if err := c.send(ctx, call{op: op, method: http.MethodGet, path: "/api/objects/", query: values}, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// GetTrackedObject fetches a single tracked object.
func (c *Client) GetTrackedObject(ctx context.Context, id ObjectID) (*TrackedObject, error) {
	const op = "get tracked object"
	trimmed, err := validateID(op, "object ID", string(id))
	if err != nil {
		return nil, err
	}
	var payload TrackedObject
	if err := c.send(ctx, call{op: op, method: http.MethodGet, path: objectPath(trimmed)}, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// DeleteTrackedObject removes a tracked object. An empty id fails before any
// request is made.
func (c *Client) DeleteTrackedObject(ctx context.Context, id ObjectID) (*Confirmation, error) {
	const op = "delete tracked object"
	trimmed, err := validateID(op, "object ID", string(id))
	if err != nil {
		return nil, err
	}
	var payload Confirmation
	if err := c.send(ctx, call{op: op, method: http.MethodDelete, path: objectPath(trimmed)}, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func objectPath(id string) string {
	return "/api/objects/" + url.PathEscape(id)
}

// Search asks the service where an object is. Invalid queries return an
// InvalidInput error. Any other failure is reported as a not-found result whose
// Failure field holds the normalized error.
func (c *Client) Search(ctx context.Context, query string) (*SearchResult, error) {
	const op = "search"
	query, err := validateQuery(op, query)
	if err != nil {
		return nil, err
	}
	var payload SearchResult
	if err := c.sendJSON(ctx, op, http.MethodPost, "/api/search/", searchRequest{Query: query}, &payload); err != nil {
		fe := normalize(op, err)
		c.logger.Warn("search failed", "query", query, "kind", fe.Kind.String(), "error", fe.Message)
		return &SearchResult{Found: false, Message: fe.Message, Failure: fe}, nil
	}
	payload.normalize()
	return &payload, nil
}

// GetSearchHistory returns recently located objects, most recent first.
func (c *Client) GetSearchHistory(ctx context.Context) (*SearchHistory, error) {
	var payload SearchHistory
	if err := c.send(ctx, call{op: "get search history", method: http.MethodGet, path: "/api/search/history"}, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// GetSearchSuggestions returns suggested query strings.
func (c *Client) GetSearchSuggestions(ctx context.Context) ([]string, error) {
	var payload suggestionsResponse
	if err := c.send(ctx, call{op: "get search suggestions", method: http.MethodGet, path: "/api/search/suggestions"}, &payload); err != nil {
		return nil, err
	}
	return payload.Suggestions, nil
}

// GetCommonObjects returns quick-add templates for commonly tracked objects.
func (c *Client) GetCommonObjects(ctx context.Context) ([]ObjectTemplate, error) {
	var payload commonObjectsResponse
	if err := c.send(ctx, call{op: "get common objects", method: http.MethodGet, path: "/api/objects/suggestions/common"}, &payload); err != nil {
		return nil, err
	}
	return payload.CommonObjects, nil
}

type call struct {
	op          string
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	timeout     time.Duration
}

func (c *Client) sendJSON(ctx context.Context, op, method, path string, payload, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return normalize(op, fmt.Errorf("encode request: %w", err))
	}
	return c.send(ctx, call{op: op, method: method, path: path, body: bytes.NewReader(body)}, dest)
}

// send runs one round trip through the middleware chain and decodes the JSON
// body into dest. The returned error is always *Error.
func (c *Client) send(ctx context.Context, cl call, dest any) error {
	if c == nil {
		return &Error{Kind: UnknownError, Op: cl.op, Message: "client is nil"}
	}
	timeout := cl.timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(context.WithValue(ctx, opKey{}, cl.op), timeout)
	defer cancel()

	rel, err := url.Parse(cl.path)
	if err != nil {
		return normalize(cl.op, fmt.Errorf("build url: %w", err))
	}
	if len(cl.query) > 0 {
		rel.RawQuery = cl.query.Encode()
	}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, cl.method, reqURL.String(), cl.body)
	if err != nil {
		return normalize(cl.op, fmt.Errorf("create request: %w", err))
	}
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return normalize(cl.op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return normalize(cl.op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	u.Path = ""
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
