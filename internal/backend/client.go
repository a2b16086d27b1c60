// Package backend is the typed client for the mail backend's REST API.
// Every method blocks and returns a result.Result, so callers run them
// inside task work.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nhle/mailagent/internal/apierr"
	"github.com/nhle/mailagent/internal/result"
	"github.com/nhle/mailagent/internal/transport"
)

// Client calls the backend through a retrying executor. Per-endpoint
// timeouts are multiples of the base timeout.
type Client struct {
	exec        *transport.Executor
	baseTimeout time.Duration
	token       string
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a backend client. baseTimeout is the per-attempt timeout
// of ordinary calls; slower endpoints use two or three times it.
func New(
	exec *transport.Executor,
	baseTimeout time.Duration,
	opts ...Option,
) *Client {
	c := &Client{
		exec:        exec,
		baseTimeout: baseTimeout,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) request(method, path string, timeoutFactor int) transport.Request {
	req := transport.NewRequest(method, path).
		WithTimeout(c.baseTimeout * time.Duration(timeoutFactor))
	if c.token != "" {
		req = req.WithHeader("Authorization", "Bearer "+c.token)
	}
	return req
}

func (c *Client) jsonRequest(
	method, path string,
	timeoutFactor int,
	body any,
) (transport.Request, *apierr.Error) {
	req, err := c.request(method, path, timeoutFactor).WithJSON(body)
	if err != nil {
		return req, apierr.New(err.Error(), 0, nil).WithCause(err)
	}
	return req, nil
}

// call executes req and decodes a 2xx body into T. Non-2xx responses
// become failures parsed from the error body.
func call[T any](
	ctx context.Context,
	c *Client,
	req transport.Request,
	describe string,
) result.Result[T] {
	return result.Then(c.exec.Execute(ctx, req, describe), func(resp transport.Response) result.Result[T] {
		if !resp.IsSuccess() {
			apiErr := transport.ParseErrorResponse(resp)
			c.logger.Warn("backend returned error",
				"op", describe, "status", resp.StatusCode,
				"category", apiErr.Category(), "error", apiErr.Message())
			return result.Failure[T](apiErr)
		}

		var out T
		if err := json.Unmarshal([]byte(resp.Body), &out); err != nil {
			return result.Failure[T](apierr.New(
				fmt.Sprintf("Failed to parse response for %s: %v", describe, err),
				http.StatusInternalServerError,
				nil,
			).WithCause(err))
		}
		return result.Success(out)
	})
}

func emailPath(id, suffix string) string {
	return "/emails/" + url.PathEscape(id) + suffix
}

// CheckAuthStatus reports whether the backend holds a valid Gmail login.
func (c *Client) CheckAuthStatus(ctx context.Context) result.Result[bool] {
	res := call[AuthStatus](ctx, c, c.request(http.MethodGet, "/auth/status", 1), "check auth status")
	return result.Map(res, func(s AuthStatus) bool { return s.Authenticated })
}

// InitiateLogin starts the OAuth flow on the backend host.
func (c *Client) InitiateLogin(ctx context.Context) result.Result[LoginResponse] {
	return call[LoginResponse](ctx, c, c.request(http.MethodPost, "/auth/login", 2), "initiate login")
}

// BackendStatus returns Gmail and local AI service health.
func (c *Client) BackendStatus(ctx context.Context) result.Result[Status] {
	return call[Status](ctx, c, c.request(http.MethodGet, "/status", 1), "backend status")
}

// ListEmails returns message summaries for a label. An empty label means
// INBOX; maxResults <= 0 leaves the limit to the backend.
func (c *Client) ListEmails(
	ctx context.Context,
	labelID string,
	maxResults int,
) result.Result[[]EmailMetadata] {
	if labelID == "" {
		labelID = LabelInbox
	}
	q := url.Values{"labelId": []string{labelID}}
	if maxResults > 0 {
		q.Set("maxResults", strconv.Itoa(maxResults))
	}
	req := c.request(http.MethodGet, "/emails?"+q.Encode(), 2)
	return call[[]EmailMetadata](ctx, c, req, "list emails in "+labelID)
}

// EmailDetails fetches one full message.
func (c *Client) EmailDetails(ctx context.Context, id string) result.Result[EmailDetails] {
	req := c.request(http.MethodGet, emailPath(id, ""), 1)
	return call[EmailDetails](ctx, c, req, "get email "+id)
}

// Suggestions asks the local AI service for reply suggestions. A 503
// from this endpoint means the AI service is unavailable.
func (c *Client) Suggestions(ctx context.Context, id string) result.Result[[]string] {
	req := c.request(http.MethodGet, emailPath(id, "/suggestions"), 3)
	res := call[suggestionsResponse](ctx, c, req, "suggestions for "+id)
	if err := res.Err(); err != nil && err.Code() == http.StatusServiceUnavailable &&
		err.Category() == apierr.CategoryServer {
		return result.Failure[[]string](apierr.AIService(err.Message()).WithCause(err))
	}
	return result.Map(res, func(s suggestionsResponse) []string { return s.Suggestions })
}

// ArchiveEmail removes a message from the inbox.
func (c *Client) ArchiveEmail(ctx context.Context, id string) result.Result[ActionResponse] {
	req := c.request(http.MethodPost, emailPath(id, "/archive"), 1)
	return call[ActionResponse](ctx, c, req, "archive email "+id)
}

// DeleteEmail moves a message to the trash.
func (c *Client) DeleteEmail(ctx context.Context, id string) result.Result[ActionResponse] {
	req := c.request(http.MethodDelete, emailPath(id, "/delete"), 1)
	return call[ActionResponse](ctx, c, req, "delete email "+id)
}

// SendEmail sends a new message or a reply.
func (c *Client) SendEmail(ctx context.Context, d Draft) result.Result[ActionResponse] {
	req, err := c.jsonRequest(http.MethodPost, "/emails/send", 3, d)
	if err != nil {
		return result.Failure[ActionResponse](err)
	}
	return call[ActionResponse](ctx, c, req, "send email")
}

// ModifyLabels adds and removes labels on a message. Empty lists are
// left out of the request body.
func (c *Client) ModifyLabels(
	ctx context.Context,
	id string,
	add, remove []string,
) result.Result[ActionResponse] {
	req, err := c.jsonRequest(http.MethodPost, emailPath(id, "/modify"), 1, modifyBody{
		AddLabelIDs:    add,
		RemoveLabelIDs: remove,
	})
	if err != nil {
		return result.Failure[ActionResponse](err)
	}
	return call[ActionResponse](ctx, c, req, "modify labels of "+id)
}

// MarkRead removes the UNREAD label.
func (c *Client) MarkRead(ctx context.Context, id string) result.Result[ActionResponse] {
	return c.ModifyLabels(ctx, id, nil, []string{LabelUnread})
}

// MarkUnread adds the UNREAD label.
func (c *Client) MarkUnread(ctx context.Context, id string) result.Result[ActionResponse] {
	return c.ModifyLabels(ctx, id, []string{LabelUnread}, nil)
}

// Config returns the backend settings.
func (c *Client) Config(ctx context.Context) result.Result[ConfigData] {
	return call[ConfigData](ctx, c, c.request(http.MethodGet, "/config", 1), "get config")
}

// SaveConfig stores backend settings. A response with success=false is a
// failure carrying the backend's message.
func (c *Client) SaveConfig(ctx context.Context, cfg ConfigData) result.Result[bool] {
	req, err := c.jsonRequest(http.MethodPost, "/config", 1, cfg)
	if err != nil {
		return result.Failure[bool](err)
	}
	return result.Then(call[saveResponse](ctx, c, req, "save config"), func(r saveResponse) result.Result[bool] {
		if !r.Success {
			msg := r.Message
			if msg == "" {
				msg = "Failed to save configuration"
			}
			return result.Failure[bool](apierr.New(msg, 0, nil))
		}
		return result.Success(true)
	})
}

// Signature returns the user's email signature.
func (c *Client) Signature(ctx context.Context) result.Result[string] {
	res := call[signatureBody](ctx, c, c.request(http.MethodGet, "/config/signature", 1), "get signature")
	return result.Map(res, func(s signatureBody) string { return s.Signature })
}

// SaveSignature stores the user's email signature.
func (c *Client) SaveSignature(ctx context.Context, signature string) result.Result[bool] {
	req, err := c.jsonRequest(http.MethodPost, "/config/signature", 1, signatureBody{Signature: signature})
	if err != nil {
		return result.Failure[bool](err)
	}
	res := call[statusBody](ctx, c, req, "save signature")
	return result.Map(res, func(s statusBody) bool { return s.Status == "success" })
}

// ThreadMessages lists the message IDs in a thread.
func (c *Client) ThreadMessages(ctx context.Context, threadID string) result.Result[[]string] {
	req := c.request(http.MethodGet, "/threads/"+url.PathEscape(threadID), 1)
	res := call[threadResponse](ctx, c, req, "get thread "+threadID)
	return result.Map(res, func(t threadResponse) []string { return t.MessageIDs })
}
