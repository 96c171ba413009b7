// Package api is the HTTP client for the platform's backend REST API.
//
// Every method maps failures to typed web errors: the response's message
// field, when present, becomes the user-facing Message, and the status code
// selects the Kind.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/avasar/portal/internal/platform/timeouts"
	apperrors "github.com/avasar/portal/internal/services/web/platform/errors"
)

const (
	tracerName = "github.com/avasar/portal/internal/services/web/api"
	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 64 << 10
)

// Client calls the backend REST API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tracer  trace.Tracer
}

// New creates a client rooted at baseURL, for example
// "http://localhost:5000/api". A nil httpClient uses a client bounded by
// timeouts.APIRequest.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("api base url must be http or https, got %q", baseURL)
	}
	parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeouts.APIRequest}
	}
	return &Client{
		baseURL: parsed,
		http:    httpClient,
		tracer:  otel.Tracer(tracerName),
	}, nil
}

// call describes one API request. Route is the low-cardinality span name.
type call struct {
	method      string
	route       string
	path        string
	query       url.Values
	token       string
	body        any
	contentType string
	raw         io.Reader
}

func (c *Client) do(ctx context.Context, spec call, out any) error {
	ctx, span := c.tracer.Start(ctx, "api "+spec.method+" "+spec.route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", spec.method),
			attribute.String("url.template", spec.route),
		),
	)
	defer span.End()

	err := c.roundTrip(ctx, spec, out, span)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperrors.KindOf(err)))
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, spec call, out any, span trace.Span) error {
	// spec.path is already escaped; keep it verbatim on the wire.
	target := *c.baseURL
	escaped := c.baseURL.EscapedPath() + spec.path
	unescaped, err := url.PathUnescape(escaped)
	if err != nil {
		return fmt.Errorf("build %s path: %w", spec.route, err)
	}
	target.Path = unescaped
	target.RawPath = escaped
	if len(spec.query) > 0 {
		target.RawQuery = spec.query.Encode()
	}

	body := spec.raw
	contentType := spec.contentType
	if spec.body != nil {
		payload, err := json.Marshal(spec.body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", spec.route, err)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, spec.method, target.String(), body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", spec.route, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if spec.token != "" {
		req.Header.Set("Authorization", "Bearer "+spec.token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("%s %s: %w", spec.method, spec.route, err)
		}
		return fmt.Errorf("%s %s: %v: %w", spec.method, spec.route, err, apperrors.Error{Kind: apperrors.KindUnavailable})
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s: %w", spec.method, spec.route, decodeError(resp))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %v: %w", spec.route, err, apperrors.Error{Kind: apperrors.KindUnavailable})
	}
	return nil
}

func decodeError(resp *http.Response) error {
	kind := apperrors.KindForStatus(resp.StatusCode)
	if kind == apperrors.KindUnknown {
		kind = apperrors.KindUnavailable
	}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if len(data) > 0 && json.Unmarshal(data, &payload) == nil {
		message := strings.TrimSpace(payload.Message)
		if message == "" {
			message = strings.TrimSpace(payload.Error)
		}
		return apperrors.Error{Kind: kind, Message: message}
	}
	return apperrors.Error{Kind: kind}
}

// Login authenticates email and password.
func (c *Client) Login(ctx context.Context, creds Credentials) (AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, call{method: http.MethodPost, route: "/auth/login", path: "/auth/login", body: creds}, &out)
	return out, err
}

// Register creates the account after the email was verified.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, call{method: http.MethodPost, route: "/auth/register", path: "/auth/register", body: req}, &out)
	return out, err
}

// SendOTP asks the backend to email a one-time code.
func (c *Client) SendOTP(ctx context.Context, email string) error {
	return c.do(ctx, call{method: http.MethodPost, route: "/auth/send-otp", path: "/auth/send-otp", body: map[string]string{"email": email}}, nil)
}

// VerifyOTP checks a one-time code for email.
func (c *Client) VerifyOTP(ctx context.Context, email string, otp string) error {
	return c.do(ctx, call{method: http.MethodPost, route: "/auth/verify-otp", path: "/auth/verify-otp", body: map[string]string{"email": email, "otp": otp}}, nil)
}

// ResetPassword sets a new password for a verified email.
func (c *Client) ResetPassword(ctx context.Context, email string, newPassword string) error {
	return c.do(ctx, call{method: http.MethodPost, route: "/auth/reset-password", path: "/auth/reset-password", body: map[string]string{"email": email, "newPassword": newPassword}}, nil)
}

// CheckUsername reports whether username is free.
func (c *Client) CheckUsername(ctx context.Context, username string) (bool, error) {
	var out struct {
		Available bool `json:"available"`
	}
	err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "/auth/check-username",
		path:   "/auth/check-username",
		query:  url.Values{"username": {username}},
	}, &out)
	return out.Available, err
}

// LookupSponsor resolves a referral code to its owner.
func (c *Client) LookupSponsor(ctx context.Context, code string) (Sponsor, error) {
	var out struct {
		Sponsor *Sponsor `json:"sponsor"`
	}
	err := c.do(ctx, call{
		method: http.MethodGet,
		route:  "/auth/referral/{code}",
		path:   "/auth/referral/" + url.PathEscape(code),
	}, &out)
	if err != nil {
		return Sponsor{}, err
	}
	if out.Sponsor == nil {
		return Sponsor{}, apperrors.E(apperrors.KindNotFound, "")
	}
	return *out.Sponsor, nil
}

// Profile loads the token owner's profile.
func (c *Client) Profile(ctx context.Context, token string) (User, error) {
	var raw json.RawMessage
	if err := c.do(ctx, call{method: http.MethodGet, route: "/users/profile", path: "/users/profile", token: token}, &raw); err != nil {
		return User{}, err
	}
	return decodeUser(raw)
}

// UpdateProfile saves profile edits and returns the updated user.
func (c *Client) UpdateProfile(ctx context.Context, token string, update ProfileUpdate) (User, error) {
	var raw json.RawMessage
	if err := c.do(ctx, call{method: http.MethodPut, route: "/users/profile", path: "/users/profile", token: token, body: update}, &raw); err != nil {
		return User{}, err
	}
	return decodeUser(raw)
}

// UploadPhoto replaces the profile photo.
func (c *Client) UploadPhoto(ctx context.Context, token string, photo PhotoUpload) (PhotoResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename=%q`, photo.Filename))
	header.Set("Content-Type", photo.ContentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return PhotoResult{}, fmt.Errorf("build photo form: %w", err)
	}
	if _, err := part.Write(photo.Data); err != nil {
		return PhotoResult{}, fmt.Errorf("build photo form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return PhotoResult{}, fmt.Errorf("build photo form: %w", err)
	}

	var out PhotoResult
	err = c.do(ctx, call{
		method:      http.MethodPost,
		route:       "/users/upload-photo",
		path:        "/users/upload-photo",
		token:       token,
		contentType: writer.FormDataContentType(),
		raw:         &buf,
	}, &out)
	return out, err
}

// Team loads the downline roster and stats.
func (c *Client) Team(ctx context.Context, token string) (TeamSummary, error) {
	var out TeamSummary
	err := c.do(ctx, call{method: http.MethodGet, route: "/users/team", path: "/users/team", token: token}, &out)
	return out, err
}

// Income loads earnings, optionally narrowed to a period.
func (c *Client) Income(ctx context.Context, token string, period string) (IncomeSummary, error) {
	var query url.Values
	if period = strings.TrimSpace(period); period != "" && period != "all" {
		query = url.Values{"period": {period}}
	}
	var out IncomeSummary
	err := c.do(ctx, call{method: http.MethodGet, route: "/users/income", path: "/users/income", query: query, token: token}, &out)
	return out, err
}

// Rank loads rank standing.
func (c *Client) Rank(ctx context.Context, token string) (RankSummary, error) {
	var out RankSummary
	err := c.do(ctx, call{method: http.MethodGet, route: "/users/rank", path: "/users/rank", token: token}, &out)
	return out, err
}

// Invite sends a team invitation.
func (c *Client) Invite(ctx context.Context, token string, invite Invite) error {
	return c.do(ctx, call{method: http.MethodPost, route: "/users/invite", path: "/users/invite", token: token, body: invite}, nil)
}

// SubmitContact posts the public contact form.
func (c *Client) SubmitContact(ctx context.Context, req ContactRequest) error {
	return c.do(ctx, call{method: http.MethodPost, route: "/contact", path: "/contact", body: req}, nil)
}

// AdminStats loads dashboard totals.
func (c *Client) AdminStats(ctx context.Context, token string) (AdminStats, error) {
	var out AdminStats
	err := c.do(ctx, call{method: http.MethodGet, route: "/admin/stats", path: "/admin/stats", token: token}, &out)
	return out, err
}

// AdminUsers lists members matching filter.
func (c *Client) AdminUsers(ctx context.Context, token string, filter UserFilter) ([]User, error) {
	query := url.Values{}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query.Set("search", search)
	}
	if status := strings.TrimSpace(filter.Status); status != "" && status != "all" {
		query.Set("status", status)
	}
	var out struct {
		Users []User `json:"users"`
	}
	err := c.do(ctx, call{method: http.MethodGet, route: "/admin/users", path: "/admin/users", query: query, token: token}, &out)
	return out.Users, err
}

// SetUserStatus changes one member's status.
func (c *Client) SetUserStatus(ctx context.Context, token string, userID string, status string) error {
	return c.do(ctx, call{
		method: http.MethodPut,
		route:  "/admin/users/{id}/status",
		path:   "/admin/users/" + url.PathEscape(userID) + "/status",
		token:  token,
		body:   map[string]string{"status": status},
	}, nil)
}

// AdminContacts lists contact submissions, optionally by status.
func (c *Client) AdminContacts(ctx context.Context, token string, status string) ([]ContactMessage, error) {
	var query url.Values
	if status = strings.TrimSpace(status); status != "" && status != "all" {
		query = url.Values{"status": {status}}
	}
	var out struct {
		Contacts []ContactMessage `json:"contacts"`
	}
	err := c.do(ctx, call{method: http.MethodGet, route: "/admin/contacts", path: "/admin/contacts", query: query, token: token}, &out)
	return out.Contacts, err
}

// SetContactStatus changes one contact submission's status.
func (c *Client) SetContactStatus(ctx context.Context, token string, contactID string, status string) error {
	return c.do(ctx, call{
		method: http.MethodPut,
		route:  "/admin/contacts/{id}/status",
		path:   "/admin/contacts/" + url.PathEscape(contactID) + "/status",
		token:  token,
		body:   map[string]string{"status": status},
	}, nil)
}

// decodeUser accepts both {"user": {...}} envelopes and bare user documents.
func decodeUser(raw json.RawMessage) (User, error) {
	var envelope struct {
		User *User `json:"user"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.User != nil {
		return *envelope.User, nil
	}
	var user User
	if err := json.Unmarshal(raw, &user); err != nil {
		return User{}, fmt.Errorf("decode user: %v: %w", err, apperrors.Error{Kind: apperrors.KindUnavailable})
	}
	if user.ID == "" && user.Email == "" {
		return User{}, apperrors.E(apperrors.KindUnavailable, "")
	}
	return user, nil
}
