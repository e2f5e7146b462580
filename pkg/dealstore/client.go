package dealstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/fooddealsberlin/backend/pkg/errors"
	"github.com/fooddealsberlin/backend/pkg/types"
)

const responseBodyReadLimit int64 = 1 << 20

var (
	errBaseURLRequired = errors.New("dealstore base url is required")

	// ErrNoSession is returned before any HTTP happens when an authenticated
	// operation is attempted without a session token.
	ErrNoSession = errors.New("no session token set")
)

// Client talks to the FoodDeals API over REST and, via Watch, its websocket
// stream. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string

	mu    sync.RWMutex
	token string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithToken seeds the session token at construction time.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// NewClient builds a client for the API at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// SetSession installs the bearer token used for authenticated operations.
func (c *Client) SetSession(token string) {
	c.mu.Lock()
	c.token = strings.TrimSpace(token)
	c.mu.Unlock()
}

// ClearSession drops the session token; authenticated operations fail with
// ErrNoSession afterwards.
func (c *Client) ClearSession() {
	c.SetSession("")
}

func (c *Client) session() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// ListDeals fetches one feed page.
func (c *Client) ListDeals(ctx context.Context, query FeedQuery) (*FeedPage, error) {
	values := url.Values{}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Cursor != "" {
		values.Set("cursor", query.Cursor)
	}
	if query.Sort != "" {
		values.Set("sort", query.Sort)
	}
	if query.MaxPrice != nil {
		values.Set("max_price", query.MaxPrice.String())
	}
	if len(query.Cuisines) > 0 {
		values.Set("cuisines", strings.Join(query.Cuisines, ","))
	}
	if len(query.DealTypes) > 0 {
		values.Set("deal_types", strings.Join(query.DealTypes, ","))
	}
	if len(query.DietaryTags) > 0 {
		values.Set("dietary_tags", strings.Join(query.DietaryTags, ","))
	}
	if query.Latitude != nil && query.Longitude != nil {
		values.Set("lat", strconv.FormatFloat(*query.Latitude, 'f', -1, 64))
		values.Set("lng", strconv.FormatFloat(*query.Longitude, 'f', -1, 64))
		if query.RadiusMeters != nil {
			values.Set("radius", strconv.FormatFloat(*query.RadiusMeters, 'f', -1, 64))
		}
	}

	var page FeedPage
	if err := c.do(ctx, http.MethodGet, "/api/v1/deals", values, nil, false, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetDeal fetches one deal with its author summary.
func (c *Client) GetDeal(ctx context.Context, id uuid.UUID) (*DealDetail, error) {
	var detail DealDetail
	if err := c.do(ctx, http.MethodGet, "/api/v1/deals/"+id.String(), nil, nil, false, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// CreateDeal posts a new deal. Requires a session.
func (c *Client) CreateDeal(ctx context.Context, req CreateDealRequest) (*Deal, error) {
	var deal Deal
	if err := c.do(ctx, http.MethodPost, "/api/v1/deals", nil, req, true, &deal); err != nil {
		return nil, err
	}
	return &deal, nil
}

// UpdateDeal edits an owned deal. Requires a session.
func (c *Client) UpdateDeal(ctx context.Context, id uuid.UUID, req UpdateDealRequest) (*Deal, error) {
	var deal Deal
	if err := c.do(ctx, http.MethodPatch, "/api/v1/deals/"+id.String(), nil, req, true, &deal); err != nil {
		return nil, err
	}
	return &deal, nil
}

// DeleteDeal soft-deletes an owned deal. Requires a session.
func (c *Client) DeleteDeal(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/deals/"+id.String(), nil, nil, true, nil)
}

// CastVote sends one vote tap; the server decides insert, flip or retract and
// answers with fresh aggregates. Requires a session.
func (c *Client) CastVote(ctx context.Context, dealID uuid.UUID, direction string) (*VoteResult, error) {
	payload := map[string]string{"direction": direction}
	var result VoteResult
	if err := c.do(ctx, http.MethodPut, "/api/v1/deals/"+dealID.String()+"/vote", nil, payload, true, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListMyVotes fetches the session user's vote rows, optionally narrowed to the
// given deals. Requires a session.
func (c *Client) ListMyVotes(ctx context.Context, dealIDs []uuid.UUID) ([]Vote, error) {
	values := url.Values{}
	if len(dealIDs) > 0 {
		ids := make([]string, 0, len(dealIDs))
		for _, id := range dealIDs {
			ids = append(ids, id.String())
		}
		values.Set("deal_ids", strings.Join(ids, ","))
	}

	var votes []Vote
	if err := c.do(ctx, http.MethodGet, "/api/v1/votes", values, nil, true, &votes); err != nil {
		return nil, err
	}
	return votes, nil
}

// ListComments fetches one page of a deal's thread, oldest first.
func (c *Client) ListComments(ctx context.Context, dealID uuid.UUID, limit int, cursor string) (*CommentsPage, error) {
	values := url.Values{}
	if limit > 0 {
		values.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		values.Set("cursor", cursor)
	}

	var page CommentsPage
	if err := c.do(ctx, http.MethodGet, "/api/v1/deals/"+dealID.String()+"/comments", values, nil, false, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateComment posts a comment on a deal. Requires a session.
func (c *Client) CreateComment(ctx context.Context, dealID uuid.UUID, content string) (*Comment, error) {
	payload := map[string]string{"content": content}
	var comment Comment
	if err := c.do(ctx, http.MethodPost, "/api/v1/deals/"+dealID.String()+"/comments", nil, payload, true, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteComment removes the session user's own comment. Requires a session.
func (c *Client) DeleteComment(ctx context.Context, commentID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/comments/"+commentID.String(), nil, nil, true, nil)
}

// Me fetches the session user's profile. Requires a session.
func (c *Client) Me(ctx context.Context) (*Profile, error) {
	var profile Profile
	if err := c.do(ctx, http.MethodGet, "/api/v1/profiles/me", nil, nil, true, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateMe edits the session user's profile. Requires a session.
func (c *Client) UpdateMe(ctx context.Context, req UpdateProfileRequest) (*Profile, error) {
	var profile Profile
	if err := c.do(ctx, http.MethodPatch, "/api/v1/profiles/me", nil, req, true, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetProfile fetches another user's public profile.
func (c *Client) GetProfile(ctx context.Context, id uuid.UUID) (*PublicProfile, error) {
	var profile PublicProfile
	if err := c.do(ctx, http.MethodGet, "/api/v1/profiles/"+id.String(), nil, nil, false, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// MyBadges fetches the session user's earned badges. Requires a session.
func (c *Client) MyBadges(ctx context.Context) ([]UserBadge, error) {
	var badges []UserBadge
	if err := c.do(ctx, http.MethodGet, "/api/v1/profiles/me/badges", nil, nil, true, &badges); err != nil {
		return nil, err
	}
	return badges, nil
}

// Geocode resolves a free-text address through the API.
func (c *Client) Geocode(ctx context.Context, address string) (*GeocodeResult, error) {
	values := url.Values{}
	values.Set("address", address)

	var result GeocodeResult
	if err := c.do(ctx, http.MethodGet, "/api/v1/geocode", values, nil, false, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UploadMedia streams an image to the media endpoint. Requires a session.
func (c *Client) UploadMedia(ctx context.Context, fileName, mimeType string, body io.Reader) (*Media, error) {
	if c.session() == "" {
		return nil, ErrNoSession
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreatePart(map[string][]string{
		"Content-Disposition": {fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName)},
		"Content-Type":        {mimeType},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build multipart body")
	}
	if _, err := io.Copy(part, body); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read upload body")
	}
	if err := writer.Close(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finish multipart body")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/media", &buf)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build upload request")
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+c.session())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute upload request")
	}
	defer func() { _ = resp.Body.Close() }()

	var media Media
	if err := decodeResponse(resp, &media); err != nil {
		return nil, err
	}
	return &media, nil
}

// do runs one JSON round trip against the API.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any, authed bool, out any) error {
	token := ""
	if authed {
		token = c.session()
		if token == "" {
			return ErrNoSession
		}
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal request body")
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute request")
	}
	defer func() { _ = resp.Body.Close() }()

	return decodeResponse(resp, out)
}

// decodeResponse unwraps the API envelope, mapping error envelopes back onto
// the shared error taxonomy.
func decodeResponse(resp *http.Response, out any) error {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read response body")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var envelope types.ErrorEnvelope
		if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Error.Code == "" {
			return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("unexpected status %d", resp.StatusCode))
		}
		return pkgerrors.New(pkgerrors.Code(envelope.Error.Code), envelope.Error.Message)
	}

	if out == nil {
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response envelope")
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response data")
	}
	return nil
}
