package mojang

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lu-zhengda/aliases/internal/domain"
	"github.com/lu-zhengda/aliases/internal/provider"
)

// DefaultBaseURL is the public identity API host.
const DefaultBaseURL = "https://api.mojang.com"

// maxBodySize caps how much of a response is read. Histories are small.
const maxBodySize = 1 << 20

// Provider implements provider.IdentityProvider against the Mojang REST API.
type Provider struct {
	client      *http.Client
	profilesURL string
	historyURL  string
	timeout     time.Duration
}

// Option configures a Provider.
type Option func(*Provider)

// WithProfilesURL overrides the host serving username lookups.
func WithProfilesURL(base string) Option {
	return func(p *Provider) { p.profilesURL = strings.TrimRight(base, "/") }
}

// WithHistoryURL overrides the host serving name histories.
func WithHistoryURL(base string) Option {
	return func(p *Provider) { p.historyURL = strings.TrimRight(base, "/") }
}

// WithTimeout bounds each request. Zero leaves the client's own behaviour.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) { p.timeout = d }
}

// NewHTTPClient returns the long-lived client shared by every lookup. Its
// transport is traced with OpenTelemetry.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// New creates a Provider that issues requests through client.
func New(client *http.Client, opts ...Option) *Provider {
	if client == nil {
		client = NewHTTPClient()
	}
	p := &Provider{
		client:      client,
		profilesURL: DefaultBaseURL,
		historyURL:  DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AccountID resolves username to its account identifier.
func (p *Provider) AccountID(ctx context.Context, username string) (domain.AccountID, error) {
	endpoint := p.profilesURL + "/users/profiles/minecraft/" + url.PathEscape(username)

	status, body, err := p.get(ctx, endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to request account id for %s: %w", username, err)
	}

	switch status {
	case http.StatusOK:
	case http.StatusNoContent:
		return "", provider.ErrUnknownUsername
	default:
		return "", &provider.StatusError{Stage: provider.StageIdentity, Code: status}
	}

	id, err := parseAccountID(bytes.NewReader(body))
	if err != nil {
		return "", &provider.MalformedError{Stage: provider.StageIdentity, Err: err}
	}
	return id, nil
}

// NameHistory returns the names held by id, oldest first.
func (p *Provider) NameHistory(ctx context.Context, id domain.AccountID) ([]domain.NameRecord, error) {
	endpoint := p.historyURL + "/user/profiles/" + url.PathEscape(id.String()) + "/names"

	status, body, err := p.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to request name history for %s: %w", id, err)
	}
	if status != http.StatusOK {
		return nil, &provider.StatusError{Stage: provider.StageHistory, Code: status}
	}

	records, err := parseNameHistory(bytes.NewReader(body))
	if err != nil {
		return nil, &provider.MalformedError{Stage: provider.StageHistory, Err: err}
	}
	return records, nil
}

// get performs a GET and reads the whole body before the request context
// (and its optional timeout) is released.
func (p *Provider) get(ctx context.Context, endpoint string) (int, []byte, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// Compile-time interface compliance check.
var _ provider.IdentityProvider = (*Provider)(nil)
