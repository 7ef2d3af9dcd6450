package genai

import (
	"context"
	"errors"
	"sync"

	"github.com/woodchen-ink/aice-ps/internal/editor"
)

// ErrNotConfigured is returned for generative calls before any API key
// has been supplied.
var ErrNotConfigured = errors.New("gemini: api key not configured")

// Provider holds the current Client and swaps it when credentials
// change at runtime. Calls in flight keep the client they started with.
type Provider struct {
	mu     sync.RWMutex
	opts   Options
	client *Client
}

// NewProvider builds a provider from the initial options. An empty API
// key is allowed; generative calls fail with ErrNotConfigured until
// Configure supplies one.
func NewProvider(opts Options) (*Provider, error) {
	p := &Provider{opts: opts}
	if opts.APIKey != "" {
		client, err := NewClient(opts)
		if err != nil {
			return nil, err
		}
		p.client = client
	}
	return p, nil
}

// Client returns the current client, or nil when unconfigured.
func (p *Provider) Client() *Client {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.client
}

// Configured reports whether generative calls can be made.
func (p *Provider) Configured() bool {
	return p.Client() != nil
}

// Configure installs new credentials. The underlying client is rebuilt
// only when the key or base URL actually differs from the current pair.
func (p *Provider) Configure(apiKey, baseURL string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if baseURL == "" {
		baseURL = p.opts.BaseURL
	}
	if p.client != nil && p.opts.APIKey == apiKey && p.opts.BaseURL == baseURL {
		return nil
	}
	opts := p.opts
	opts.APIKey = apiKey
	opts.BaseURL = baseURL
	client, err := NewClient(opts)
	if err != nil {
		return err
	}
	p.opts = opts
	p.client = client
	return nil
}

// EditImage delegates to the current client.
func (p *Provider) EditImage(ctx context.Context, source editor.Artifact, instruction string) (editor.Artifact, error) {
	client := p.Client()
	if client == nil {
		return editor.Artifact{}, ErrNotConfigured
	}
	return client.EditImage(ctx, source, instruction)
}

// GenerateImage delegates to the current client.
func (p *Provider) GenerateImage(ctx context.Context, prompt string) (editor.Artifact, error) {
	client := p.Client()
	if client == nil {
		return editor.Artifact{}, ErrNotConfigured
	}
	return client.GenerateImage(ctx, prompt)
}

var _ editor.Generator = (*Provider)(nil)
