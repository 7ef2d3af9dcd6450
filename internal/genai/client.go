// Package genai talks to the Gemini generateContent API for image editing
// and generation. Requests carry the source image as inline base64 plus a
// text instruction; responses carry inline base64 image bytes, or text when
// the model declined to produce an image.
package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/woodchen-ink/aice-ps/internal/editor"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.5-flash-image-preview"
)

// Options controls how the Gemini client is configured. The client is an
// explicit value built from configuration and passed to call sites; there is
// no shared instance keyed by credential. Callers that let the user change
// the key or endpoint at runtime construct a new client when the pair
// actually differs.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *zerolog.Logger
	// Fallback decides whether a failed edit is retried with an alternate
	// instruction. Nil selects DefaultFallbackPolicy.
	Fallback *FallbackPolicy
}

// Client is a lightweight facade over the Gemini image API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *zerolog.Logger
	fallback   *FallbackPolicy
}

// TextResponseError reports that the model answered with prose instead of an
// image, typically a refusal.
type TextResponseError struct {
	Text string
}

func (e *TextResponseError) Error() string {
	text := strings.TrimSpace(e.Text)
	if text == "" {
		return "gemini: model returned no image"
	}
	return "gemini: model returned text instead of an image: " + text
}

// IsTextResponse reports whether err is (or wraps) a TextResponseError.
func IsTextResponse(err error) bool {
	var target *TextResponseError
	return errors.As(err, &target)
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewClient constructs a Gemini client with sane defaults. Callers may
// provide a nil HTTP client; one with a generation-friendly timeout is
// created.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}

	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}

	fallback := opts.Fallback
	if fallback == nil {
		fallback = DefaultFallbackPolicy()
	}

	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
		logger:     logger,
		fallback:   fallback,
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// EditImage sends the source image and instruction to the model and returns
// the edited image. When the first attempt fails and the fallback policy
// matches, the call is retried once with the policy's rewritten instruction.
func (c *Client) EditImage(ctx context.Context, source editor.Artifact, instruction string) (editor.Artifact, error) {
	if c.apiKey == "" {
		return editor.Artifact{}, errors.New("gemini: API key is missing")
	}
	if source.IsZero() {
		return editor.Artifact{}, errors.New("gemini: source image required")
	}
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return editor.Artifact{}, errors.New("gemini: instruction required")
	}

	result, err := c.editOnce(ctx, source, instruction)
	if err == nil {
		return result, nil
	}
	if c.fallback.ShouldRetry == nil || !c.fallback.ShouldRetry(err) {
		return editor.Artifact{}, err
	}
	rewritten, ok := c.fallback.Rewrite(instruction)
	if !ok {
		return editor.Artifact{}, err
	}
	c.logger.Warn().
		Err(err).
		Str("model", c.model).
		Msg("genai: edit failed, retrying with fallback instruction")
	result, retryErr := c.editOnce(ctx, source, rewritten)
	if retryErr != nil {
		// Surface the original failure; the fallback was best-effort.
		return editor.Artifact{}, err
	}
	return result, nil
}

func (c *Client) editOnce(ctx context.Context, source editor.Artifact, instruction string) (editor.Artifact, error) {
	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{
			Role: "user",
			Parts: []geminiPart{
				{InlineData: &geminiInlineData{
					MimeType: source.MimeType,
					Data:     base64.StdEncoding.EncodeToString(source.Data),
				}},
				{Text: instruction},
			},
		}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
		},
	}
	var response geminiGenerateContentResponse
	if err := c.invoke(ctx, payload, &response); err != nil {
		return editor.Artifact{}, err
	}
	return extractImage(response)
}

// GenerateImage asks the model for a new image from a text prompt alone.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (editor.Artifact, error) {
	if c.apiKey == "" {
		return editor.Artifact{}, errors.New("gemini: API key is missing")
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return editor.Artifact{}, errors.New("gemini: prompt required")
	}

	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
		},
	}
	var response geminiGenerateContentResponse
	if err := c.invoke(ctx, payload, &response); err != nil {
		return editor.Artifact{}, err
	}
	return extractImage(response)
}

func (c *Client) invoke(ctx context.Context, payload any, out any) error {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	q := req.URL.Query()
	q.Set("key", c.apiKey)
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr geminiErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		data, _ := io.ReadAll(resp.Body)
		if len(data) > 0 {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
		}
		return fmt.Errorf("gemini status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	c.logger.Debug().
		Str("model", c.model).
		Dur("elapsed", time.Since(started)).
		Msg("genai: generateContent ok")
	return nil
}

// extractImage pulls the first inline image out of the response. When the
// model only produced text, the accumulated text is returned as a
// TextResponseError so callers (and the fallback policy) can tell a refusal
// apart from transport failures.
func extractImage(response geminiGenerateContentResponse) (editor.Artifact, error) {
	var texts []string
	for _, candidate := range response.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
				if err != nil {
					return editor.Artifact{}, fmt.Errorf("decode inline data: %w", err)
				}
				mime := part.InlineData.MimeType
				if mime == "" {
					mime = "image/png"
				}
				return editor.Artifact{Data: data, MimeType: mime}, nil
			}
			if text := strings.TrimSpace(part.Text); text != "" {
				texts = append(texts, text)
			}
		}
	}
	return editor.Artifact{}, &TextResponseError{Text: strings.Join(texts, "\n")}
}

var _ editor.Generator = (*Client)(nil)
