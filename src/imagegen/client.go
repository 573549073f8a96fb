// Package imagegen talks to the generative image service and wraps it in the
// retry discipline the rest of the subsystem relies on.
package imagegen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Reference is an optional anchor image for identity-preserving generation.
type Reference struct {
	MIME string
	Data []byte
}

// Client generates images through an image-capable Gemini model.
type Client struct {
	client *genai.Client
	model  string
	retry  RetryOptions
}

// New builds a Client. The model should be an image-output model id.
func New(ctx context.Context, apiKey, model string, retry RetryOptions) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("image service api key is required")
	}
	gc, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("imagegen init: %w", err)
	}
	return &Client{client: gc, model: model, retry: retry}, nil
}

// Generate runs one generation under the retry wrapper. When a reference
// image was supplied and the anchored generation fails for any reason, it
// falls back once to an anchor-less generation from the text prompt alone.
func (c *Client) Generate(ctx context.Context, prompt string, ref *Reference) ([]byte, string, error) {
	return generateWithFallback(ctx, c.retry, ref, func(ctx context.Context, ref *Reference) ([]byte, string, error) {
		return c.generateOnce(ctx, prompt, ref)
	})
}

func generateWithFallback(ctx context.Context, retry RetryOptions, ref *Reference, fn func(context.Context, *Reference) ([]byte, string, error)) ([]byte, string, error) {
	data, mime, err := WithRetry(ctx, retry, func(ctx context.Context) ([]byte, string, error) {
		return fn(ctx, ref)
	})
	if err != nil && ref != nil {
		return WithRetry(ctx, retry, func(ctx context.Context) ([]byte, string, error) {
			return fn(ctx, nil)
		})
	}
	return data, mime, err
}

func (c *Client) generateOnce(ctx context.Context, prompt string, ref *Reference) ([]byte, string, error) {
	model := c.client.GenerativeModel(c.model)

	parts := []genai.Part{genai.Text(prompt)}
	if ref != nil && len(ref.Data) > 0 {
		parts = append(parts, genai.Blob{MIMEType: ref.MIME, Data: ref.Data})
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, "", translateError(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, "", errors.New("image service returned an empty response; try rephrasing the prompt")
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if blob, ok := part.(genai.Blob); ok && len(blob.Data) > 0 {
			return blob.Data, blob.MIMEType, nil
		}
	}
	return nil, "", errors.New("image service response contained no image data; try rephrasing the prompt")
}

// translateError maps transport failures onto the subsystem's taxonomy so the
// retry wrapper and callers can tell transient throttling from fatal billing
// problems.
func translateError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.Code {
	case http.StatusTooManyRequests:
		return &RateLimitError{
			RetryAfter: retryAfterHeader(apiErr),
			Message:    apiErr.Message,
		}
	case http.StatusPaymentRequired:
		return &PaymentError{Message: apiErr.Message}
	default:
		return err
	}
}

func retryAfterHeader(apiErr *googleapi.Error) time.Duration {
	if apiErr.Header == nil {
		return 0
	}
	raw := apiErr.Header.Get("Retry-After")
	if raw == "" {
		return 0
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}
