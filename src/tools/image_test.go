package tools

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/datalens-ai/datalens/src/chart"
	"github.com/datalens-ai/datalens/src/imagegen"
)

type fakeGenerator struct {
	data []byte
	mime string
	err  error

	gotPrompt string
	gotRef    *imagegen.Reference
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, ref *imagegen.Reference) ([]byte, string, error) {
	f.gotPrompt = prompt
	f.gotRef = ref
	return f.data, f.mime, f.err
}

func TestGenerateImage(t *testing.T) {
	gen := &fakeGenerator{data: []byte{1, 2, 3}, mime: "image/jpeg"}
	tool := &GenerateImageTool{Generator: gen}

	res := tool.Invoke(context.Background(), Request{
		Args:   map[string]any{"prompt": "a red fox"},
		Images: []ImageInput{{MIME: "image/png", Data: []byte{9}}},
	})
	payload, ok := res["chart"].(chart.Payload)
	if !ok {
		t.Fatalf("expected chart payload, got %v", res)
	}
	if payload.Kind != chart.KindGeneratedImage || payload.MIME != "image/jpeg" {
		t.Fatalf("payload wrong: %+v", payload)
	}
	if payload.ImageBase64 != base64.StdEncoding.EncodeToString([]byte{1, 2, 3}) {
		t.Fatalf("image bytes not encoded")
	}
	if gen.gotPrompt != "a red fox" {
		t.Fatalf("prompt not forwarded: %q", gen.gotPrompt)
	}
	if gen.gotRef == nil || gen.gotRef.MIME != "image/png" {
		t.Fatalf("attached image should become the reference: %+v", gen.gotRef)
	}
}

func TestGenerateImageRateLimited(t *testing.T) {
	tool := &GenerateImageTool{Generator: &fakeGenerator{err: &imagegen.RateLimitError{Message: "429"}}}
	res := tool.Invoke(context.Background(), Request{Args: map[string]any{"prompt": "x"}})
	msg, _ := res["error"].(string)
	if !strings.Contains(msg, "wait a moment") {
		t.Fatalf("expected rate-limit remediation hint, got %q", msg)
	}
}

func TestGenerateImageOutOfCredits(t *testing.T) {
	tool := &GenerateImageTool{Generator: &fakeGenerator{err: &imagegen.PaymentError{Message: "402"}}}
	res := tool.Invoke(context.Background(), Request{Args: map[string]any{"prompt": "x"}})
	msg, _ := res["error"].(string)
	if !strings.Contains(msg, "credits") {
		t.Fatalf("expected out-of-credits message, got %q", msg)
	}
}

func TestGenerateImageGenericFailure(t *testing.T) {
	tool := &GenerateImageTool{Generator: &fakeGenerator{err: errors.New("boom")}}
	res := tool.Invoke(context.Background(), Request{Args: map[string]any{"prompt": "x"}})
	msg, _ := res["error"].(string)
	if !strings.Contains(msg, "boom") {
		t.Fatalf("generic errors should surface their message, got %q", msg)
	}
}

func TestGenerateImageMissingPrompt(t *testing.T) {
	tool := &GenerateImageTool{Generator: &fakeGenerator{}}
	res := tool.Invoke(context.Background(), Request{Args: map[string]any{}})
	if _, ok := res["error"]; !ok {
		t.Fatalf("missing prompt should be an error map, got %v", res)
	}
}
