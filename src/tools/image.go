package tools

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/datalens-ai/datalens/src/chart"
	"github.com/datalens-ai/datalens/src/imagegen"
)

// Generator is the generative image service boundary; *imagegen.Client
// satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string, ref *imagegen.Reference) ([]byte, string, error)
}

// GenerateImageTool forwards a prompt, and any attached reference image, to
// the generative image service and wraps the result as a generated-image
// chart payload. Transport and format failures come back as error maps with
// a remediation hint; they never abort the turn.
type GenerateImageTool struct {
	Generator Generator
}

func (t *GenerateImageTool) Spec() Spec {
	return Spec{
		Name:        "generate_image",
		Description: "Generates an image from a text prompt. When the user attached a photo, it is used as the reference image to transform.",
		InputSchema: objectSchema(map[string]any{
			"prompt": stringProp("Full description of the image to generate."),
		}, "prompt"),
	}
}

func (t *GenerateImageTool) Invoke(ctx context.Context, req Request) map[string]any {
	if t.Generator == nil {
		return map[string]any{"error": "image generation is not configured"}
	}
	prompt := strings.TrimSpace(fmt.Sprint(req.Args["prompt"]))
	if prompt == "" || req.Args["prompt"] == nil {
		return map[string]any{"error": "missing \"prompt\" argument"}
	}

	var ref *imagegen.Reference
	if len(req.Images) > 0 {
		ref = &imagegen.Reference{MIME: req.Images[0].MIME, Data: req.Images[0].Data}
	}

	data, mime, err := t.Generator.Generate(ctx, prompt, ref)
	if err != nil {
		return map[string]any{"error": friendlyImageError(err)}
	}
	if mime == "" {
		mime = "image/png"
	}
	return map[string]any{
		"chart": chart.Payload{
			Kind:        chart.KindGeneratedImage,
			MIME:        mime,
			ImageBase64: base64.StdEncoding.EncodeToString(data),
		},
	}
}

func friendlyImageError(err error) string {
	var rle *imagegen.RateLimitError
	if errors.As(err, &rle) {
		return "image generation is rate limited right now; please wait a moment and try again"
	}
	var pe *imagegen.PaymentError
	if errors.As(err, &pe) {
		return "image generation failed: the account is out of credits; add credits and try again"
	}
	return "image generation failed: " + err.Error()
}
