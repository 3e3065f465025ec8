// Package client defines the vision backend abstraction shared by the
// Ollama and llama.cpp implementations.
package client

import (
	"context"

	"github.com/menta2k/microscope-measure/pkg/types"
)

// VisionClient is a vision model backend that can answer free-form questions
// about an image and locate its scale bar. Images are passed base64-encoded.
type VisionClient interface {
	SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error)
	LocateScaleBar(ctx context.Context, model, prompt, imgB64 string) (*types.ScaleBarResult, error)
}
