package client

import (
	"context"

	"github.com/menta2k/sketchpad/pkg/types"
)

// Classifier asks a vision model about a base64-encoded sketch
type Classifier interface {
	SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error)
	Classify(ctx context.Context, model, prompt, imgB64 string) (*types.Prediction, error)
}
