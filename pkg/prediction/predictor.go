// Package prediction classifies sketches with a vision model. The canvas is
// exported at the classifier's input size and pixel format, then handed to
// a client.Classifier backend.
package prediction

import (
	"context"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/menta2k/sketchpad/internal/logger"
	"github.com/menta2k/sketchpad/pkg/canvas"
	"github.com/menta2k/sketchpad/pkg/client"
	"github.com/menta2k/sketchpad/pkg/dispatch"
	"github.com/menta2k/sketchpad/pkg/export"
	"github.com/menta2k/sketchpad/pkg/imageio"
	"github.com/menta2k/sketchpad/pkg/types"
)

// SimpleTestPrompt checks that the model can see images at all
const SimpleTestPrompt = `What do you see in this image? Describe it briefly.`

// DefaultPrompt asks for a label-constrained JSON answer. %s is replaced
// with the quoted label list.
const DefaultPrompt = `You are a doodle classifier. The image is a black hand-drawn sketch on a white background.

Classify it as exactly one of these labels: %s.

Return JSON only:
{
  "label": "one of the labels",
  "confidences": {"label": 0.0},
  "description": "short neutral sentence (≤ 12 words)"
}

HARD RULES
- "confidences" gives a probability in [0,1] for every label and they sum to 1.
- "label" is the label with the highest confidence.
- If the sketch matches none of the labels, use "label": "none" and all confidences 0.
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// Option configures a Predictor
type Option func(*Predictor)

// WithLabels restricts the labels the model may answer with
func WithLabels(labels ...types.Class) Option {
	return func(p *Predictor) {
		if len(labels) > 0 {
			p.labels = labels
		}
	}
}

// WithInputSize sets the square size sketches are exported at
func WithInputSize(size int) Option {
	return func(p *Predictor) {
		if size > 0 {
			p.inputSize = size
		}
	}
}

// WithSendSize caps the long side of the image sent to the backend
func WithSendSize(size int) Option {
	return func(p *Predictor) {
		p.sendSize = size
	}
}

// Predictor classifies sketches through a vision backend
type Predictor struct {
	client    client.Classifier
	model     string
	labels    []types.Class
	inputSize int
	sendSize  int
}

// NewPredictor creates a predictor for model on the given backend
func NewPredictor(c client.Classifier, model string, opts ...Option) *Predictor {
	p := &Predictor{
		client:    c,
		model:     model,
		labels:    types.AllClasses(),
		inputSize: export.ModelInputSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Prompt returns the classification prompt for the configured labels
func (p *Predictor) Prompt() string {
	quoted := make([]string, len(p.labels))
	for i, l := range p.labels {
		quoted[i] = fmt.Sprintf("%q", string(l))
	}
	return fmt.Sprintf(DefaultPrompt, strings.Join(quoted, ", "))
}

// ModelInput renders img into the classifier's input buffer
func (p *Predictor) ModelInput(img image.Image) (*export.PixelBuffer, error) {
	return export.NewPixelBufferExporter(p.inputSize, p.inputSize).Export(img)
}

// Predict classifies the canvas's current sketch
func (p *Predictor) Predict(ctx context.Context, c *canvas.Canvas) (*types.Prediction, error) {
	return p.PredictImage(ctx, c.Export(p.inputSize, p.inputSize))
}

// PredictImage classifies an already rendered sketch
func (p *Predictor) PredictImage(ctx context.Context, img image.Image) (*types.Prediction, error) {
	buf, err := p.ModelInput(img)
	if err != nil {
		return nil, err
	}
	imgB64, err := imageio.EncodeBase64(buf.Image(), "png", p.sendSize, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to encode model input: %w", err)
	}

	result, err := p.client.Classify(ctx, p.model, p.Prompt(), imgB64)
	if err != nil {
		return nil, err
	}
	return p.normalize(result), nil
}

// RequestPrediction renders the canvas now, classifies it on a background
// goroutine and posts the outcome to q
func (p *Predictor) RequestPrediction(ctx context.Context, c *canvas.Canvas, q dispatch.Queue, done func(*types.Prediction, error)) {
	img := c.Export(p.inputSize, p.inputSize)
	go func() {
		result, err := p.PredictImage(ctx, img)
		if err != nil {
			logger.L().Warn("prediction failed", "error", err)
		}
		q.Post(func() { done(result, err) })
	}()
}

// TestVision checks that the backend can see an image
func (p *Predictor) TestVision(ctx context.Context, img image.Image) (string, error) {
	imgB64, err := imageio.EncodeBase64(img, "png", p.sendSize, 0)
	if err != nil {
		return "", err
	}
	return p.client.SimpleQuery(ctx, p.model, SimpleTestPrompt, imgB64)
}

// normalize keeps known labels only, clamps confidences to [0,1], rescales
// them to sum to 1 and makes the label the most confident class
func (p *Predictor) normalize(result *types.Prediction) *types.Prediction {
	out := &types.Prediction{
		Label:       types.NoPrediction,
		Confidences: make(map[string]float64, len(p.labels)),
		Description: strings.TrimSpace(result.Description),
	}

	raw := make(map[types.Class]float64, len(result.Confidences))
	for k, v := range result.Confidences {
		if class, ok := types.ParseClass(k); ok && !math.IsNaN(v) {
			raw[class] = clamp(v, 0, 1)
		}
	}

	sum := 0.0
	for _, l := range p.labels {
		sum += raw[l]
	}

	if sum == 0 {
		// the model named a label without scores
		if class, ok := types.ParseClass(result.Label); ok && p.knows(class) {
			raw[class], sum = 1, 1
		}
	}

	best, bestScore := types.Class(""), 0.0
	for _, l := range p.labels {
		score := 0.0
		if sum > 0 {
			score = raw[l] / sum
		}
		out.Confidences[string(l)] = score
		if score > bestScore {
			best, bestScore = l, score
		}
	}
	if best != "" {
		out.Label = string(best)
	}
	return out
}

func (p *Predictor) knows(class types.Class) bool {
	for _, l := range p.labels {
		if l == class {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
