package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image"
	"log"
	"os"

	"github.com/menta2k/sketchpad"
	"github.com/menta2k/sketchpad/internal/config"
	"github.com/menta2k/sketchpad/internal/utils"
	"github.com/menta2k/sketchpad/pkg/augment"
	"github.com/menta2k/sketchpad/pkg/client"
	"github.com/menta2k/sketchpad/pkg/dispatch"
	"github.com/menta2k/sketchpad/pkg/geometry"
	"github.com/menta2k/sketchpad/pkg/imageio"
	"github.com/menta2k/sketchpad/pkg/llamacpp"
	"github.com/menta2k/sketchpad/pkg/ollama"
	"github.com/menta2k/sketchpad/pkg/prediction"
	"github.com/menta2k/sketchpad/pkg/samples"
	"github.com/menta2k/sketchpad/pkg/types"
)

// strokesFile is a recorded drawing: canvas bounds and the pointer samples
// of every stroke in drawing order
type strokesFile struct {
	Width   int                `json:"width"`
	Height  int                `json:"height"`
	Strokes [][]geometry.Point `json:"strokes"`
}

// loadSketch replays a strokes file onto a fresh sketchpad
func loadSketch(path string, cfg *config.Config) (*sketchpad.Sketchpad, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read strokes: %w", err)
	}

	sf := strokesFile{Width: cfg.Canvas.Width, Height: cfg.Canvas.Height}
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("failed to parse strokes %s: %w", path, err)
	}

	pad := sketchpad.New(sf.Width, sf.Height)
	for i, points := range sf.Strokes {
		if err := pad.Draw(points...); err != nil {
			return nil, fmt.Errorf("stroke %d: %w", i, err)
		}
	}
	return pad, nil
}

// loadInput returns a strokes file rendered at its native bounds, or any
// other input decoded as an image
func loadInput(path string, cfg *config.Config) (image.Image, error) {
	if utils.GetFileExtension(path) != "json" {
		return imageio.Load(path)
	}
	pad, err := loadSketch(path, cfg)
	if err != nil {
		return nil, err
	}
	b := pad.Canvas().Bounds()
	return pad.Export(b.Dx(), b.Dy()), nil
}

// exportFlags registers the export overrides shared by several commands
func exportFlags(fs *flag.FlagSet, cfg *config.Config) *types.ExportOptions {
	opts := cfg.ExportOptions()
	fs.StringVar(&opts.Format, "format", opts.Format, "output format: png|jpeg|gif|webp|bmp|tiff")
	fs.IntVar(&opts.Width, "width", opts.Width, "output width (px)")
	fs.IntVar(&opts.Height, "height", opts.Height, "output height (px)")
	fs.IntVar(&opts.Quality, "quality", opts.Quality, "JPEG/WebP quality (1-100)")
	fs.BoolVar(&opts.Lossless, "lossless", opts.Lossless, "WebP lossless mode")
	return &opts
}

func runDraw(_ context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("draw", flag.ExitOnError)
	in := fs.String("in", "", "strokes file (json)")
	out := fs.String("out", "", "output path (default: output dir, named after the input)")
	raw := fs.String("raw", "", "also write the classifier input buffer (BGRA, 224x224) to this path")
	opts := exportFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("-in is required")
	}

	pad, err := loadSketch(*in, cfg)
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		if err := utils.EnsureDir(cfg.Export.OutputDir); err != nil {
			return err
		}
		path = utils.GenerateOutputFilename(*in, cfg.Export.OutputDir, cfg.Export.Prefix, "", opts.Format)
	}
	if err := pad.Save(path, *opts); err != nil {
		return err
	}
	logWritten(path)

	if *raw != "" {
		buf, err := pad.ModelInput()
		if err != nil {
			return err
		}
		if err := os.WriteFile(*raw, buf.Pix, 0o644); err != nil {
			return err
		}
		log.Printf("wrote %s (%dx%d %s, stride %d)", *raw, buf.Width, buf.Height, buf.Format, buf.Stride)
	}
	return nil
}

func runAugment(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("augment", flag.ExitOnError)
	in := fs.String("in", "", "strokes file, image path or URL, or a directory of images")
	planFile := fs.String("plan", cfg.Augment.PlanFile, "filter plan (yaml)")
	outDir := fs.String("out", cfg.Export.OutputDir, "output directory")
	blur := fs.String("blur", cfg.Augment.Blur, "blur backend: imaging|bild")
	opts := exportFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *planFile == "" {
		return errors.New("-in and -plan are required")
	}

	plan, err := augment.LoadPlan(*planFile)
	if err != nil {
		return err
	}

	size := cfg.Augment.ImageSize
	engineOpts := []augment.Option{augment.WithImageSize(size, size)}
	switch *blur {
	case "imaging":
		engineOpts = append(engineOpts, augment.WithBlurrer(augment.ImagingBlur{}))
	case "bild":
		engineOpts = append(engineOpts, augment.WithBlurrer(augment.BildBlur{}))
	default:
		return fmt.Errorf("unknown blur backend %q", *blur)
	}
	// a size in the plan wins over the configuration
	engineOpts = append(engineOpts, plan.Options()...)

	if err := utils.EnsureDir(*outDir); err != nil {
		return err
	}

	inputs := []string{*in}
	if utils.DirExists(*in) {
		if inputs, err = utils.ListImageFiles(*in); err != nil {
			return err
		}
	}

	for _, input := range inputs {
		img, err := loadInput(input, cfg)
		if err != nil {
			return err
		}
		if err := augmentOne(ctx, input, img, plan.Filters, engineOpts, *outDir, *opts, cfg.Export.Prefix); err != nil {
			return fmt.Errorf("%s: %w", input, err)
		}
	}
	return nil
}

// augmentOne runs a session over img and writes every step as it arrives
func augmentOne(ctx context.Context, input string, img image.Image, filters []augment.Filter, engineOpts []augment.Option, outDir string, opts types.ExportOptions, prefix string) error {
	loop := dispatch.NewLoop()
	defer loop.Close()

	var runErr error
	h := augment.HandlerFuncs{
		Step: func(_ *augment.Session, step augment.Step) {
			if runErr != nil {
				return
			}
			path := utils.GenerateOutputFilename(input, outDir, prefix, utils.StepSuffix(step.Index, step.Filter.String()), opts.Format)
			if err := imageio.SaveImage(step.Image, path, opts.Format, opts.Quality, opts.Lossless); err != nil {
				runErr = err
				return
			}
			logWritten(path)
		},
		Finished: func(_ *augment.Session, err error) {
			if runErr == nil {
				runErr = err
			}
			loop.Close()
		},
	}

	if err := augment.NewSession(filters, engineOpts...).Start(img, h, loop); err != nil {
		return err
	}
	if err := loop.Run(ctx); !errors.Is(err, dispatch.ErrClosed) {
		return err
	}
	return runErr
}

func runClassify(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("classify", flag.ExitOnError)
	in := fs.String("in", "", "strokes file or image path/URL")
	backend := fs.String("backend", cfg.Classifier.Backend, "backend to use: ollama or llamacpp")
	url := fs.String("url", cfg.Classifier.URL, "server URL (defaults: ollama=http://localhost:11435/api/chat, llamacpp=http://localhost:8080)")
	model := fs.String("model", cfg.Classifier.Model, "model name")
	test := fs.Bool("test", false, "only check that the model can see the image")
	out := fs.String("out", "", "also write the prediction as JSON to this path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return errors.New("-in is required")
	}

	c, err := newClassifier(*backend, *url)
	if err != nil {
		return err
	}
	predictor := prediction.NewPredictor(c, *model,
		prediction.WithLabels(cfg.Labels()...),
		prediction.WithInputSize(cfg.Classifier.InputSize),
		prediction.WithSendSize(cfg.Classifier.SendSize),
	)

	img, err := loadInput(*in, cfg)
	if err != nil {
		return err
	}

	if *test {
		text, err := predictor.TestVision(ctx, img)
		if err != nil {
			return err
		}
		log.Printf("model sees: %s", text)
		return nil
	}

	result, err := predictor.PredictImage(ctx, img)
	if err != nil {
		return err
	}
	label := result.Label
	if class, ok := types.ParseClass(label); ok {
		label = fmt.Sprintf("%s %s", class.Emoji(), label)
	}
	log.Printf("prediction=%s conf=%.2f", label, result.Confidence())
	if result.Description != "" {
		log.Printf("description: %s", result.Description)
	}

	if *out != "" {
		js, _ := json.MarshalIndent(result, "", "  ")
		if err := os.WriteFile(*out, js, 0o644); err != nil {
			return err
		}
		logWritten(*out)
	}
	return nil
}

func newClassifier(backend, url string) (client.Classifier, error) {
	switch backend {
	case "ollama":
		if url == "" {
			url = "http://localhost:11435/api/chat"
		}
		c, err := ollama.NewClient(url)
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama client: %w", err)
		}
		return c, nil
	case "llamacpp":
		if url == "" {
			url = "http://localhost:8080"
		}
		c, err := llamacpp.NewClient(url)
		if err != nil {
			return nil, fmt.Errorf("failed to create llama.cpp client: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown backend: %s (use 'ollama' or 'llamacpp')", backend)
	}
}

func runCollect(_ context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("collect", flag.ExitOnError)
	dir := fs.String("dir", cfg.Samples.Dir, "data set directory")
	in := fs.String("in", "", "strokes file to add; without it the counts and the next label are shown")
	label := fs.String("label", "", "label for the drawing (default: the label the session asks for)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := samples.OpenStore(*dir, cfg.Labels())
	if err != nil {
		return err
	}
	session := samples.NewSession(store)

	if *in == "" {
		counts := session.Contributions()
		for _, l := range store.Labels() {
			log.Printf("%s %-10s %d", l.Emoji(), l, counts[l])
		}
		req, err := session.Start()
		if err != nil {
			return err
		}
		log.Printf("next: draw a %s", req.Label)
		return nil
	}

	pad, err := loadSketch(*in, cfg)
	if err != nil {
		return err
	}
	jpeg, err := samples.ExportSample(pad.Canvas())
	if err != nil {
		return err
	}

	if *label != "" {
		class, ok := types.ParseClass(*label)
		if !ok {
			return fmt.Errorf("unknown label %q", *label)
		}
		path, err := store.Save(class, jpeg)
		if err != nil {
			return err
		}
		logWritten(path)
		return nil
	}

	req, err := session.Start()
	if err != nil {
		return err
	}
	if _, err := session.CompleteRequest(req.ID, jpeg); err != nil {
		return err
	}
	log.Printf("saved as %s %s", req.Label.Emoji(), req.Label)
	if next, ok := session.Active(); ok {
		log.Printf("next: draw a %s", next.Label)
	}
	return nil
}

func logWritten(path string) {
	if info, err := os.Stat(path); err == nil {
		log.Printf("wrote %s (%s)", path, utils.FormatFileSize(info.Size()))
		return
	}
	log.Printf("wrote %s", path)
}
