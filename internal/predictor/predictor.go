// Package predictor drives one "analyze this image" action: it previews the
// selected file, uploads it to the prediction service and renders the
// outcome into injected view sinks.
package predictor

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/Brownie44l1/mri-api/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// FileInput exposes the current selection. Element 0 is the chosen file.
type FileInput interface {
	Files() []SelectedFile
}

// ResultView receives status and outcome text.
type ResultView interface {
	SetText(text string)
	SetColor(color string)
}

// PreviewView displays the selected image.
type PreviewView interface {
	SetSource(src string)
	Show()
}

// Client uploads an image and returns the decoded /predict response.
type Client interface {
	Predict(ctx context.Context, filename string, content io.Reader) (*model.Prediction, error)
}

type Predictor struct {
	client   Client
	input    FileInput
	result   ResultView
	preview  PreviewView
	messages Messages
	palette  Palette
	logger   zerolog.Logger

	// mu serializes view writes; current is the token of the newest
	// invocation, and only it may write.
	mu      sync.Mutex
	current uint64
}

type Option func(*Predictor)

func WithMessages(m Messages) Option {
	return func(p *Predictor) { p.messages = m }
}

func WithPalette(pal Palette) Option {
	return func(p *Predictor) { p.palette = pal }
}

// WithLogger sets the diagnostic channel for failures.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Predictor) { p.logger = l }
}

func New(client Client, input FileInput, result ResultView, preview PreviewView, opts ...Option) *Predictor {
	p := &Predictor{
		client:   client,
		input:    input,
		result:   result,
		preview:  preview,
		messages: English,
		palette:  DefaultPalette,
		logger:   log.Logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Trigger runs one invocation. It returns as soon as the preview read and the
// upload have been started; use the returned Invocation to await them.
// Starting a new invocation supersedes older ones: their late completions are
// dropped instead of overwriting the views.
func (p *Predictor) Trigger(ctx context.Context) *Invocation {
	inv := newInvocation()
	logger := p.logger.With().Str("invocation", inv.ID).Logger()

	p.mu.Lock()
	p.current++
	inv.token = p.current
	p.mu.Unlock()

	files := p.input.Files()
	if len(files) == 0 || files[0].Open == nil {
		p.render(inv.token, func() {
			p.result.SetText(p.messages.SelectImage)
		})
		inv.finishPreview(nil)
		inv.finishPrediction(Outcome{Kind: NoFileSelected, Text: p.messages.SelectImage})
		return inv
	}
	file := files[0]

	var g errgroup.Group
	inv.group = &g

	g.Go(func() error {
		err := p.runPreview(inv, file)
		if err != nil {
			logger.Warn().Err(err).Msg("preview failed")
		}
		inv.finishPreview(err)
		return err
	})

	p.render(inv.token, func() {
		p.result.SetText(p.messages.Analyzing)
	})

	g.Go(func() error {
		inv.finishPrediction(p.runPrediction(ctx, inv, file, logger))
		return nil
	})

	return inv
}

func (p *Predictor) runPreview(inv *Invocation, file SelectedFile) error {
	src, err := readPreview(file)
	if err != nil {
		return err
	}
	p.render(inv.token, func() {
		p.preview.SetSource(src)
		p.preview.Show()
	})
	return nil
}

func (p *Predictor) runPrediction(ctx context.Context, inv *Invocation, file SelectedFile, logger zerolog.Logger) Outcome {
	outcome := p.predict(ctx, file)
	if outcome.Err != nil {
		logger.Error().Err(outcome.Err).Str("file", file.Name).Msg("prediction failed")
	}

	outcome.Stale = !p.render(inv.token, func() {
		if outcome.Color != "" {
			p.result.SetColor(outcome.Color)
		}
		p.result.SetText(outcome.Text)
	})
	if outcome.Stale {
		logger.Debug().Str("kind", outcome.Kind.String()).Msg("discarding superseded result")
	}
	return outcome
}

func (p *Predictor) predict(ctx context.Context, file SelectedFile) Outcome {
	failure := func(err error) Outcome {
		return Outcome{Kind: TransportOrParseFailure, Text: p.messages.Failure, Err: err}
	}

	rc, err := file.Open()
	if err != nil {
		return failure(err)
	}
	defer rc.Close()

	prediction, err := p.client.Predict(ctx, file.Name, rc)
	if err != nil {
		return failure(err)
	}
	if prediction == nil {
		return failure(errors.New("empty prediction response"))
	}
	if prediction.Error != "" {
		return Outcome{Kind: BackendReportedError, Text: p.messages.FormatError(prediction.Error)}
	}

	return Outcome{
		Kind:       Success,
		Text:       p.messages.FormatResult(prediction.Result, prediction.Confidence),
		Color:      p.palette.For(prediction.Result),
		Prediction: prediction,
	}
}

// render applies fn if token still belongs to the newest invocation.
func (p *Predictor) render(token uint64, fn func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if token != p.current {
		return false
	}
	fn()
	return true
}

func newInvocation() *Invocation {
	return &Invocation{
		ID:             uuid.NewString(),
		previewDone:    make(chan struct{}),
		predictionDone: make(chan struct{}),
	}
}
