package predictor

import (
	"context"

	"github.com/Brownie44l1/mri-api/internal/model"
	"golang.org/x/sync/errgroup"
)

// Kind classifies how an invocation ended.
type Kind int

const (
	NoFileSelected Kind = iota + 1
	Success
	BackendReportedError
	TransportOrParseFailure
)

func (k Kind) String() string {
	switch k {
	case NoFileSelected:
		return "no_file_selected"
	case Success:
		return "success"
	case BackendReportedError:
		return "backend_error"
	case TransportOrParseFailure:
		return "transport_failure"
	default:
		return "unknown"
	}
}

// Outcome is what the prediction task rendered, or would have rendered had
// it not been superseded.
type Outcome struct {
	Kind       Kind
	Text       string
	Color      string
	Prediction *model.Prediction
	// Err is the diagnostic cause of a TransportOrParseFailure. It is logged,
	// never shown.
	Err   error
	Stale bool
}

// Invocation tracks the two independent tasks started by one Trigger.
type Invocation struct {
	ID    string
	token uint64
	group *errgroup.Group

	previewDone    chan struct{}
	previewErr     error
	predictionDone chan struct{}
	outcome        Outcome
}

func (i *Invocation) finishPreview(err error) {
	i.previewErr = err
	close(i.previewDone)
}

func (i *Invocation) finishPrediction(o Outcome) {
	i.outcome = o
	close(i.predictionDone)
}

// WaitPreview blocks until the preview has been rendered or has failed.
func (i *Invocation) WaitPreview(ctx context.Context) error {
	select {
	case <-i.previewDone:
		return i.previewErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitPrediction blocks until the prediction outcome is known.
func (i *Invocation) WaitPrediction(ctx context.Context) (Outcome, error) {
	select {
	case <-i.predictionDone:
		return i.outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

// Wait blocks until both tasks are done and returns the preview error, if any.
func (i *Invocation) Wait() error {
	if i.group == nil {
		return i.previewErr
	}
	return i.group.Wait()
}
