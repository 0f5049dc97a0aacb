package model

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
	ort "github.com/yalue/onnxruntime_go"
)

// Runner owns an ONNX session with preallocated input and output tensors.
type Runner struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	metadata     Metadata
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]
}

// LoadMetadata reads the JSON sidecar describing a model's tensors and classes.
func LoadMetadata(path string) (Metadata, error) {
	metaFile, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read metadata: %w", err)
	}

	var metadata Metadata
	if err := json.Unmarshal(metaFile, &metadata); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse metadata: %w", err)
	}
	if len(metadata.Classes) == 0 {
		return Metadata{}, fmt.Errorf("metadata lists no classes")
	}
	if metadata.ImageSize <= 0 {
		metadata.ImageSize = 256
	}
	if metadata.ChannelOrder == "" {
		metadata.ChannelOrder = ChannelsBGR
	}
	if metadata.Layout == "" {
		metadata.Layout = LayoutHWC
	}
	return metadata, nil
}

func NewRunner(modelPath, metadataPath, libraryPath string) (*Runner, error) {
	metadata, err := LoadMetadata(metadataPath)
	if err != nil {
		return nil, err
	}

	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.InputShape...))
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(metadata.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"input"}, []string{"output"},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &Runner{
		session:      session,
		metadata:     metadata,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
	}, nil
}

func (r *Runner) Metadata() Metadata {
	return r.metadata
}

// Predict runs one inference. The tensors are shared, so calls are serialized.
func (r *Runner) Predict(inputData []float32) (*Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	copy(r.inputTensor.GetData(), inputData)

	if err := r.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	scores := r.outputTensor.GetData()
	log.Debug().Interface("scores", scores).Msg("raw prediction")

	return Decide(scores, r.metadata.Classes)
}

// Decide picks the highest scoring class and reports its score as a
// percentage.
func Decide(scores []float32, classes []string) (*Prediction, error) {
	if len(scores) == 0 || len(classes) == 0 {
		return nil, fmt.Errorf("empty model output")
	}

	maxIdx := 0
	maxVal := scores[0]
	predictions := make(map[string]float64)

	for i, val := range scores {
		if i >= len(classes) {
			break
		}
		predictions[classes[i]] = float64(val) * 100
		if val > maxVal {
			maxVal = val
			maxIdx = i
		}
	}

	return &Prediction{
		Result:      classes[maxIdx],
		Confidence:  float64(maxVal) * 100,
		Predictions: predictions,
	}, nil
}

func (r *Runner) Close() {
	if r.inputTensor != nil {
		r.inputTensor.Destroy()
	}
	if r.outputTensor != nil {
		r.outputTensor.Destroy()
	}
	if r.session != nil {
		r.session.Destroy()
	}
	ort.DestroyEnvironment()
}
