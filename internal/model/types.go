package model

// Channel orders accepted in Metadata.ChannelOrder.
const (
	ChannelsBGR = "bgr"
	ChannelsRGB = "rgb"
)

// Tensor layouts accepted in Metadata.Layout.
const (
	LayoutHWC = "hwc"
	LayoutCHW = "chw"
)

type Metadata struct {
	InputShape   []int64  `json:"input_shape"`
	OutputShape  []int64  `json:"output_shape"`
	Classes      []string `json:"classes"`
	ImageSize    int      `json:"image_size"`
	ChannelOrder string   `json:"channel_order,omitempty"`
	Layout       string   `json:"layout,omitempty"`
}

// InputSize is the number of float values the model expects per request.
func (m Metadata) InputSize() int {
	if len(m.InputShape) == 0 {
		return 0
	}
	size := 1
	for _, dim := range m.InputShape {
		size *= int(dim)
	}
	return size
}

type TensorRequest struct {
	Image []float32 `json:"image"`
}

// Prediction is the body returned by POST /predict. Exactly one of Error or
// Result is meaningful.
type Prediction struct {
	Result      string             `json:"result,omitempty"`
	Confidence  float64            `json:"confidence"`
	Predictions map[string]float64 `json:"predictions,omitempty"`
	Error       string             `json:"error,omitempty"`
}
