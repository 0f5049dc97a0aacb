package predictor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatResult(t *testing.T) {
	tests := []struct {
		result     string
		confidence float64
		want       string
	}{
		{"Tumor Detected", 87.345, "Tumor Detected (Confidence: 87.35%)"},
		{"No Tumor", 99.5, "No Tumor (Confidence: 99.50%)"},
		{"No Tumor", 100, "No Tumor (Confidence: 100.00%)"},
		{"Tumor Detected", 0.004, "Tumor Detected (Confidence: 0.00%)"},
		{"Tumor Detected", 12.005, "Tumor Detected (Confidence: 12.01%)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, English.FormatResult(tt.result, tt.confidence))
	}
}

func TestIsPositiveFinding(t *testing.T) {
	assert.True(t, IsPositiveFinding("Tumor Detected"))
	assert.True(t, IsPositiveFinding("Tumor detectado"))
	assert.True(t, IsPositiveFinding("Glioma Tumor"))
	assert.False(t, IsPositiveFinding("No Tumor"))
	assert.False(t, IsPositiveFinding("not Tumor"))
	assert.False(t, IsPositiveFinding("No se detectó tumor"))
	assert.False(t, IsPositiveFinding("Healthy"))
	assert.True(t, IsPositiveFinding("Notable Tumor"))
}

func TestPaletteFor(t *testing.T) {
	assert.Equal(t, "#d81b60", DefaultPalette.For("Tumor Detected"))
	assert.Equal(t, "#00796b", DefaultPalette.For("No Tumor"))
}

func TestMessagesFor(t *testing.T) {
	m, err := MessagesFor("")
	require.NoError(t, err)
	assert.Equal(t, English, m)

	m, err = MessagesFor("ES")
	require.NoError(t, err)
	assert.Equal(t, "Error al analizar la imagen.", m.Failure)

	_, err = MessagesFor("fr")
	assert.Error(t, err)
}

func TestDataURL(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,AQI=", DataURL("scan.PNG", []byte{1, 2}))
	assert.Equal(t, "data:image/jpeg;base64,/9j/", DataURL("scan", []byte{0xff, 0xd8, 0xff}))
	assert.Equal(t, "data:text/plain;base64,aGk=", DataURL("notes", []byte("hi")))
}
