package terminal

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultLinePlain(t *testing.T) {
	var out bytes.Buffer
	r := NewResultLine(&out, false)
	r.SetText("Analyzing...")
	r.SetColor("#d81b60")
	r.SetText("Tumor Detected (Confidence: 87.35%)")

	assert.Equal(t, "Analyzing...\nTumor Detected (Confidence: 87.35%)\n", out.String())
}

func TestResultLineColored(t *testing.T) {
	var out bytes.Buffer
	r := NewResultLine(&out, true)
	r.SetText("Analyzing...")
	r.SetColor("#00796b")
	r.SetText("No Tumor (Confidence: 99.50%)")

	assert.Equal(t, "Analyzing...\n\x1b[38;2;0;121;107mNo Tumor (Confidence: 99.50%)\x1b[0m\n", out.String())
}

func TestAnsiColorRejectsBadInput(t *testing.T) {
	_, ok := ansiColor("red")
	assert.False(t, ok)
	_, ok = ansiColor("#zzzzzz")
	assert.False(t, ok)
}

func TestPreviewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preview.txt")
	p := &PreviewFile{Path: path}
	p.SetSource("data:image/png;base64,AQI=")
	p.Show()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AQI=", string(data))

	(&PreviewFile{}).Show()
}
