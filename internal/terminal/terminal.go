// Package terminal renders predictor output to a console.
package terminal

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// ResultLine prints each text update on its own line, colored with the last
// color set when Color is enabled.
type ResultLine struct {
	mu    sync.Mutex
	out   io.Writer
	color string
	Color bool
}

func NewResultLine(out io.Writer, color bool) *ResultLine {
	return &ResultLine{out: out, Color: color}
}

func (r *ResultLine) SetColor(color string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.color = color
}

func (r *ResultLine) SetText(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if seq, ok := ansiColor(r.color); ok && r.Color {
		fmt.Fprintf(r.out, "%s%s\x1b[0m\n", seq, text)
		return
	}
	fmt.Fprintln(r.out, text)
}

// ansiColor turns "#rrggbb" into a 24-bit foreground escape sequence.
func ansiColor(hex string) (string, bool) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return "", false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm", v>>16&0xff, v>>8&0xff, v&0xff), true
}

// PreviewFile writes the preview data URL to Path once it is shown. An empty
// Path discards the preview.
type PreviewFile struct {
	mu   sync.Mutex
	Path string
	src  string
}

func (p *PreviewFile) SetSource(src string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.src = src
}

func (p *PreviewFile) Show() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Path == "" || p.src == "" {
		return
	}
	if err := os.WriteFile(p.Path, []byte(p.src), 0o644); err != nil {
		log.Warn().Err(err).Str("path", p.Path).Msg("failed to write preview")
		return
	}
	log.Debug().Str("path", p.Path).Int("bytes", len(p.src)).Msg("wrote preview")
}
