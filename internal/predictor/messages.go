package predictor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Messages holds the user-visible strings written to the result view.
type Messages struct {
	SelectImage string
	Analyzing   string
	Failure     string
	ErrorPrefix string
	Confidence  string
}

var English = Messages{
	SelectImage: "Please select an image",
	Analyzing:   "Analyzing...",
	Failure:     "Failed to analyze the image",
	ErrorPrefix: "Error: ",
	Confidence:  "Confidence",
}

var Spanish = Messages{
	SelectImage: "Por favor, selecciona una imagen.",
	Analyzing:   "Analizando...",
	Failure:     "Error al analizar la imagen.",
	ErrorPrefix: "Error: ",
	Confidence:  "Confianza",
}

// MessagesFor resolves a locale tag such as "en", "es" or "es-MX".
func MessagesFor(locale string) (Messages, error) {
	lang, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(locale)), "-")
	switch lang {
	case "", "en":
		return English, nil
	case "es":
		return Spanish, nil
	default:
		return Messages{}, fmt.Errorf("unsupported locale %q", locale)
	}
}

// FormatResult renders "<result> (<Confidence>: <nn.nn>%)". The confidence is
// rounded half away from zero on its shortest decimal form, so 87.345 shows
// as 87.35 even though the nearest float64 is slightly below it.
func (m Messages) FormatResult(result string, confidence float64) string {
	return fmt.Sprintf("%s (%s: %s%%)", result, m.Confidence, decimal.NewFromFloat(confidence).StringFixed(2))
}

func (m Messages) FormatError(msg string) string {
	return m.ErrorPrefix + msg
}

// Palette is the pair of text colors used for a classification result.
type Palette struct {
	Positive string
	Negative string
}

var DefaultPalette = Palette{
	Positive: "#d81b60",
	Negative: "#00796b",
}

var negatedFinding = regexp.MustCompile(`^(?i:no|not)\b`)

// IsPositiveFinding reports whether a classification names a tumor finding.
// "Tumor Detected" is positive; "No Tumor" mentions the word but is negated.
func IsPositiveFinding(result string) bool {
	result = strings.TrimSpace(result)
	return strings.Contains(result, "Tumor") && !negatedFinding.MatchString(result)
}

func (p Palette) For(result string) string {
	if IsPositiveFinding(result) {
		return p.Positive
	}
	return p.Negative
}
