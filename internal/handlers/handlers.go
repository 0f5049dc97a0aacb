package handlers

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/Brownie44l1/mri-api/internal/model"
	"github.com/rs/zerolog/log"
)

//go:embed static
var staticFiles embed.FS

// DefaultMaxUploadBytes caps multipart bodies accepted by Predict.
const DefaultMaxUploadBytes = 10 << 20

// Classifier runs a preprocessed tensor through the model.
type Classifier interface {
	Predict(input []float32) (*model.Prediction, error)
	Metadata() model.Metadata
}

type Handler struct {
	classifier     Classifier
	maxUploadBytes int64
}

func NewHandler(classifier Classifier, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{
		classifier:     classifier,
		maxUploadBytes: maxUploadBytes,
	}
}

// Routes registers every endpoint on a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		// fs.Sub only fails for an invalid path, and "static" is a constant.
		panic(fmt.Sprintf("static assets: %v", err))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", h.Index)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	mux.HandleFunc("/health", enableCORS(h.Health))
	mux.HandleFunc("/predict", enableCORS(h.Predict))
	mux.HandleFunc("/predict/tensor", enableCORS(h.PredictTensor))
	return mux
}

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	page, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// Predict accepts a multipart upload with the image under the "file" field.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		log.Warn().Err(err).Msg("failed to parse upload")
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	logger := log.With().Str("filename", header.Filename).Int64("size", header.Size).Logger()
	logger.Info().Msg("received file")

	img, format, err := model.DecodeImage(file)
	if err != nil {
		logger.Error().Err(err).Msg("prediction failed")
		writeError(w, http.StatusInternalServerError, "failed to process image")
		return
	}
	logger.Info().Str("format", format).Int("width", img.Bounds().Dx()).Int("height", img.Bounds().Dy()).Msg("decoded image")

	inputData, err := model.Preprocess(img, h.classifier.Metadata())
	if err != nil {
		logger.Error().Err(err).Msg("preprocessing failed")
		writeError(w, http.StatusInternalServerError, "failed to process image")
		return
	}

	result, err := h.classifier.Predict(inputData)
	if err != nil {
		logger.Error().Err(err).Msg("prediction failed")
		writeError(w, http.StatusInternalServerError, "failed to process image")
		return
	}

	logger.Info().Str("result", result.Result).Float64("confidence", result.Confidence).Msg("prediction")
	writeJSON(w, http.StatusOK, result)
}

// PredictTensor accepts an already preprocessed tensor as JSON.
func (h *Handler) PredictTensor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req model.TensorRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxUploadBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	expectedSize := h.classifier.Metadata().InputSize()
	if len(req.Image) != expectedSize {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("expected %d values, got %d", expectedSize, len(req.Image)))
		return
	}

	result, err := h.classifier.Predict(req.Image)
	if err != nil {
		log.Error().Err(err).Msg("prediction failed")
		writeError(w, http.StatusInternalServerError, "prediction failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
