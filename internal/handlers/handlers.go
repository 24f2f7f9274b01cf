package handlers

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Brownie44l1/plaga-api/internal/catalog"
	"github.com/Brownie44l1/plaga-api/internal/diagnosis"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Diagnoser is the diagnosis functionality the handlers expose.
type Diagnoser interface {
	AnalyzeImage(ctx context.Context, src []byte) *diagnosis.Report
	DescribeSymptoms(ctx context.Context, crop, symptoms string) (*diagnosis.Report, error)
	ModelLoaded() bool
}

var errNoImage = errors.New("no image file provided, use 'image' as the form field name")

type Handler struct {
	diagnoser Diagnoser
	catalog   *catalog.Catalog
	maxUpload int64
	logger    *slog.Logger
}

func NewHandler(diagnoser Diagnoser, cat *catalog.Catalog, maxUpload int64, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		diagnoser: diagnoser,
		catalog:   cat,
		maxUpload: maxUpload,
		logger:    logger.With("component", "http"),
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"loaded": h.diagnoser.ModelLoaded()})
}

func (h *Handler) Pests(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Records())
}

// AnalyzeAPI accepts a multipart "image" upload or a JSON body
// {"image": "data:image/...;base64,..."} and returns a diagnosis report.
func (h *Handler) AnalyzeAPI(w http.ResponseWriter, r *http.Request) {
	src, err := h.readImage(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, h.diagnoser.AnalyzeImage(r.Context(), src))
}

type describeRequest struct {
	Crop     string `json:"crop"`
	Symptoms string `json:"symptoms"`
}

func (h *Handler) DescribeAPI(w http.ResponseWriter, r *http.Request) {
	var req describeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	report, err := h.diagnoser.DescribeSymptoms(r.Context(), req.Crop, req.Symptoms)
	if errors.Is(err, diagnosis.ErrMissingInput) {
		writeError(w, http.StatusBadRequest, diagnosis.MsgMissingInput)
		return
	}
	if err != nil {
		h.logger.Error("describe failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Diagnosis failed")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

type pageData struct {
	Tab          string
	Crops        []diagnosis.Crop
	SelectedCrop string
	Symptoms     string
	ModelLoaded  bool
	Report       *diagnosis.Report
	Error        string
}

func (h *Handler) newPage(tab string) *pageData {
	if tab != "describe" {
		tab = "image"
	}
	return &pageData{
		Tab:         tab,
		Crops:       diagnosis.Crops,
		ModelLoaded: h.diagnoser.ModelLoaded(),
	}
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, h.newPage(r.URL.Query().Get("tab")))
}

func (h *Handler) AnalyzePage(w http.ResponseWriter, r *http.Request) {
	page := h.newPage("image")

	src, err := h.readImage(w, r)
	if err != nil {
		page.Error = "Selecciona una imagen para analizar."
		h.render(w, http.StatusBadRequest, page)
		return
	}

	page.Report = h.diagnoser.AnalyzeImage(r.Context(), src)
	page.ModelLoaded = h.diagnoser.ModelLoaded()
	h.render(w, http.StatusOK, page)
}

func (h *Handler) DescribePage(w http.ResponseWriter, r *http.Request) {
	page := h.newPage("describe")
	page.SelectedCrop = r.FormValue("crop")
	page.Symptoms = r.FormValue("symptoms")

	report, err := h.diagnoser.DescribeSymptoms(r.Context(), page.SelectedCrop, page.Symptoms)
	if errors.Is(err, diagnosis.ErrMissingInput) {
		page.Error = diagnosis.MsgMissingInput
		h.render(w, http.StatusBadRequest, page)
		return
	}
	if err != nil {
		h.logger.Error("describe failed", "err", err)
		page.Error = "No se pudo completar el diagnóstico."
		h.render(w, http.StatusInternalServerError, page)
		return
	}

	page.Report = report
	h.render(w, http.StatusOK, page)
}

func (h *Handler) render(w http.ResponseWriter, status int, page *pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, page); err != nil {
		h.logger.Error("failed to render page", "err", err)
	}
}

// readImage extracts the encoded image from a JSON or multipart request.
func (h *Handler) readImage(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req struct {
			Image string `json:"image"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		if strings.TrimSpace(req.Image) == "" {
			return nil, errNoImage
		}
		return []byte(req.Image), nil
	}

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		return nil, fmt.Errorf("failed to parse form: %w", err)
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, errNoImage
	}
	defer file.Close()

	h.logger.Info("received file", "name", header.Filename, "size", header.Size)

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, errNoImage
	}
	return data, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
