package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Brownie44l1/plaga-api/internal/catalog"
	"github.com/Brownie44l1/plaga-api/internal/diagnosis"
)

type fakeDiagnoser struct {
	loaded   bool
	received []byte
}

func (f *fakeDiagnoser) AnalyzeImage(_ context.Context, src []byte) *diagnosis.Report {
	f.received = src
	return &diagnosis.Report{
		ID:     "r-1",
		Source: diagnosis.SourceModel,
		Findings: []diagnosis.Finding{{
			Pest:        "Mosca blanca",
			Scientific:  "Bemisia tabaci",
			Confidence:  72,
			Description: "Insecto pequeño",
			Remedies:    []string{"Usar trampas amarillas adhesivas"},
			Severity:    catalog.SeverityMedium,
		}},
	}
}

func (f *fakeDiagnoser) DescribeSymptoms(_ context.Context, crop, symptoms string) (*diagnosis.Report, error) {
	if strings.TrimSpace(crop) == "" || strings.TrimSpace(symptoms) == "" {
		return nil, diagnosis.ErrMissingInput
	}
	return &diagnosis.Report{
		ID:     "r-2",
		Source: diagnosis.SourceSymptoms,
		Findings: []diagnosis.Finding{{
			Pest:       "Gusano cogollero",
			Confidence: 66,
			Severity:   catalog.SeverityHigh,
		}},
	}, nil
}

func (f *fakeDiagnoser) ModelLoaded() bool { return f.loaded }

func newTestRouter(d *fakeDiagnoser) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(d, catalog.New(), 1<<20, logger).Router()
}

func multipartBody(t *testing.T, field string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "hoja.jpg")
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&fakeDiagnoser{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusAndPests(t *testing.T) {
	router := newTestRouter(&fakeDiagnoser{loaded: true})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.JSONEq(t, `{"loaded":true}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pests", nil))
	var pests []catalog.Record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pests))
	require.Len(t, pests, 8)
}

func TestPreflight(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&fakeDiagnoser{}).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/analyze", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestAnalyzeAPI_Multipart(t *testing.T) {
	d := &fakeDiagnoser{}
	body, contentType := multipartBody(t, "image", []byte("jpeg-bytes"))

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	newTestRouter(d).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "jpeg-bytes", string(d.received))

	var report diagnosis.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Equal(t, diagnosis.SourceModel, report.Source)
	require.Equal(t, "Mosca blanca", report.Findings[0].Pest)
}

func TestAnalyzeAPI_JSONDataURL(t *testing.T) {
	d := &fakeDiagnoser{}
	req := httptest.NewRequest(http.MethodPost, "/api/analyze",
		strings.NewReader(`{"image":"data:image/png;base64,AAAA"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	newTestRouter(d).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "data:image/png;base64,AAAA", string(d.received))
}

func TestAnalyzeAPI_MissingImage(t *testing.T) {
	body, contentType := multipartBody(t, "photo", []byte("x"))
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	newTestRouter(&fakeDiagnoser{}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "'image'")
}

func TestAnalyzeAPI_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&fakeDiagnoser{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analyze", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDescribeAPI(t *testing.T) {
	router := newTestRouter(&fakeDiagnoser{})

	req := httptest.NewRequest(http.MethodPost, "/api/describe",
		strings.NewReader(`{"crop":"maiz","symptoms":"hojas perforadas"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Gusano cogollero")

	req = httptest.NewRequest(http.MethodPost, "/api/describe", strings.NewReader(`{"crop":"maiz"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), diagnosis.MsgMissingInput)

	req = httptest.NewRequest(http.MethodPost, "/api/describe", strings.NewReader(`{`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIndexTabs(t *testing.T) {
	router := newTestRouter(&fakeDiagnoser{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `id="image-tab"`)
	require.Contains(t, rec.Body.String(), "Modelo no cargado")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?tab=describe", nil))
	require.Contains(t, rec.Body.String(), `id="describe-tab"`)
	require.Contains(t, rec.Body.String(), `value="tomate"`)
}

func TestAnalyzePage_RendersCards(t *testing.T) {
	body, contentType := multipartBody(t, "image", []byte("jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	newTestRouter(&fakeDiagnoser{loaded: true}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	html := rec.Body.String()
	require.Contains(t, html, "Mosca blanca")
	require.Contains(t, html, "Bemisia tabaci")
	require.Contains(t, html, "72% de confianza")
	require.Contains(t, html, "Media severidad")
	require.Contains(t, html, "<li>Usar trampas amarillas adhesivas</li>")
}

func TestDescribePage(t *testing.T) {
	router := newTestRouter(&fakeDiagnoser{})

	form := url.Values{"crop": {"maiz"}, "symptoms": {"hojas perforadas"}}
	req := httptest.NewRequest(http.MethodPost, "/describe", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Alta severidad")

	form = url.Values{"crop": {""}, "symptoms": {"algo"}}
	req = httptest.NewRequest(http.MethodPost, "/describe", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "selecciona un cultivo")
}
