package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Brownie44l1/plaga-api/internal/catalog"
	"github.com/Brownie44l1/plaga-api/internal/diagnosis"
)

func TestParseDescribeArgs(t *testing.T) {
	crop, symptoms := parseDescribeArgs("  maiz hojas con  agujeros ")
	require.Equal(t, "maiz", crop)
	require.Equal(t, "hojas con  agujeros", symptoms)

	crop, symptoms = parseDescribeArgs("tomate")
	require.Equal(t, "tomate", crop)
	require.Empty(t, symptoms)
}

func TestFormatReport(t *testing.T) {
	text := FormatReport(&diagnosis.Report{
		Warning: "Error en el análisis. Mostrando resultados de ejemplo. Error: x",
		Findings: []diagnosis.Finding{{
			Pest:        "Gusano cogollero",
			Scientific:  "Spodoptera frugiperda",
			Confidence:  87,
			Description: "Plaga común en maíz.",
			Remedies:    []string{"Rotar cultivos con leguminosas"},
			Severity:    catalog.SeverityHigh,
		}},
	})

	require.Contains(t, text, "⚠️ Error en el análisis")
	require.Contains(t, text, "🐛 Gusano cogollero (Spodoptera frugiperda)")
	require.Contains(t, text, "Confianza: 87% · Severidad: Alta")
	require.Contains(t, text, "• Rotar cultivos con leguminosas")
	require.NotContains(t, text[len(text)-1:], "\n")
}

func TestFormatReport_Empty(t *testing.T) {
	require.Equal(t, "✅ No se detectaron plagas con suficiente confianza.", FormatReport(&diagnosis.Report{}))
}

func TestFetchFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/photo.jpg" {
			_, _ = w.Write([]byte("jpeg-bytes"))
			return
		}
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	data, err := fetchFile(context.Background(), srv.Client(), srv.URL+"/photo.jpg")
	require.NoError(t, err)
	require.Equal(t, "jpeg-bytes", string(data))

	data, err = fetchFile(context.Background(), srv.Client(), srv.URL+"/missing.jpg")
	require.ErrorContains(t, err, "404")
	require.Nil(t, data)
}
