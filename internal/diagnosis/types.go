package diagnosis

import (
	"context"
	"errors"
	"time"

	"github.com/Brownie44l1/plaga-api/internal/catalog"
	"github.com/Brownie44l1/plaga-api/internal/model"
)

var (
	// ErrMissingInput is returned when a symptom description lacks a crop or symptoms.
	ErrMissingInput = errors.New("crop and symptoms are required")

	// ErrModelUnavailable means the classifier could not be loaded on demand.
	ErrModelUnavailable = errors.New("no se pudo cargar el modelo de IA")
)

// MsgMissingInput is shown to users who submit an incomplete symptom form.
const MsgMissingInput = "Por favor, selecciona un cultivo y describe los síntomas."

// Classifier is the part of model.Classifier the service depends on.
type Classifier interface {
	IsLoaded() bool
	Load(ctx context.Context) bool
	LoadError() error
	PredictFromImageSource(ctx context.Context, src []byte) ([]model.Prediction, error)
}

// Source tells where the findings of a report came from.
type Source string

const (
	SourceModel    Source = "model"
	SourceDemo     Source = "demo"
	SourceSymptoms Source = "symptoms"
)

// Finding is a prediction enriched with catalog knowledge.
type Finding struct {
	Pest        string           `json:"pest"`
	Scientific  string           `json:"scientific"`
	Confidence  int              `json:"confidence"`
	Description string           `json:"description"`
	Remedies    []string         `json:"remedies"`
	Severity    catalog.Severity `json:"severity"`
}

// Report is what the UI renders for one analysis.
type Report struct {
	ID        string    `json:"id"`
	Source    Source    `json:"source"`
	Findings  []Finding `json:"findings"`
	Warning   string    `json:"warning,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Crop is an entry of the crop selector.
type Crop struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Crops lists the crops offered by the symptom form.
var Crops = []Crop{
	{ID: "maiz", Name: "Maíz"},
	{ID: "tomate", Name: "Tomate"},
	{ID: "cafe", Name: "Café"},
	{ID: "arroz", Name: "Arroz"},
	{ID: "tabaco", Name: "Tabaco"},
	{ID: "frijol", Name: "Frijol"},
}
