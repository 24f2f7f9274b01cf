// Package diagnosis turns uploaded photos and symptom descriptions into
// reports the UI can render.
package diagnosis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Brownie44l1/plaga-api/internal/catalog"
	"github.com/Brownie44l1/plaga-api/internal/metrics"
	"github.com/Brownie44l1/plaga-api/internal/model"
)

// Service enriches classifier output with catalog knowledge and masks
// failures with the demo dataset.
type Service struct {
	classifier Classifier
	catalog    *catalog.Catalog
	logger     *slog.Logger
	now        func() time.Time

	loadMu sync.Mutex

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option customises a Service.
type Option func(*Service)

// WithRand sets the random source used for symptom diagnoses.
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) { s.rng = rng }
}

// WithClock sets the clock used to timestamp reports.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a diagnosis service.
func NewService(classifier Classifier, cat *catalog.Catalog, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		classifier: classifier,
		catalog:    cat,
		logger:     logger.With("component", "diagnosis"),
		now:        time.Now,
		rng:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Warmup loads the model in the background after delay. Failure is only
// logged; AnalyzeImage retries the load on demand.
func (s *Service) Warmup(ctx context.Context, delay time.Duration) {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	if err := s.ensureLoaded(ctx); err != nil {
		s.logger.Warn("could not preload pest model", "err", err)
		return
	}
	s.logger.Info("pest model preloaded")
}

// ModelLoaded reports whether the classifier is ready.
func (s *Service) ModelLoaded() bool {
	return s.classifier.IsLoaded()
}

func (s *Service) ensureLoaded(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if s.classifier.IsLoaded() {
		return nil
	}
	if !s.classifier.Load(ctx) {
		metrics.ModelLoads.WithLabelValues("failure").Inc()
		if cause := s.classifier.LoadError(); cause != nil {
			return fmt.Errorf("%w: %v", ErrModelUnavailable, cause)
		}
		return ErrModelUnavailable
	}
	metrics.ModelLoads.WithLabelValues("success").Inc()
	return nil
}

// AnalyzeImage classifies an encoded image. Any failure is replaced by the
// demo dataset and a warning on the report.
func (s *Service) AnalyzeImage(ctx context.Context, src []byte) *Report {
	start := time.Now()
	findings, err := s.classify(ctx, src)

	if err != nil {
		s.logger.Error("image analysis failed, showing demo results", "err", err)
		metrics.Fallbacks.WithLabelValues(fallbackReason(err)).Inc()
		metrics.Analyses.WithLabelValues(string(SourceDemo)).Inc()
		return s.demoReport(err)
	}

	metrics.Analyses.WithLabelValues(string(SourceModel)).Inc()
	s.logger.Info("image analysed", "findings", len(findings), "elapsed", time.Since(start))
	return s.newReport(SourceModel, findings, "")
}

func (s *Service) classify(ctx context.Context, src []byte) ([]Finding, error) {
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	predictions, err := s.classifier.PredictFromImageSource(ctx, src)
	metrics.InferenceDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	findings := make([]Finding, 0, len(predictions))
	for _, p := range predictions {
		r := s.catalog.Lookup(p.Label)
		findings = append(findings, Finding{
			Pest:        p.Label,
			Scientific:  r.Scientific,
			Confidence:  p.Confidence,
			Description: r.Description,
			Remedies:    r.Remedies,
			Severity:    r.Severity,
		})
	}
	return findings, nil
}

func (s *Service) demoReport(cause error) *Report {
	demo := s.catalog.Demo().Results()
	findings := make([]Finding, 0, len(demo))
	for _, d := range demo {
		findings = append(findings, Finding{
			Pest:        d.Name,
			Scientific:  d.Scientific,
			Confidence:  d.Confidence,
			Description: d.Description,
			Remedies:    d.Remedies,
			Severity:    d.Severity,
		})
	}
	warning := "Error en el análisis. Mostrando resultados de ejemplo. Error: " + cause.Error()
	return s.newReport(SourceDemo, findings, warning)
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, ErrModelUnavailable):
		return "model_unavailable"
	case errors.Is(err, model.ErrDecode):
		return "decode"
	case errors.Is(err, model.ErrInference):
		return "inference"
	case errors.Is(err, model.ErrNotLoaded):
		return "not_loaded"
	default:
		return "other"
	}
}

type cropGuess struct {
	pest   catalog.PestID
	phrase string
}

var cropGuesses = map[string]cropGuess{
	"maiz":   {pest: catalog.GusanoCogollero, phrase: "daño por gusano cogollero"},
	"tomate": {pest: catalog.MoscaBlanca, phrase: "infestación por mosca blanca"},
}

var otherCropGuess = cropGuess{pest: catalog.Pulgon, phrase: "ataque de pulgón"}

// DescribeSymptoms returns a simulated diagnosis for a crop and a free-text
// symptom description.
func (s *Service) DescribeSymptoms(ctx context.Context, crop, symptoms string) (*Report, error) {
	crop = normalizeCrop(crop)
	symptoms = strings.TrimSpace(symptoms)
	if crop == "" || symptoms == "" {
		return nil, ErrMissingInput
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	guess, ok := cropGuesses[crop]
	if !ok {
		guess = otherCropGuess
	}
	r, ok := s.catalog.ByID(guess.pest)
	if !ok {
		r = s.catalog.Lookup(string(guess.pest))
	}

	s.rngMu.Lock()
	confidence := 60 + s.rng.IntN(30)
	severity := catalog.SeverityMedium
	if s.rng.Float64() > 0.5 {
		severity = catalog.SeverityHigh
	}
	s.rngMu.Unlock()

	finding := Finding{
		Pest:        r.Name,
		Scientific:  r.Scientific,
		Confidence:  confidence,
		Description: fmt.Sprintf("Posible %s basado en los síntomas descritos.", guess.phrase),
		Remedies:    s.catalog.DefaultRemedies(),
		Severity:    severity,
	}

	metrics.Analyses.WithLabelValues(string(SourceSymptoms)).Inc()
	s.logger.Info("symptoms described", "crop", crop, "pest", finding.Pest)
	return s.newReport(SourceSymptoms, []Finding{finding}, ""), nil
}

func normalizeCrop(crop string) string {
	crop = strings.ToLower(strings.TrimSpace(crop))
	return strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u").Replace(crop)
}

func (s *Service) newReport(source Source, findings []Finding, warning string) *Report {
	return &Report{
		ID:        uuid.NewString(),
		Source:    source,
		Findings:  findings,
		Warning:   warning,
		CreatedAt: s.now().UTC(),
	}
}
