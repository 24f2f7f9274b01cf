package model

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/Brownie44l1/plaga-api/internal/imaging"
)

// Classifier owns a pest classification model and its label table.
// Predict is only allowed after a successful Load.
type Classifier struct {
	engine     Engine
	modelPath  string
	labelsPath string
	logger     *slog.Logger
	decode     func([]byte) (image.Image, error)

	loadMu sync.Mutex // serializes Load and Dispose

	mu      sync.RWMutex
	session Session
	labels  []string
	loaded  bool
	loadErr error
}

// NewClassifier creates an unloaded classifier for the given model and
// label resources.
func NewClassifier(engine Engine, modelPath, labelsPath string, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		engine:     engine,
		modelPath:  modelPath,
		labelsPath: labelsPath,
		logger:     logger.With("component", "classifier"),
		decode:     imaging.Decode,
	}
}

// Load opens the model and reads its labels. It returns false on any
// failure; the cause is logged and available from LoadError.
func (c *Classifier) Load(ctx context.Context) bool {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	c.logger.Info("loading model", "model", c.modelPath, "labels", c.labelsPath)

	session, labels, err := c.open(ctx)

	c.mu.Lock()
	previous := c.session
	if err != nil {
		c.session, c.labels, c.loaded = nil, nil, false
	} else {
		c.session, c.labels, c.loaded = session, labels, true
	}
	c.loadErr = err
	c.mu.Unlock()

	if previous != nil {
		if cerr := previous.Close(); cerr != nil {
			c.logger.Warn("failed to release previous model", "err", cerr)
		}
	}

	if err != nil {
		c.logger.Error("model load failed", "err", err)
		return false
	}

	c.logger.Info("model loaded", "labels", len(labels))
	c.logger.Debug("label table", "labels", labels)
	return true
}

func (c *Classifier) open(ctx context.Context) (Session, []string, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	session, err := c.engine.Open(c.modelPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: open model: %v", ErrLoad, err)
	}

	text, err := readResource(ctx, c.labelsPath)
	if err != nil {
		session.Close()
		return nil, nil, fmt.Errorf("%w: read labels: %v", ErrLoad, err)
	}

	return session, ParseLabels(string(text)), nil
}

// IsLoaded reports whether Predict may run.
func (c *Classifier) IsLoaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// LoadError returns the cause of the last failed Load, or nil.
func (c *Classifier) LoadError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loadErr
}

// Labels returns a copy of the loaded label table.
func (c *Classifier) Labels() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.labels...)
}

// Predict classifies img and returns up to MaxPredictions results with
// confidence descending. It fails with ErrNotLoaded before a successful Load.
func (c *Classifier) Predict(ctx context.Context, img image.Image) ([]Prediction, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.loaded {
		return nil, ErrNotLoaded
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	probs, err := c.session.Run(Preprocess(img))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}

	return Rank(probs, c.labels), nil
}

// PredictFromImageSource decodes an encoded image (raw bytes or data URL)
// and classifies it.
func (c *Classifier) PredictFromImageSource(ctx context.Context, src []byte) ([]Prediction, error) {
	if !c.IsLoaded() {
		return nil, ErrNotLoaded
	}

	img, err := c.decode(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return c.Predict(ctx, img)
}

// Dispose releases the model. Calling it on an unloaded classifier is a no-op.
func (c *Classifier) Dispose() {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	c.mu.Lock()
	session := c.session
	c.session, c.labels, c.loaded = nil, nil, false
	c.mu.Unlock()

	if session == nil {
		return
	}
	if err := session.Close(); err != nil {
		c.logger.Warn("failed to release model", "err", err)
		return
	}
	c.logger.Info("model disposed")
}
