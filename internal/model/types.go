package model

import "errors"

const (
	// ImageSize is the square input resolution the classifier expects.
	ImageSize = 224

	// ConfidenceThreshold is the minimum raw probability a class needs to be reported.
	ConfidenceThreshold = 0.1

	// MaxPredictions caps the ranked list returned by Predict.
	MaxPredictions = 3
)

var (
	// ErrNotLoaded is returned by Predict before a successful Load.
	ErrNotLoaded = errors.New("model not loaded, call Load first")

	// ErrLoad wraps failures while reading the model or its labels. Load
	// reports it through a false return and LoadError keeps the cause.
	ErrLoad = errors.New("model load failed")

	// ErrDecode is returned when an image source cannot be decoded.
	ErrDecode = errors.New("image decode failed")

	// ErrInference wraps runtime failures during a forward pass.
	ErrInference = errors.New("inference failed")
)

// Prediction is a single ranked classifier output.
type Prediction struct {
	Label      string `json:"label"`
	Confidence int    `json:"confidence"`
}
