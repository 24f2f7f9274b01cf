package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// Engine opens inference sessions for a serialized model.
type Engine interface {
	Open(modelPath string) (Session, error)
}

// Session runs forward passes over a preprocessed NHWC image tensor and
// returns the flat confidence vector.
type Session interface {
	Run(input []float32) ([]float32, error)
	Close() error
}

// ONNXEngine opens ONNX models through onnxruntime.
type ONNXEngine struct {
	libraryPath string

	mu          sync.Mutex
	initialized bool
}

// NewONNXEngine returns an engine that loads the onnxruntime shared library
// from libraryPath, or from the usual install locations when it is empty.
func NewONNXEngine(libraryPath string) *ONNXEngine {
	return &ONNXEngine{libraryPath: strings.TrimSpace(libraryPath)}
}

func (e *ONNXEngine) init(modelDir string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.initialized || ort.IsInitialized() {
		e.initialized = true
		return nil
	}

	libPath := e.libraryPath
	if libPath == "" {
		libPath = resolveSharedLibraryPath(modelDir)
	}
	if libPath == "" {
		return errors.New("onnxruntime shared library not found; set ONNXRUNTIME_SHARED_LIBRARY_PATH or install the runtime")
	}
	ort.SetSharedLibraryPath(libPath)

	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}
	e.initialized = true
	return nil
}

// Open creates a session for the model at modelPath. The first input and
// first output declared by the model are used.
func (e *ONNXEngine) Open(modelPath string) (Session, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file missing at %s: %w", modelPath, err)
	}
	if err := e.init(filepath.Dir(modelPath)); err != nil {
		return nil, err
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read model inputs/outputs: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, errors.New("model declares no inputs or outputs")
	}

	inputShape := concreteShape(inputs[0].Dimensions)
	outputShape := concreteShape(outputs[0].Dimensions)
	if inputShape.FlattenedSize() != ImageSize*ImageSize*3 {
		return nil, fmt.Errorf("unexpected model input shape %v, want 1x%dx%dx3", inputShape, ImageSize, ImageSize)
	}

	session, err := ort.NewDynamicAdvancedSession(modelPath,
		[]string{inputs[0].Name}, []string{outputs[0].Name}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &onnxSession{
		session:       session,
		inputShape:    inputShape,
		outputShape:   outputShape,
		channelsFirst: len(inputShape) == 4 && inputShape[1] == 3,
	}, nil
}

// Close tears down the onnxruntime environment. Sessions must be closed first.
func (e *ONNXEngine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return nil
	}
	e.initialized = false
	return ort.DestroyEnvironment()
}

type onnxSession struct {
	session       *ort.DynamicAdvancedSession
	inputShape    ort.Shape
	outputShape   ort.Shape
	channelsFirst bool
}

// Run allocates the input and output tensors for this call only and
// destroys them before returning.
func (s *onnxSession) Run(input []float32) ([]float32, error) {
	if s.channelsFirst {
		input = toChannelsFirst(input, ImageSize)
	}

	inputTensor, err := ort.NewTensor(s.inputShape, input)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer inputTensor.Destroy()

	outputTensor, err := ort.NewEmptyTensor[float32](s.outputShape)
	if err != nil {
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer outputTensor.Destroy()

	if err := s.session.Run([]ort.Value{inputTensor}, []ort.Value{outputTensor}); err != nil {
		return nil, err
	}

	raw := outputTensor.GetData()
	probs := make([]float32, len(raw))
	copy(probs, raw)
	return probs, nil
}

func (s *onnxSession) Close() error {
	if s.session == nil {
		return nil
	}
	err := s.session.Destroy()
	s.session = nil
	return err
}

// concreteShape replaces dynamic dimensions (batch usually) with 1.
func concreteShape(dims ort.Shape) ort.Shape {
	shape := dims.Clone()
	for i, d := range shape {
		if d <= 0 {
			shape[i] = 1
		}
	}
	return shape
}

// resolveSharedLibraryPath probes common names/locations for the onnxruntime library.
func resolveSharedLibraryPath(modelDir string) string {
	if env := strings.TrimSpace(os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH")); env != "" {
		return env
	}

	names := []string{
		"libonnxruntime.so",
		"onnxruntime.so",
		"libonnxruntime.dylib",
		"onnxruntime.dll",
	}
	dirs := []string{
		modelDir,
		filepath.Join(modelDir, "lib"),
		".",
		"/usr/local/lib",
		"/usr/lib",
		"/opt/homebrew/lib",
	}

	for _, dir := range dirs {
		for _, name := range names {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}
