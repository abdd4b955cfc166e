// Package onnx runs the duration, intonation and decoder models with ONNX
// Runtime. It implements engine.Core.
package onnx

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/nadzzz/koe/internal/config"
	"github.com/nadzzz/koe/internal/engine"
)

// Shortest phoneme the duration model may report, in seconds.
const minPhonemeLength = 0.01

// Tensor names of the exported VOICEVOX models.
var (
	durationInputs    = []string{"phoneme_list", "speaker_id"}
	durationOutputs   = []string{"phoneme_length"}
	intonationInputs  = []string{"length", "vowel_phoneme_list", "consonant_phoneme_list", "start_accent_list", "end_accent_list", "start_accent_phrase_list", "end_accent_phrase_list", "speaker_id"}
	intonationOutputs = []string{"f0_list"}
	decodeInputs      = []string{"f0", "phoneme", "speaker_id"}
	decodeOutputs     = []string{"wave"}
)

var (
	envOnce sync.Once
	envErr  error
)

// initEnvironment loads the shared library once per process.
func initEnvironment(libraryPath string) error {
	envOnce.Do(func() {
		if libraryPath != "" {
			ort.SetSharedLibraryPath(libraryPath)
		}
		envErr = ort.InitializeEnvironment()
	})
	return envErr
}

// Core holds one session per model. Runs are serialized.
type Core struct {
	mu         sync.Mutex
	duration   *ort.DynamicAdvancedSession
	intonation *ort.DynamicAdvancedSession
	decoder    *ort.DynamicAdvancedSession
}

var _ engine.Core = (*Core)(nil)

// Open initializes ONNX Runtime and loads the three models.
func Open(cfg config.ONNXConfig) (*Core, error) {
	if err := initEnvironment(cfg.LibraryPath); err != nil {
		return nil, fmt.Errorf("initializing onnxruntime: %w", err)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("creating session options: %w", err)
	}
	defer opts.Destroy()
	if cfg.IntraOpThreads > 0 {
		if err := opts.SetIntraOpNumThreads(cfg.IntraOpThreads); err != nil {
			return nil, fmt.Errorf("setting intra-op threads: %w", err)
		}
	}

	c := &Core{}
	load := func(path string, in, out []string) (*ort.DynamicAdvancedSession, error) {
		s, err := ort.NewDynamicAdvancedSession(path, in, out, opts)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		return s, nil
	}
	if c.duration, err = load(cfg.DurationModel, durationInputs, durationOutputs); err != nil {
		return nil, err
	}
	if c.intonation, err = load(cfg.IntonationModel, intonationInputs, intonationOutputs); err != nil {
		return nil, err
	}
	if c.decoder, err = load(cfg.DecoderModel, decodeInputs, decodeOutputs); err != nil {
		return nil, err
	}

	slog.Info("onnx models loaded",
		"duration", cfg.DurationModel,
		"intonation", cfg.IntonationModel,
		"decoder", cfg.DecoderModel,
	)
	return c, nil
}

// PredictDuration implements engine.Core.
func (c *Core) PredictDuration(phonemeIDs []int64, speaker int64) ([]float32, error) {
	out, err := c.run(c.duration, durationTensors(phonemeIDs, speaker))
	if err != nil {
		return nil, err
	}
	return clampLengths(out), nil
}

// PredictIntonation implements engine.Core.
func (c *Core) PredictIntonation(in engine.IntonationInput, speaker int64) ([]float32, error) {
	return c.run(c.intonation, intonationTensors(in, speaker))
}

// Decode implements engine.Core.
func (c *Core) Decode(frames, phonemeSize int, f0, phonemes []float32, speaker int64) ([]float32, error) {
	if len(f0) != frames || len(phonemes) != frames*phonemeSize {
		return nil, fmt.Errorf("decode: %d frames with %d f0 values and %d phoneme values", frames, len(f0), len(phonemes))
	}
	return c.run(c.decoder, decodeTensors(frames, phonemeSize, f0, phonemes, speaker))
}

// Close destroys every loaded session.
func (c *Core) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	for _, s := range []**ort.DynamicAdvancedSession{&c.duration, &c.intonation, &c.decoder} {
		if *s == nil {
			continue
		}
		errs = append(errs, (*s).Destroy())
		*s = nil
	}
	return errors.Join(errs...)
}

func (c *Core) run(s *ort.DynamicAdvancedSession, specs []tensorSpec) ([]float32, error) {
	if s == nil {
		return nil, errors.New("session is closed")
	}

	inputs := make([]ort.Value, 0, len(specs))
	defer func() {
		for _, v := range inputs {
			v.Destroy()
		}
	}()
	for _, spec := range specs {
		v, err := spec.tensor()
		if err != nil {
			return nil, fmt.Errorf("creating tensor %s: %w", spec.name, err)
		}
		inputs = append(inputs, v)
	}

	outputs := []ort.Value{nil}
	c.mu.Lock()
	err := s.Run(inputs, outputs)
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	defer outputs[0].Destroy()

	t, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output type %T", outputs[0])
	}
	return append([]float32(nil), t.GetData()...), nil
}

func clampLengths(lengths []float32) []float32 {
	for i, l := range lengths {
		lengths[i] = max(l, minPhonemeLength)
	}
	return lengths
}
