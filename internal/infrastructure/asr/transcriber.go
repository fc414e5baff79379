package asr

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	sherpa "github.com/k2-fsa/sherpa-onnx-go/sherpa_onnx"

	"github.com/stardeck/logbook/internal/infrastructure/logging"
)

type Config struct {
	ModelDir   string
	NumThreads int
	SampleRate int
}

// Transcriber wraps a sherpa-onnx offline recognizer. Audio arrives as WAV
// bytes, is decoded to float32 samples and fed through a one-shot offline
// stream. Streams are cheap, the recognizer is the expensive shared piece;
// decode calls are serialized because the underlying C object is not
// thread safe.
type Transcriber struct {
	mu         sync.Mutex
	recognizer *sherpa.OfflineRecognizer
	logger     logging.Logger
	cfg        Config
}

func NewTranscriber(cfg Config, logger logging.Logger) (*Transcriber, error) {
	if cfg.ModelDir == "" {
		return nil, fmt.Errorf("asr model directory is required")
	}
	if cfg.NumThreads <= 0 {
		cfg.NumThreads = 2
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}

	sherpaConfig := sherpa.OfflineRecognizerConfig{
		FeatConfig: sherpa.FeatureConfig{
			SampleRate: cfg.SampleRate,
			FeatureDim: 80,
		},
		ModelConfig: sherpa.OfflineModelConfig{
			Transducer: sherpa.OfflineTransducerModelConfig{
				Encoder: filepath.Join(cfg.ModelDir, "encoder.onnx"),
				Decoder: filepath.Join(cfg.ModelDir, "decoder.onnx"),
				Joiner:  filepath.Join(cfg.ModelDir, "joiner.onnx"),
			},
			Tokens:     filepath.Join(cfg.ModelDir, "tokens.txt"),
			NumThreads: cfg.NumThreads,
			Debug:      0,
		},
	}

	recognizer := sherpa.NewOfflineRecognizer(&sherpaConfig)
	if recognizer == nil {
		return nil, fmt.Errorf("failed to create offline recognizer from %s", cfg.ModelDir)
	}

	logger.Info(logging.General, logging.Startup, "asr recognizer loaded", map[logging.ExtraKey]any{
		logging.Path: cfg.ModelDir,
	})

	return &Transcriber{
		recognizer: recognizer,
		logger:     logger,
		cfg:        cfg,
	}, nil
}

func (t *Transcriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	samples, sampleRate, err := decodeWav(audio)
	if err != nil {
		return "", fmt.Errorf("decode audio: %w", err)
	}
	if len(samples) == 0 {
		return "", fmt.Errorf("audio contains no samples")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	stream := sherpa.NewOfflineStream(t.recognizer)
	defer sherpa.DeleteOfflineStream(stream)

	stream.AcceptWaveform(sampleRate, samples)
	t.recognizer.Decode(stream)

	result := stream.GetResult()
	return strings.TrimSpace(result.Text), nil
}

func (t *Transcriber) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.recognizer != nil {
		sherpa.DeleteOfflineRecognizer(t.recognizer)
		t.recognizer = nil
	}
	return nil
}
