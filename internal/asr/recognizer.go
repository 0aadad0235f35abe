package asr

import (
	"context"
	"fmt"
	"os"
	"strings"

	sherpa "github.com/k2-fsa/sherpa-onnx-go/sherpa_onnx"
)

// wordBoundary marks the start of a new word in sentencepiece token output
const wordBoundary = "▁"

// Transcriber produces a word-level transcript from a 16kHz mono WAV file
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath string) (*Transcript, error)
}

// Recognizer handles speech recognition using Sherpa-ONNX
type Recognizer struct {
	config     *Config
	recognizer *sherpa.OfflineRecognizer
}

// NewRecognizer creates a new ASR recognizer with the given configuration
func NewRecognizer(config *Config) (*Recognizer, error) {
	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Create sherpa-onnx configuration
	sherpaConfig := sherpa.OfflineRecognizerConfig{
		FeatConfig: sherpa.FeatureConfig{
			SampleRate: config.SampleRate,
			FeatureDim: 80,
		},
		ModelConfig: sherpa.OfflineModelConfig{
			Transducer: sherpa.OfflineTransducerModelConfig{
				Encoder: config.EncoderPath,
				Decoder: config.DecoderPath,
				Joiner:  config.JoinerPath,
			},
			Tokens:     config.TokensPath,
			NumThreads: config.NumThreads,
			Debug:      0,
		},
	}

	// Create recognizer
	recognizer := sherpa.NewOfflineRecognizer(&sherpaConfig)
	if recognizer == nil {
		return nil, fmt.Errorf("failed to create offline recognizer")
	}

	return &Recognizer{
		config:     config,
		recognizer: recognizer,
	}, nil
}

// Transcribe recognizes speech in a WAV file and returns a word-level
// transcript with timestamps
func (r *Recognizer) Transcribe(ctx context.Context, wavPath string) (*Transcript, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Read audio file
	samples, err := r.readWavFile(wavPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}

	// Create stream
	stream := sherpa.NewOfflineStream(r.recognizer)
	defer sherpa.DeleteOfflineStream(stream)

	// Accept waveform
	stream.AcceptWaveform(r.config.SampleRate, samples)

	// Decode
	r.recognizer.Decode(stream)

	// Get result
	result := stream.GetResult()
	if result == nil {
		return nil, fmt.Errorf("failed to get recognition result")
	}

	return &Transcript{
		Words:    tokensToWords(result.Tokens, result.Timestamps, result.Durations),
		Duration: float64(len(samples)) / float64(r.config.SampleRate),
	}, nil
}

// Close releases resources used by the recognizer
func (r *Recognizer) Close() error {
	if r.recognizer != nil {
		sherpa.DeleteOfflineRecognizer(r.recognizer)
		r.recognizer = nil
	}
	return nil
}

// readWavFile reads a WAV file and returns the audio samples
func (r *Recognizer) readWavFile(path string) ([]float32, error) {
	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}

	// Use sherpa-onnx's built-in WAV reader
	wave := sherpa.ReadWave(path)
	if wave == nil || len(wave.Samples) == 0 {
		return nil, fmt.Errorf("failed to read WAV file or file is empty")
	}

	return wave.Samples, nil
}

// tokensToWords groups sentencepiece tokens into whole words with timing.
// A token starting with the boundary marker begins a new word; continuation
// tokens extend the current one. Timestamps and durations are parallel to
// tokens and may be shorter, in which case missing values stay zero.
func tokensToWords(tokens []string, timestamps, durations []float32) []Word {
	var words []Word

	for i, token := range tokens {
		if token == "" {
			continue
		}

		var start float64
		if i < len(timestamps) {
			start = float64(timestamps[i])
		}
		end := start
		if i < len(durations) {
			end = start + float64(durations[i])
		}

		boundary := strings.HasPrefix(token, wordBoundary)
		text := strings.TrimPrefix(token, wordBoundary)
		if text == "" {
			// Bare separator token carries no text
			continue
		}

		if boundary || len(words) == 0 {
			words = append(words, Word{
				Text:       text,
				Start:      start,
				End:        end,
				Confidence: 1,
			})
			continue
		}

		last := &words[len(words)-1]
		last.Text += text
		if end > last.End {
			last.End = end
		}
	}

	return words
}
