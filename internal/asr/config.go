package asr

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the configuration for the ASR recognizer
type Config struct {
	ModelPath   string // Base directory for the model
	EncoderPath string // Path to encoder.onnx or encoder.int8.onnx
	DecoderPath string // Path to decoder.onnx or decoder.int8.onnx
	JoinerPath  string // Path to joiner.onnx or joiner.int8.onnx
	TokensPath  string // Path to tokens.txt
	NumThreads  int    // Number of threads for inference
	SampleRate  int    // Audio sample rate (typically 16000)
}

// DefaultGigaSpeechConfig returns the default configuration for the English
// GigaSpeech zipformer model, assuming it is downloaded to the models
// directory
func DefaultGigaSpeechConfig() *Config {
	modelDir := "models/sherpa-onnx-zipformer-gigaspeech-2023-12-12"
	return &Config{
		ModelPath:   modelDir,
		EncoderPath: filepath.Join(modelDir, "encoder-epoch-30-avg-1.int8.onnx"),
		DecoderPath: filepath.Join(modelDir, "decoder-epoch-30-avg-1.onnx"),
		JoinerPath:  filepath.Join(modelDir, "joiner-epoch-30-avg-1.int8.onnx"),
		TokensPath:  filepath.Join(modelDir, "tokens.txt"),
		NumThreads:  2,
		SampleRate:  16000,
	}
}

// NewConfig builds a configuration by locating the transducer model files
// under modelDir. Release archives name the files by training epoch, so
// the known epoch variants are tried alongside the bare names.
func NewConfig(modelDir string) (*Config, error) {
	config := &Config{
		ModelPath:  modelDir,
		NumThreads: 2,
		SampleRate: 16000,
	}

	var err error
	if config.EncoderPath, err = locateModel(modelDir, "encoder", true); err != nil {
		return nil, err
	}
	// decoders are not quantized in the published archives
	if config.DecoderPath, err = locateModel(modelDir, "decoder", false); err != nil {
		return nil, err
	}
	if config.JoinerPath, err = locateModel(modelDir, "joiner", true); err != nil {
		return nil, err
	}

	tokensPath := filepath.Join(modelDir, "tokens.txt")
	if _, statErr := os.Stat(tokensPath); statErr != nil {
		return nil, fmt.Errorf("tokens.txt not found in %s", modelDir)
	}
	config.TokensPath = tokensPath

	return config, nil
}

// Validate checks if all required model files exist
func (c *Config) Validate() error {
	files := map[string]string{
		"encoder": c.EncoderPath,
		"decoder": c.DecoderPath,
		"joiner":  c.JoinerPath,
		"tokens":  c.TokensPath,
	}

	for name, path := range files {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("%s file not found: %s", name, path)
		}
	}

	return nil
}

// locateModel returns the first existing file for a model role, preferring
// int8 quantized variants when the role ships them.
func locateModel(dir, role string, quantized bool) (string, error) {
	stems := []string{
		role + "-epoch-30-avg-1",
		role + "-epoch-99-avg-1",
		role,
	}

	var candidates []string
	if quantized {
		for _, stem := range stems {
			candidates = append(candidates, stem+".int8.onnx")
		}
	}
	for _, stem := range stems {
		candidates = append(candidates, stem+".onnx")
	}

	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%s model not found in %s", role, dir)
}
