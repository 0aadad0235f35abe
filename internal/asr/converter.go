package asr

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ConvertToWav transcodes an audio file to the 16kHz mono WAV the
// recognizer expects. Requires ffmpeg on PATH.
func ConvertToWav(ctx context.Context, inputPath, outputPath string) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg not found: please install ffmpeg to convert audio files")
	}
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", inputPath)
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", inputPath,
		"-ar", "16000",
		"-ac", "1",
		"-f", "wav",
		"-y",
		outputPath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg conversion failed: %w\nOutput: %s", err, string(output))
	}
	return nil
}

// ConvertToWavTemp converts into the system temp directory and returns
// the resulting path. The caller removes the file when done.
func ConvertToWavTemp(ctx context.Context, inputPath string) (string, error) {
	baseName := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputPath := filepath.Join(os.TempDir(), baseName+"_converted.wav")
	if err := ConvertToWav(ctx, inputPath, outputPath); err != nil {
		return "", err
	}
	return outputPath, nil
}

// NeedsConversion reports whether the file must be transcoded before
// recognition. A WAV that is already 16kHz mono passes through as is;
// when ffprobe is unavailable or fails, conversion is assumed.
func NeedsConversion(inputPath string) (bool, error) {
	if strings.ToLower(filepath.Ext(inputPath)) != ".wav" {
		return true, nil
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return true, nil
	}

	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=sample_rate,channels",
		"-of", "csv=p=0",
		inputPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return true, nil
	}

	// ffprobe prints "sample_rate,channels"
	parts := strings.Split(strings.TrimSpace(string(output)), ",")
	if len(parts) != 2 {
		return true, nil
	}
	return !(parts[0] == "16000" && parts[1] == "1"), nil
}

// ProbeDuration returns the duration of an audio file in seconds,
// read from the container metadata via ffprobe.
func ProbeDuration(inputPath string) (float64, error) {
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return 0, fmt.Errorf("ffprobe not found: please install ffmpeg")
	}

	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		inputPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to get audio duration: %w", err)
	}

	var duration float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(output)), "%f", &duration); err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}
	return duration, nil
}
