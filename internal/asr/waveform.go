package asr

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// Waveform holds peak amplitudes for rendering an audio overview
type Waveform struct {
	SamplesPerSec float64   `json:"samples_per_sec"`
	Duration      float64   `json:"duration"`
	Peaks         []float64 `json:"peaks"`
}

// wavFormat is the subset of the fmt chunk the peak scan needs, plus the
// size of the data chunk that follows it.
type wavFormat struct {
	channels   int
	sampleRate int
	bits       int
	dataSize   int64
}

// ComputePeaks reads a WAV file and computes peak amplitudes normalized to
// 0-1, bucketed at the given resolution
func ComputePeaks(wavPath string, samplesPerSec float64) (*Waveform, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	format, err := scanWavHeader(f)
	if err != nil {
		return nil, err
	}
	if format.bits != 16 {
		return nil, fmt.Errorf("only 16-bit WAV files are supported, got %d-bit", format.bits)
	}

	bytesPerFrame := (format.bits / 8) * format.channels
	totalFrames := int(format.dataSize) / bytesPerFrame
	duration := float64(totalFrames) / float64(format.sampleRate)

	numPeaks := int(duration * samplesPerSec)
	if numPeaks <= 0 {
		numPeaks = 1
	}
	framesPerPeak := totalFrames / numPeaks
	if framesPerPeak <= 0 {
		framesPerPeak = 1
	}

	// One bucket per peak, max |sample| of the first channel in each bucket
	peaks := make([]float64, numPeaks)
	buf := make([]byte, framesPerPeak*bytesPerFrame)
	for i := range peaks {
		n, err := f.Read(buf)
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to read audio data: %w", err)
		}
		if n == 0 {
			break
		}

		var peak float64
		for off := 0; off+1 < n; off += bytesPerFrame {
			sample := int16(binary.LittleEndian.Uint16(buf[off : off+2]))
			if v := math.Abs(float64(sample)); v > peak {
				peak = v
			}
		}
		peaks[i] = peak / float64(1<<15)
	}

	return &Waveform{
		SamplesPerSec: samplesPerSec,
		Duration:      duration,
		Peaks:         peaks,
	}, nil
}

// scanWavHeader walks the RIFF chunk list up to the data chunk, leaving the
// reader positioned at the first audio frame.
func scanWavHeader(f *os.File) (wavFormat, error) {
	var format wavFormat

	hdr := make([]byte, 12)
	if _, err := io.ReadFull(f, hdr); err != nil {
		return format, fmt.Errorf("failed to read RIFF header: %w", err)
	}
	if string(hdr[0:4]) != "RIFF" || string(hdr[8:12]) != "WAVE" {
		return format, fmt.Errorf("not a valid WAV file")
	}

	var foundFmt, foundData bool
	for !foundData {
		chunk := make([]byte, 8)
		if _, err := io.ReadFull(f, chunk); err != nil {
			if err == io.EOF {
				break
			}
			return format, fmt.Errorf("failed to read chunk header: %w", err)
		}
		chunkID := string(chunk[0:4])
		chunkSize := int64(binary.LittleEndian.Uint32(chunk[4:8]))

		switch chunkID {
		case "fmt ":
			data := make([]byte, chunkSize)
			if _, err := io.ReadFull(f, data); err != nil {
				return format, fmt.Errorf("failed to read fmt chunk: %w", err)
			}
			if len(data) >= 16 {
				format.channels = int(binary.LittleEndian.Uint16(data[2:4]))
				format.sampleRate = int(binary.LittleEndian.Uint32(data[4:8]))
				format.bits = int(binary.LittleEndian.Uint16(data[14:16]))
			}
			foundFmt = true

		case "data":
			format.dataSize = chunkSize
			foundData = true

		default:
			// LIST, INFO and other metadata chunks
			if _, err := f.Seek(chunkSize, io.SeekCurrent); err != nil {
				return format, fmt.Errorf("failed to skip chunk %s: %w", chunkID, err)
			}
		}

		// chunks are padded to an even byte boundary
		if chunkSize%2 != 0 && chunkID != "data" {
			f.Seek(1, io.SeekCurrent)
		}
	}

	if !foundFmt {
		return format, fmt.Errorf("fmt chunk not found")
	}
	if !foundData {
		return format, fmt.Errorf("data chunk not found")
	}
	return format, nil
}
