package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"lyrsync/internal/asr"
)

func main() {
	// Define flags
	var (
		inputFile    = flag.String("i", "", "Input audio file")
		outputFile   = flag.String("o", "", "Output file (default: stdout)")
		format       = flag.String("format", "json", "Output format: json, text")
		modelDir     = flag.String("model", "models/sherpa-onnx-zipformer-gigaspeech-2023-12-12", "Model directory path")
		numThreads   = flag.Int("threads", 2, "Number of threads for inference")
		durationOnly = flag.Bool("duration-only", false, "Print the audio duration in seconds and exit")
		verbose      = flag.Bool("v", false, "Verbose output")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -i audio.wav\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -i song.mp3 -o transcript.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -i song.mp3 -format text\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -i song.mp3 -duration-only\n", os.Args[0])
	}

	flag.Parse()

	// Validate input
	if *inputFile == "" {
		fmt.Fprintf(os.Stderr, "Error: Input file is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	// Check if input file exists
	if _, err := os.Stat(*inputFile); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: Input file not found: %s\n", *inputFile)
		os.Exit(1)
	}

	if *durationOnly {
		duration, err := asr.ProbeDuration(*inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to probe duration: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%.3f\n", duration)
		return
	}

	// Validate format
	if *format != "json" && *format != "text" {
		fmt.Fprintf(os.Stderr, "Error: Invalid format '%s'. Must be: json or text\n", *format)
		os.Exit(1)
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "Loading model from: %s\n", *modelDir)
	}

	// Create configuration
	config, err := asr.NewConfig(*modelDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to load model config: %v\n", err)
		fmt.Fprintf(os.Stderr, "\nHint: Download the model first:\n")
		fmt.Fprintf(os.Stderr, "  curl -SL -O https://github.com/k2-fsa/sherpa-onnx/releases/download/asr-models/sherpa-onnx-zipformer-gigaspeech-2023-12-12.tar.bz2\n")
		fmt.Fprintf(os.Stderr, "  tar xvf sherpa-onnx-zipformer-gigaspeech-2023-12-12.tar.bz2 -C models/\n")
		os.Exit(1)
	}
	config.NumThreads = *numThreads

	ctx := context.Background()

	// Convert to 16kHz mono WAV when the input needs it
	wavPath := *inputFile
	needsConversion, err := asr.NeedsConversion(*inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to probe input: %v\n", err)
		os.Exit(1)
	}
	if needsConversion {
		if *verbose {
			fmt.Fprintf(os.Stderr, "Converting to 16kHz mono WAV...\n")
		}
		wavPath, err = asr.ConvertToWavTemp(ctx, *inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to convert audio: %v\n", err)
			os.Exit(1)
		}
		defer os.Remove(wavPath)
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "Creating recognizer...\n")
	}

	// Create recognizer
	recognizer, err := asr.NewRecognizer(config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to create recognizer: %v\n", err)
		os.Exit(1)
	}
	defer recognizer.Close()

	if *verbose {
		fmt.Fprintf(os.Stderr, "Transcribing: %s\n", *inputFile)
	}

	// Transcribe
	transcript, err := recognizer.Transcribe(ctx, wavPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Transcription failed: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "Transcribed %d words from %.2f seconds of audio\n", len(transcript.Words), transcript.Duration)
	}

	// Format output
	var output []byte
	switch *format {
	case "json":
		output, err = transcript.Encode()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to format JSON: %v\n", err)
			os.Exit(1)
		}
	default: // text
		output = []byte(transcript.Text() + "\n")
	}

	// Write output
	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, output, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to write output file: %v\n", err)
			os.Exit(1)
		}
		if *verbose {
			fmt.Fprintf(os.Stderr, "Output written to: %s\n", *outputFile)
		}
	} else {
		fmt.Print(string(output))
		if *format == "json" {
			fmt.Println()
		}
	}
}
