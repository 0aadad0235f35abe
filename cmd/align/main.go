package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lyrsync/internal/align"
	"lyrsync/internal/asr"
)

func main() {
	// Define flags
	var (
		transcriptFile = flag.String("transcript", "", "Transcript JSON file (word timestamps)")
		lyricsFile     = flag.String("lyrics", "", "Lyrics text file")
		title          = flag.String("title", "", "Song title stamped into the document")
		duration       = flag.Float64("duration", 0, "Audio duration in seconds (default: from transcript)")
		outputFile     = flag.String("o", "", "Output file (default: stdout)")
		format         = flag.String("format", "json", "Output format: json, srt, lrc")
		verbose        = flag.Bool("v", false, "Print alignment statistics to stderr")

		skipPenalty     = flag.Float64("skip-penalty", 0, "Cost of leaving a reference word unmatched (default: engine default)")
		deletePenalty   = flag.Float64("delete-penalty", 0, "Cost of consuming a transcribed word as noise (default: engine default)")
		minSimilarity   = flag.Float64("min-similarity", 0, "Similarity floor for accepting a match (default: engine default)")
		spread          = flag.String("spread", "", "Gap distribution: proportional or uniform (default: proportional)")
		pauseWeight     = flag.Float64("pause-weight", 0, "Pause share relative to an average word (default: engine default)")
		maxWordDuration = flag.Float64("max-word-duration", -1, "Cap on interpolated word length in seconds, 0 disables (default: engine default)")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -transcript words.json -lyrics lyrics.txt\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -transcript words.json -lyrics lyrics.txt -title \"Hey Jude\" -o timing.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -transcript words.json -lyrics lyrics.txt -format srt -o subtitles.srt\n", os.Args[0])
	}

	flag.Parse()

	// Validate input
	if *transcriptFile == "" || *lyricsFile == "" {
		fmt.Fprintf(os.Stderr, "Error: -transcript and -lyrics are required\n\n")
		flag.Usage()
		os.Exit(1)
	}
	if *format != "json" && *format != "srt" && *format != "lrc" {
		fmt.Fprintf(os.Stderr, "Error: Invalid format '%s'. Must be: json, srt or lrc\n", *format)
		os.Exit(1)
	}

	transcriptData, err := os.ReadFile(*transcriptFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to read transcript: %v\n", err)
		os.Exit(1)
	}
	transcript, err := asr.ParseTranscript(transcriptData)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to parse transcript: %v\n", err)
		os.Exit(1)
	}

	lyricsData, err := os.ReadFile(*lyricsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to read lyrics: %v\n", err)
		os.Exit(1)
	}

	// Build engine options from the overriding flags
	opts := align.DefaultOptions()
	if *skipPenalty > 0 {
		opts.SkipPenalty = *skipPenalty
	}
	if *deletePenalty > 0 {
		opts.DeletePenalty = *deletePenalty
	}
	if *minSimilarity > 0 {
		opts.MinSimilarity = *minSimilarity
	}
	switch *spread {
	case "":
	case "proportional":
		opts.Spread = align.SpreadProportional
	case "uniform":
		opts.Spread = align.SpreadUniform
	default:
		fmt.Fprintf(os.Stderr, "Error: Invalid spread '%s'. Must be: proportional or uniform\n", *spread)
		os.Exit(1)
	}
	if *pauseWeight > 0 {
		opts.PauseWeight = *pauseWeight
	}
	if *maxWordDuration >= 0 {
		opts.MaxWordDuration = *maxWordDuration
	}

	songDuration := *duration
	if songDuration <= 0 {
		songDuration = transcript.Duration
		if end := transcript.EndTime(); end > songDuration {
			songDuration = end
		}
	}

	songTitle := *title
	if songTitle == "" {
		base := filepath.Base(*lyricsFile)
		songTitle = strings.TrimSuffix(base, filepath.Ext(base))
	}

	result, err := align.Align(transcript.Words, string(lyricsData), songTitle, songDuration, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Alignment failed: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		stats := result.Stats
		fmt.Fprintf(os.Stderr, "Aligned %d/%d words (mean confidence %.2f)\n",
			stats.MatchedWords, stats.TotalWords, stats.MeanConfidence)
		if stats.Fallback {
			fmt.Fprintf(os.Stderr, "Warning: no words matched, timestamps are spread uniformly\n")
		}
	}

	// Format output
	var output []byte
	switch *format {
	case "srt":
		output = []byte(result.Document.FormatSRT())
	case "lrc":
		output = []byte(result.Document.FormatLRC())
	default: // json
		output, err = result.Document.Encode()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to format JSON: %v\n", err)
			os.Exit(1)
		}
		output = append(output, '\n')
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
	}
}
