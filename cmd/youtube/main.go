package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"lyrsync/internal/youtube"
)

func main() {
	var (
		url        = flag.String("url", "", "YouTube video URL")
		lang       = flag.String("lang", "en", "Caption language code (default: en)")
		format     = flag.String("format", "text", "Caption output format: text, json")
		outputFile = flag.String("o", "", "Output file (default: stdout)")
		showInfo   = flag.Bool("info", false, "Show video info only")
		listLangs  = flag.Bool("list", false, "List available captions")
		audio      = flag.Bool("audio", false, "Download the audio track")
		audioType  = flag.String("audio-format", "best", "Audio format preference: best, mp4, webm")
		formatsCmd = flag.Bool("formats", false, "List audio formats without downloading")
		outputDir  = flag.String("dir", ".", "Download directory for -audio")
		verbose    = flag.Bool("v", false, "Verbose output")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -url https://www.youtube.com/watch?v=xxx -info\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -url https://www.youtube.com/watch?v=xxx -list\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -url https://www.youtube.com/watch?v=xxx -lang en -o lyrics.txt\n", os.Args[0])
			fmt.Fprintf(os.Stderr, "  %s -url https://www.youtube.com/watch?v=xxx -formats\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -url https://www.youtube.com/watch?v=xxx -audio -dir downloads\n", os.Args[0])
	}

	flag.Parse()

	// Validate input
	if *url == "" {
		fmt.Fprintf(os.Stderr, "Error: YouTube URL is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	// Create client
	client := youtube.NewClient()

	if *verbose {
		fmt.Fprintf(os.Stderr, "Fetching video: %s\n", *url)
	}

	// Get video info
	video, err := client.GetVideo(*url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to get video: %v\n", err)
		os.Exit(1)
	}

	// Show info only
	if *showInfo {
		printVideoInfo(video)
		return
	}

	// List available captions
	if *listLangs {
		printVideoInfo(video)
		printCaptionList(video)
		return
	}

	// List audio formats
	if *formatsCmd {
		printAudioFormats(client, *url)
		return
	}

	// Download audio
	if *audio {
		downloadAudio(client, *url, *audioType, *outputDir, video.Title)
		return
	}

	// Validate format
	if *format != "text" && *format != "json" {
		fmt.Fprintf(os.Stderr, "Error: Invalid format '%s'. Must be: text or json\n", *format)
		os.Exit(1)
	}

	// Check if captions are available
	if !video.HasCaptions() {
		fmt.Fprintf(os.Stderr, "Error: No captions available for this video\n")
		os.Exit(1)
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "Fetching captions (lang: %s)...\n", *lang)
	}

	// Fetch captions
	result, err := client.FetchCaption(video, *lang)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to fetch captions: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "Fetched %d caption entries\n", len(result.Entries))
	}

	// Format output
	var output string
	if *format == "json" {
		output, err = result.FormatAsJSON()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to format JSON: %v\n", err)
			os.Exit(1)
		}
	} else {
		output = result.FormatAsText()
	}

	// Write output
	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(output), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to write output file: %v\n", err)
			os.Exit(1)
		}
		if *verbose {
			fmt.Fprintf(os.Stderr, "Output written to: %s\n", *outputFile)
		}
	} else {
		fmt.Println(output)
	}
}

func downloadAudio(client *youtube.Client, url, formatType, dir, title string) {
	lastPercent := -1
	path, err := client.DownloadAudioWithProgress(context.Background(), url, &youtube.DownloadAudioOptions{
		Format:    formatType,
		OutputDir: dir,
	}, func(current, total int64) {
		if total <= 0 {
			return
		}
		percent := int(100 * current / total)
		if percent != lastPercent {
			fmt.Fprintf(os.Stderr, "\rDownloading %s... %d%%", title, percent)
			lastPercent = percent
		}
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to download audio: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(path)
}

func printVideoInfo(video *youtube.VideoInfo) {
	fmt.Println("=== Video Info ===")
	fmt.Printf("Title:    %s\n", video.Title)
	fmt.Printf("Author:   %s\n", video.Author)
	fmt.Printf("Duration: %s\n", video.Duration)
	fmt.Printf("ID:       %s\n", video.ID)
	if video.Description != "" {
		// Descriptions often carry the full lyrics, worth surfacing
		fmt.Printf("\n--- Description ---\n%s\n", video.Description)
	}
}

func printAudioFormats(client *youtube.Client, url string) {
	formats, err := client.GetAudioFormats(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to get audio formats: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("=== Audio Formats ===")
	if len(formats) == 0 {
		fmt.Println("No audio-only formats available")
		return
	}
	for i, f := range formats {
		size := ""
		if f.ContentLength > 0 {
			size = fmt.Sprintf(", %.1f MB", float64(f.ContentLength)/(1024*1024))
		}
		fmt.Printf("%d. itag=%d %s %d kbps%s\n", i+1, f.ItagNo, f.MimeType, f.Bitrate/1000, size)
	}
}

func printCaptionList(video *youtube.VideoInfo) {
	fmt.Println("\n=== Available Captions ===")
	if len(video.Captions) == 0 {
		fmt.Println("No captions available")
		return
	}
	for i, caption := range video.Captions {
		kind := ""
		if caption.AutoGenerated {
			kind = " [auto]"
		}
		fmt.Printf("%d. %s (%s)%s\n", i+1, caption.LanguageCode, caption.Name, kind)
	}
}
