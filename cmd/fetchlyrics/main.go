package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"lyrsync/internal/lyricfetch"
)

func main() {
	var (
		url        = flag.String("url", "", "Lyrics page URL")
		outputFile = flag.String("o", "", "Output file (default: stdout)")
		raw        = flag.Bool("raw", false, "Print the page as Markdown without lyrics extraction")
		jsonOut    = flag.Bool("json", false, "Output as JSON with the final URL and fetch duration")
		stealth    = flag.Bool("stealth", true, "Enable stealth mode (bot detection evasion)")
		noBlock    = flag.Bool("no-block", false, "Load ads and images instead of blocking them")
		proxy      = flag.String("proxy", "", "Proxy address")
		browser    = flag.String("browser", "", "Browser executable path")
		selector   = flag.String("selector", "", "Wait for selector before reading the page")
		waitTime   = flag.Int("wait", 0, "Selector wait timeout in milliseconds")
		timeout    = flag.Int("timeout", 60, "Overall timeout in seconds")
		verbose    = flag.Bool("v", false, "Verbose output")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -url https://example.com/lyrics/song\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -url https://example.com/lyrics/song -o lyrics.txt\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -url https://example.com/lyrics/song -raw\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s -url https://example.com/lyrics/song -selector \".lyrics\"\n", os.Args[0])
	}

	flag.Parse()

	if *url == "" {
		fmt.Fprintf(os.Stderr, "Error: URL is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "Fetching: %s\n", *url)
	}

	client, err := lyricfetch.NewClient(&lyricfetch.Options{
		Stealth:     *stealth,
		Proxy:       *proxy,
		BrowserPath: *browser,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to create client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	fetchOpts := &lyricfetch.FetchOptions{
		Selector:   *selector,
		NoBlocking: *noBlock,
	}
	if *waitTime > 0 {
		fetchOpts.WaitTime = time.Duration(*waitTime) * time.Millisecond
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(*timeout)*time.Second)
	defer cancel()

	var result *lyricfetch.Result
	if *raw {
		result, err = client.FetchMarkdown(ctx, *url, fetchOpts)
	} else {
		result, err = client.FetchLyrics(ctx, *url, fetchOpts)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to fetch: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "Fetched in %.2f seconds\n", result.Duration.Seconds())
		fmt.Fprintf(os.Stderr, "Final URL: %s\n", result.URL)
		fmt.Fprintf(os.Stderr, "Extracted %d lines\n", result.LineCount())
	}

	// Format output
	var output string
	if *jsonOut {
		output, err = result.FormatAsJSON()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: Failed to format JSON: %v\n", err)
			os.Exit(1)
		}
	} else {
		output = result.FormatAsText()
	}

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
