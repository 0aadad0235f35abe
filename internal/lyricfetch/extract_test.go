package lyricfetch

import "testing"

func TestExtractLyrics(t *testing.T) {
	markdown := "# Song Title Lyrics\n" +
		"\n" +
		"[Artist Name](https://example.com/artist)\n" +
		"\n" +
		"---\n" +
		"\n" +
		"Hello world\n" +
		"This is the song\n" +
		"\n" +
		"***\n" +
		"\n" +
		"Second stanza here\n" +
		"With another line\n" +
		"\n" +
		"![ad banner](https://ads.example.com/x.png)\n" +
		"\n" +
		"Copyright notice\n"

	want := "Song Title Lyrics\n" +
		"\n" +
		"Artist Name\n" +
		"\n" +
		"Hello world\n" +
		"This is the song\n" +
		"\n" +
		"Second stanza here\n" +
		"With another line\n" +
		"\n" +
		"Copyright notice"

	if got := extractLyrics(markdown); got != want {
		t.Errorf("extractLyrics() =\n%q\nwant\n%q", got, want)
	}
}

func TestExtractLyricsEmphasis(t *testing.T) {
	got := extractLyrics("*Chorus*\n**Sing it loud**\n")
	want := "Chorus\nSing it loud"
	if got != want {
		t.Errorf("extractLyrics() = %q, want %q", got, want)
	}
}

func TestExtractLyricsCollapsesBlankRuns(t *testing.T) {
	got := extractLyrics("\n\nFirst line\n\n\n\nSecond line\n\n\n")
	want := "First line\n\nSecond line"
	if got != want {
		t.Errorf("extractLyrics() = %q, want %q", got, want)
	}
}

func TestExtractLyricsCRLF(t *testing.T) {
	got := extractLyrics("One\r\nTwo\r\n")
	want := "One\nTwo"
	if got != want {
		t.Errorf("extractLyrics() = %q, want %q", got, want)
	}
}

func TestExtractLyricsEmpty(t *testing.T) {
	if got := extractLyrics("---\n\n![x](y)\n"); got != "" {
		t.Errorf("extractLyrics() = %q, want empty", got)
	}
}
