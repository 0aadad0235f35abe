package youtube

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ytdl "github.com/kkdai/youtube/v2"
)

// AudioFormat は音声フォーマット情報
type AudioFormat struct {
	ItagNo        int
	MimeType      string // "audio/mp4", "audio/webm"
	Bitrate       int    // ビットレート (bps)
	ContentLength int64  // ファイルサイズ (bytes)
	Quality       string // 音質ラベル
}

// Extension はMIMEタイプから拡張子を返す
func (f *AudioFormat) Extension() string {
	if strings.Contains(f.MimeType, "mp4") {
		return ".m4a"
	}
	if strings.Contains(f.MimeType, "webm") {
		return ".webm"
	}
	return ".audio"
}

// DownloadAudioOptions はダウンロードオプション
type DownloadAudioOptions struct {
	Format    string // "mp4", "webm", "best" (default: "best")
	OutputDir string // 保存先ディレクトリ（空の場合はカレントディレクトリ）
	BaseName  string // 拡張子を除くファイル名（空の場合は動画タイトル）
}

// GetAudioFormats は利用可能な音声フォーマット一覧をビットレート降順で取得
func (c *Client) GetAudioFormats(videoURL string) ([]AudioFormat, error) {
	video, err := c.client.GetVideo(videoURL)
	if err != nil {
		return nil, err
	}
	return audioFormats(video), nil
}

// audioFormats は動画の全フォーマットから音声のみを抜き出し、
// ビットレート降順に並べる
func audioFormats(video *ytdl.Video) []AudioFormat {
	var formats []AudioFormat
	for _, f := range video.Formats {
		if !strings.HasPrefix(f.MimeType, "audio/") {
			continue
		}
		formats = append(formats, AudioFormat{
			ItagNo:        f.ItagNo,
			MimeType:      f.MimeType,
			Bitrate:       f.Bitrate,
			ContentLength: f.ContentLength,
			Quality:       f.AudioQuality,
		})
	}

	sort.Slice(formats, func(i, j int) bool {
		return formats[i].Bitrate > formats[j].Bitrate
	})
	return formats
}

// selectAudioFormat はコンテナ指定に合う最高ビットレートのフォーマットを選ぶ
func selectAudioFormat(formats []AudioFormat, formatType string) (*AudioFormat, error) {
	if len(formats) == 0 {
		return nil, fmt.Errorf("no audio formats available")
	}

	var filtered []AudioFormat
	switch formatType {
	case "mp4", "webm":
		for _, f := range formats {
			if strings.Contains(f.MimeType, formatType) {
				filtered = append(filtered, f)
			}
		}
	default: // "best"
		filtered = formats
	}

	if len(filtered) == 0 {
		return nil, fmt.Errorf("no audio formats available for type: %s", formatType)
	}

	// audioFormatsがソート済みなので先頭が最高ビットレート
	return &filtered[0], nil
}

// DownloadAudio は音声をダウンロードし、保存先パスを返す
func (c *Client) DownloadAudio(ctx context.Context, videoURL string, opts *DownloadAudioOptions) (string, error) {
	return c.DownloadAudioWithProgress(ctx, videoURL, opts, nil)
}

// DownloadAudioWithProgress はプログレス付きでダウンロードし、保存先パスを返す
func (c *Client) DownloadAudioWithProgress(ctx context.Context, videoURL string, opts *DownloadAudioOptions, progress func(current, total int64)) (string, error) {
	if opts == nil {
		opts = &DownloadAudioOptions{Format: "best"}
	}
	if opts.Format == "" {
		opts.Format = "best"
	}

	video, err := c.client.GetVideoContext(ctx, videoURL)
	if err != nil {
		return "", fmt.Errorf("failed to get video: %w", err)
	}

	selectedFormat, err := selectAudioFormat(audioFormats(video), opts.Format)
	if err != nil {
		return "", err
	}

	// 選んだフォーマットをyoutubeライブラリ側のFormatに引き当てる
	var targetFormat *ytdl.Format
	for i := range video.Formats {
		if video.Formats[i].ItagNo == selectedFormat.ItagNo {
			targetFormat = &video.Formats[i]
			break
		}
	}
	if targetFormat == nil {
		return "", fmt.Errorf("format not found: itag=%d", selectedFormat.ItagNo)
	}

	stream, size, err := c.client.GetStreamContext(ctx, video, targetFormat)
	if err != nil {
		return "", fmt.Errorf("failed to get stream: %w", err)
	}
	defer stream.Close()

	baseName := opts.BaseName
	if baseName == "" {
		baseName = sanitizeFilename(video.Title)
	}
	outputPath := filepath.Join(opts.OutputDir, baseName+selectedFormat.Extension())

	if opts.OutputDir != "" {
		if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := copyWithProgress(ctx, file, stream, size, progress); err != nil {
		os.Remove(outputPath) // 失敗時はファイルを削除
		return "", fmt.Errorf("failed to download: %w", err)
	}

	return outputPath, nil
}

// progressWriter は書き込んだ累積バイト数をコールバックへ中継する。
// Writeごとにコンテキストを見るので、キャンセルでダウンロードが止まる
type progressWriter struct {
	ctx      context.Context
	dst      io.Writer
	total    int64
	written  int64
	progress func(current, total int64)
}

func (w *progressWriter) Write(p []byte) (int, error) {
	if err := w.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := w.dst.Write(p)
	if n > 0 {
		w.written += int64(n)
		if w.progress != nil {
			w.progress(w.written, w.total)
		}
	}
	return n, err
}

func copyWithProgress(ctx context.Context, dst io.Writer, src io.Reader, total int64, progress func(current, total int64)) error {
	pw := &progressWriter{ctx: ctx, dst: dst, total: total, progress: progress}
	_, err := io.Copy(pw, src)
	return err
}

// sanitizeFilename はファイル名に使えない文字をアンダースコアに置換
func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/\:*?"<>|`, r) {
			return '_'
		}
		return r
	}, name)
}
