package lyricfetch

import (
	"context"
	"time"

	"github.com/naozine/nz-html-fetch/pkg/htmlfetch"
)

// Client は歌詞サイト取得クライアント。ヘッドレスブラウザを1つ抱え、
// Closeするまで使い回す
type Client struct {
	fetcher *htmlfetch.Fetcher
}

// Options はブラウザ起動時の設定
type Options struct {
	Stealth     bool   // ボット検出回避。歌詞サイトは検出が厳しいので通常true
	Proxy       string // プロキシアドレス
	BrowserPath string // 使用するブラウザの実行ファイルパス
}

// FetchOptions は取得1回ごとの設定
type FetchOptions struct {
	Selector   string        // 歌詞要素のセレクタ。指定時は出現まで待つ
	WaitTime   time.Duration // セレクタ待機のタイムアウト（デフォルト30秒）
	NoBlocking bool          // 広告・画像ブロックを無効化（表示崩れの調査用）
}

// NewClient はブラウザを起動してクライアントを返す
func NewClient(opts *Options) (*Client, error) {
	var fopts []htmlfetch.Option
	if opts != nil {
		fopts = append(fopts, htmlfetch.WithStealth(opts.Stealth))
		if opts.Proxy != "" {
			fopts = append(fopts, htmlfetch.WithProxy(opts.Proxy))
		}
		if opts.BrowserPath != "" {
			fopts = append(fopts, htmlfetch.WithBrowserPath(opts.BrowserPath))
		}
	}

	fetcher := htmlfetch.New(fopts...)
	if err := fetcher.Start(); err != nil {
		return nil, err
	}
	return &Client{fetcher: fetcher}, nil
}

// Close はブラウザを終了
func (c *Client) Close() error {
	if c.fetcher == nil {
		return nil
	}
	return c.fetcher.Close()
}

// FetchLyrics はURLのページから歌詞らしきテキストを抽出して返す。
// ページ全体をMarkdownとして取得し、リンク・見出し・装飾を落とした
// プレーンテキストに変換する
func (c *Client) FetchLyrics(ctx context.Context, url string, opts *FetchOptions) (*Result, error) {
	result, err := c.FetchMarkdown(ctx, url, opts)
	if err != nil {
		return nil, err
	}

	result.Lyrics = extractLyrics(result.Lyrics)
	return result, nil
}

// FetchMarkdown はURLのページをMarkdownのまま返す。抽出で歌詞が
// 欠ける場合の切り分けに使う
func (c *Client) FetchMarkdown(ctx context.Context, url string, opts *FetchOptions) (*Result, error) {
	result, err := c.fetcher.Fetch(ctx, url, fetchOptions(opts)...)
	if err != nil {
		return nil, err
	}

	return &Result{
		URL:      result.FinalURL,
		Lyrics:   result.Markdown,
		Duration: result.Duration,
	}, nil
}

// fetchOptions は取得オプションを組み立てる。歌詞サイトは広告が多く
// 画像も読む必要がないので、どちらもデフォルトでブロックする
func fetchOptions(opts *FetchOptions) []htmlfetch.FetchOption {
	fopts := []htmlfetch.FetchOption{htmlfetch.WithMarkdown()}

	if opts == nil || !opts.NoBlocking {
		fopts = append(fopts, htmlfetch.WithBlocking(htmlfetch.BlockingOptions{
			Ads:   true,
			Image: true,
		}))
	}

	if opts != nil && opts.Selector != "" {
		timeout := 30 * time.Second
		if opts.WaitTime > 0 {
			timeout = opts.WaitTime
		}
		fopts = append(fopts, htmlfetch.WithSelector(opts.Selector, timeout))
	}

	return fopts
}
