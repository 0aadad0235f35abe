package handlers

import (
	"net/http"
	"sync"
	"time"

	"lyrsync/internal/lyricfetch"

	"github.com/labstack/echo/v4"
)

// LyricsHandler は歌詞サイトからの取得ハンドラー。ヘッドレスブラウザは
// 起動が重いので、最初のリクエストまで遅延させて使い回す
type LyricsHandler struct {
	opts *lyricfetch.Options

	mu     sync.Mutex
	client *lyricfetch.Client
}

// NewLyricsHandler は新しいLyricsHandlerを作成
func NewLyricsHandler(opts *lyricfetch.Options) *LyricsHandler {
	return &LyricsHandler{opts: opts}
}

// Close は起動済みのブラウザを終了する
func (h *LyricsHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.client == nil {
		return nil
	}
	err := h.client.Close()
	h.client = nil
	return err
}

func (h *LyricsHandler) ensureClient() (*lyricfetch.Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.client != nil {
		return h.client, nil
	}
	client, err := lyricfetch.NewClient(h.opts)
	if err != nil {
		return nil, err
	}
	h.client = client
	return client, nil
}

// FetchRequest は歌詞取得リクエスト
type FetchRequest struct {
	URL      string `json:"url"`
	Selector string `json:"selector,omitempty"`
	Timeout  int    `json:"timeout,omitempty"` // 秒
}

// Fetch はURLから歌詞テキストを抽出して返す
// POST /api/lyrics/fetch
func (h *LyricsHandler) Fetch(c echo.Context) error {
	ctx := c.Request().Context()

	var req FetchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.URL == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "url is required"})
	}

	client, err := h.ensureClient()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to start browser: " + err.Error()})
	}

	opts := &lyricfetch.FetchOptions{
		Selector: req.Selector,
	}
	if req.Timeout > 0 {
		opts.WaitTime = time.Duration(req.Timeout) * time.Second
	}

	result, err := client.FetchLyrics(ctx, req.URL, opts)
	if err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "failed to fetch lyrics: " + err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"url":    result.URL,
		"lyrics": result.Lyrics,
	})
}
