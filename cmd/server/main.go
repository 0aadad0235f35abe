package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"lyrsync/internal/asr"
	"lyrsync/internal/handlers"
	"lyrsync/internal/lyricfetch"
	"lyrsync/internal/media"
	"lyrsync/internal/models"
	"lyrsync/internal/pipeline"
	"lyrsync/internal/storage"
	"lyrsync/internal/version"
	"lyrsync/internal/worker"
	"lyrsync/internal/youtube"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	// .envファイルを読み込み（存在しない場合はスキップ）
	_ = godotenv.Load()

	// 環境変数から設定を取得
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	dataDir := os.Getenv("LYRSYNC_DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	dbPath := os.Getenv("LYRSYNC_DB_PATH")
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, "lyrsync.db")
	}
	retention := 72 * time.Hour
	if v := os.Getenv("LYRSYNC_RETENTION_HOURS"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil && hours > 0 {
			retention = time.Duration(hours) * time.Hour
		}
	}

	// ストレージ
	db, err := storage.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	projectRepo := storage.NewProjectRepository(db)
	jobRepo := storage.NewJobRepository(db)
	artifactRepo := storage.NewArtifactRepository(db)
	mediaStore := media.NewStore(dataDir)

	// ASRモデル設定。モデル未配置でも起動し、文字起こしジョブ実行時に
	// エラーとして表面化する
	asrConfig := asr.DefaultGigaSpeechConfig()
	if modelDir := os.Getenv("LYRSYNC_MODEL_DIR"); modelDir != "" {
		asrConfig, err = asr.NewConfig(modelDir)
		if err != nil {
			log.Fatalf("Failed to load ASR model config: %v", err)
		}
	}

	// パイプラインとワーカー
	pipe := pipeline.New(projectRepo, jobRepo, artifactRepo, mediaStore, youtube.NewClient(), asrConfig)
	w := worker.NewWorker(jobRepo)
	registerProcessors(w, pipe, jobRepo)

	// SIGINT/SIGTERMで停止
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w.Start(ctx)
	go runCleanupLoop(ctx, projectRepo, jobRepo, mediaStore, retention)

	// Echoインスタンスの作成
	e := echo.New()
	e.HideBanner = true

	// ミドルウェアの設定
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("100M"))

	// ハンドラー
	projectHandler := handlers.NewProjectHandler(projectRepo, jobRepo, artifactRepo, mediaStore, w)
	jobHandler := handlers.NewJobHandler(jobRepo)
	timingHandler := handlers.NewTimingHandler(projectRepo, artifactRepo)
	audioHandler := handlers.NewAudioHandler(projectRepo, artifactRepo)
	ingestHandler := handlers.NewIngestHandler(projectRepo, w)
	lyricsHandler := handlers.NewLyricsHandler(&lyricfetch.Options{
		Stealth:     true,
		BrowserPath: os.Getenv("LYRSYNC_BROWSER_PATH"),
	})
	defer lyricsHandler.Close()

	// ルートの登録
	api := e.Group("/api")
	api.GET("/health", handlers.Health)

	api.POST("/projects", projectHandler.Create)
	api.GET("/projects", projectHandler.List)
	api.POST("/projects/import", projectHandler.Import)
	api.GET("/projects/:id", projectHandler.Get)
	api.PUT("/projects/:id", projectHandler.Update)
	api.DELETE("/projects/:id", projectHandler.Delete)
	api.POST("/projects/:id/align", projectHandler.Align)

	api.GET("/projects/:id/jobs", jobHandler.ListByProject)
	api.GET("/projects/:id/timing", timingHandler.Get)
	api.PUT("/projects/:id/timing", timingHandler.Put)
	api.GET("/projects/:id/transcript", timingHandler.Transcript)
	api.GET("/projects/:id/stats", timingHandler.Stats)
	api.GET("/projects/:id/export", timingHandler.Export)
	api.GET("/projects/:id/audio", audioHandler.Stream)
	api.GET("/projects/:id/waveform", audioHandler.Waveform)

	api.GET("/jobs", jobHandler.List)
	api.GET("/jobs/stats", jobHandler.Stats)
	api.GET("/jobs/:id", jobHandler.Get)
	api.DELETE("/jobs/:id", jobHandler.Delete)

	api.POST("/ingest/youtube", ingestHandler.YouTube)
	api.POST("/lyrics/fetch", lyricsHandler.Fetch)

	// サーバー起動
	go func() {
		log.Printf("Starting %s v%s on port %s", version.Name, version.Version, port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	w.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}

// registerProcessors はジョブタイプごとのパイプライン処理を登録する。
// 進捗はジョブ行に書き戻し、ポーリングするクライアントから見えるようにする
func registerProcessors(w *worker.Worker, pipe *pipeline.Pipeline, jobRepo *storage.JobRepository) {
	progress := func(ctx context.Context, jobID string) pipeline.ProgressCallback {
		return func(p int, step string) {
			_ = jobRepo.UpdateProgressWithStep(ctx, jobID, p, step)
		}
	}

	w.RegisterHandler(models.JobTypeDownload, func(ctx context.Context, job *models.Job) error {
		return pipe.ProcessDownload(ctx, job, progress(ctx, job.ID))
	})
	w.RegisterHandler(models.JobTypeTranscribe, func(ctx context.Context, job *models.Job) error {
		return pipe.ProcessTranscription(ctx, job, progress(ctx, job.ID))
	})
	w.RegisterHandler(models.JobTypeAlign, func(ctx context.Context, job *models.Job) error {
		return pipe.ProcessAlignment(ctx, job, progress(ctx, job.ID))
	})
}

// runCleanupLoop は起動時と1時間ごとに保持期限切れのデータを掃除する
func runCleanupLoop(ctx context.Context, projectRepo *storage.ProjectRepository, jobRepo *storage.JobRepository, mediaStore *media.Store, retention time.Duration) {
	runCleanup(ctx, projectRepo, jobRepo, mediaStore, retention)

	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCleanup(ctx, projectRepo, jobRepo, mediaStore, retention)
		}
	}
}

func runCleanup(ctx context.Context, projectRepo *storage.ProjectRepository, jobRepo *storage.JobRepository, mediaStore *media.Store, retention time.Duration) {
	cutoff := time.Now().Add(-retention)

	projects, err := projectRepo.ListOlderThan(ctx, cutoff)
	if err != nil {
		log.Printf("Cleanup: failed to list old projects: %v", err)
		return
	}
	for _, p := range projects {
		if err := mediaStore.Remove(p.ID); err != nil {
			log.Printf("Cleanup: failed to remove media for %s: %v", p.ID, err)
			continue
		}
		if err := projectRepo.Delete(ctx, p.ID); err != nil {
			log.Printf("Cleanup: failed to delete project %s: %v", p.ID, err)
		}
	}
	if len(projects) > 0 {
		log.Printf("Cleanup: removed %d expired projects", len(projects))
	}

	// プロジェクト削除が中断した場合に残る孤児ディレクトリも掃除
	if removed, err := mediaStore.CleanupOlderThan(retention); err != nil {
		log.Printf("Cleanup: media sweep failed: %v", err)
	} else if removed > 0 {
		log.Printf("Cleanup: removed %d orphan media directories", removed)
	}

	if removed, err := jobRepo.CleanupCompleted(ctx, retention); err != nil {
		log.Printf("Cleanup: job sweep failed: %v", err)
	} else if removed > 0 {
		log.Printf("Cleanup: removed %d finished jobs", removed)
	}
}
