// Package bootstrap wires configuration, providers, stores, and transports
// into a runnable server.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"voicelab-server-go/internal/domain/auth"
	"voicelab-server-go/internal/domain/dialogue"
	"voicelab-server-go/internal/domain/eventbus"
	"voicelab-server-go/internal/domain/preview"
	"voicelab-server-go/internal/domain/stt"
	"voicelab-server-go/internal/domain/task"
	"voicelab-server-go/internal/domain/tts"
	"voicelab-server-go/internal/domain/tts/usecase"
	"voicelab-server-go/internal/platform/config"
	platformerrors "voicelab-server-go/internal/platform/errors"
	"voicelab-server-go/internal/platform/logging"
	"voicelab-server-go/internal/platform/storage"
	httptransport "voicelab-server-go/internal/transport/http"
	"voicelab-server-go/internal/transport/ws"

	// Adapters self-register their factories.
	_ "voicelab-server-go/internal/domain/tts/adapters/edge"
	_ "voicelab-server-go/internal/domain/tts/adapters/mock"
	_ "voicelab-server-go/internal/domain/tts/adapters/openai"
)

// App is the fully wired server.
type App struct {
	Config *config.Config
	Logger *logging.Logger

	providers    map[string]tts.Provider
	transcribers map[string]stt.Transcriber
	tasks        *task.Manager
	server       *http.Server
	rdb          *redis.Client
}

// New builds the whole object graph from a loaded configuration.
func New(cfg *config.Config) (*App, error) {
	const op = "bootstrap"

	logger, err := logging.New(logging.Config{
		Level:    cfg.Log.Level,
		Dir:      cfg.Log.Dir,
		Filename: cfg.Log.File,
	})
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindBootstrap, op, err)
	}

	providers := make(map[string]tts.Provider)
	delays := make(map[string]int)
	for name, ttsCfg := range cfg.TTS {
		p, err := tts.CreateProvider(ttsCfg.Type, ttsCfg, logger)
		if err != nil {
			logger.WarnTag("Boot", "skipping TTS provider %s: %v", name, err)
			continue
		}
		providers[name] = p
		delays[name] = ttsCfg.RequestDelayMS
	}
	if len(providers) == 0 {
		return nil, platformerrors.New(platformerrors.KindBootstrap, op,
			"no TTS provider could be initialized")
	}

	transcribers := make(map[string]stt.Transcriber)
	for name, sttCfg := range cfg.STT {
		tr, err := stt.CreateTranscriber(sttCfg.Type, sttCfg, logger)
		if err != nil {
			logger.WarnTag("Boot", "skipping STT provider %s: %v", name, err)
			continue
		}
		transcribers[name] = tr
	}

	db, err := storage.OpenDB(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	jobStore := storage.NewJobStore(db)

	fileStore, err := storage.NewFileStore(cfg.Audio.OutputDir)
	if err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	authSvc, err := auth.NewService(cfg.Server.Auth)
	if err != nil {
		return nil, err
	}

	bus := eventbus.Get()
	tasks := task.NewManager(jobStore, bus, cfg.Jobs, logger)

	multiRole := usecase.NewMultiRole(providers, delays, logger)
	longText := usecase.NewLongText(providers, delays, fileStore, logger)
	registerExecutors(tasks, multiRole, longText, fileStore)

	router := httptransport.Build(httptransport.Options{
		Config: cfg,
		Logger: logger,
		Auth:   authSvc,
	})

	svc := &httptransport.Service{
		MultiRole:    multiRole,
		LongText:     longText,
		Providers:    providers,
		Transcribers: transcribers,
		Preview:      preview.NewCache(rdb, cfg.Redis.Prefix, logger),
		Tasks:        tasks,
		Auth:         authSvc,
		Logger:       logger,
	}
	svc.Register(router)

	hub, err := ws.NewHub(bus, logger)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindBootstrap, op, err)
	}
	router.Engine.GET("/ws/jobs", hub.Handle)

	return &App{
		Config:       cfg,
		Logger:       logger,
		providers:    providers,
		transcribers: transcribers,
		tasks:        tasks,
		rdb:          rdb,
		server: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", cfg.Server.IP, cfg.Server.Port),
			Handler: router.Engine,
		},
	}, nil
}

// Run serves until the context is cancelled or a signal arrives, then shuts
// everything down in dependency order.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoTag("Boot", "listening on %s", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.InfoTag("Boot", "shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = a.server.Shutdown(shutdownCtx)

		a.tasks.Stop()
		for _, p := range a.providers {
			if closer, ok := p.(tts.Closer); ok {
				_ = closer.Close()
			}
		}
		if a.rdb != nil {
			_ = a.rdb.Close()
		}
		a.Logger.Close()
		return nil
	})

	return g.Wait()
}

// registerExecutors binds the async job types to the synthesis use cases.
// Job results carry only metadata and the stored file path; audio bytes stay
// on disk.
func registerExecutors(tasks *task.Manager, multiRole *usecase.MultiRole, longText *usecase.LongText, files *storage.FileStore) {
	tasks.RegisterExecutor("multirole", func(ctx context.Context, rec *storage.JobRecord) (interface{}, error) {
		var params struct {
			Provider         string                    `json:"provider"`
			Script           string                    `json:"script"`
			Turns            []dialogue.Turn           `json:"turns"`
			VoiceAssignments []usecase.VoiceAssignment `json:"voice_assignments"`
			Language         string                    `json:"language"`
			OutputFormat     string                    `json:"output_format"`
			GapMS            int                       `json:"gap_ms"`
			CrossfadeMS      int                       `json:"crossfade_ms"`
			StylePrompt      string                    `json:"style_prompt"`
		}
		if err := sonic.Unmarshal(rec.Params, &params); err != nil {
			return nil, platformerrors.Wrap(platformerrors.KindValidation, "task.multirole", err)
		}
		if params.OutputFormat == "" {
			params.OutputFormat = "wav"
		}

		turns := params.Turns
		if len(turns) == 0 && params.Script != "" {
			parsed, _, err := dialogue.Parse(params.Script)
			if err != nil {
				return nil, err
			}
			turns = parsed
		}

		res, err := multiRole.Execute(ctx, usecase.MultiRoleRequest{
			Provider:         params.Provider,
			Turns:            turns,
			VoiceAssignments: params.VoiceAssignments,
			Language:         params.Language,
			OutputFormat:     params.OutputFormat,
			GapMS:            params.GapMS,
			CrossfadeMS:      params.CrossfadeMS,
			StylePrompt:      params.StylePrompt,
		})
		if err != nil {
			return nil, err
		}

		path, err := files.Save(res.Audio, res.ContentType, res.Provider)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"path":              path,
			"provider":          res.Provider,
			"mode":              res.Mode,
			"duration_ms":       res.DurationMS,
			"segment_count":     res.SegmentCount,
			"total_text_length": res.TotalTextLength,
			"timings":           res.Timings,
		}, nil
	})

	tasks.RegisterExecutor("longtext", func(ctx context.Context, rec *storage.JobRecord) (interface{}, error) {
		var params struct {
			Provider     string `json:"provider"`
			Text         string `json:"text"`
			Voice        string `json:"voice"`
			Language     string `json:"language"`
			OutputFormat string `json:"output_format"`
			GapMS        int    `json:"gap_ms"`
			CrossfadeMS  int    `json:"crossfade_ms"`
			StylePrompt  string `json:"style_prompt"`
		}
		if err := sonic.Unmarshal(rec.Params, &params); err != nil {
			return nil, platformerrors.Wrap(platformerrors.KindValidation, "task.longtext", err)
		}
		if params.OutputFormat == "" {
			params.OutputFormat = "wav"
		}

		res, err := longText.Execute(ctx, usecase.LongTextRequest{
			Provider:     params.Provider,
			Text:         params.Text,
			Voice:        params.Voice,
			Language:     params.Language,
			OutputFormat: params.OutputFormat,
			GapMS:        params.GapMS,
			CrossfadeMS:  params.CrossfadeMS,
			StylePrompt:  params.StylePrompt,
			Save:         true,
		})
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{
			"path":              res.SavedPath,
			"provider":          res.Provider,
			"duration_ms":       res.DurationMS,
			"segment_count":     res.SegmentCount,
			"total_text_length": res.TotalTextLength,
			"total_byte_length": res.TotalByteLength,
		}, nil
	})
}
