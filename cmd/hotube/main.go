package main

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/hotube/modules/auth"
	"github.com/dmitrymomot/hotube/modules/user"
	"github.com/dmitrymomot/hotube/modules/video"
	"github.com/dmitrymomot/hotube/pkg/config"
	"github.com/dmitrymomot/hotube/pkg/cookie"
	"github.com/dmitrymomot/hotube/pkg/file"
	"github.com/dmitrymomot/hotube/pkg/flash"
	"github.com/dmitrymomot/hotube/pkg/httpserver"
	"github.com/dmitrymomot/hotube/pkg/logger"
	"github.com/dmitrymomot/hotube/pkg/pg"
	"github.com/dmitrymomot/hotube/pkg/redis"
	"github.com/dmitrymomot/hotube/pkg/session"
	"github.com/dmitrymomot/hotube/pkg/view"
)

//go:embed templates/*.html
var templatesFS embed.FS

type appConfig struct {
	Log     logger.Config
	DB      pg.Config
	HTTP    httpserver.Config
	Session session.Config
	GitHub  auth.GitHubConfig

	CookieSecrets []string `env:"COOKIE_SECRETS,required" envSeparator:","`

	// SessionStore selects the session backend: memory or redis.
	SessionStore string `env:"SESSION_STORE" envDefault:"memory"`
	Redis        redis.Config

	// FileStorage selects the upload backend: local or s3.
	FileStorage    string `env:"FILE_STORAGE" envDefault:"local"`
	UploadsDir     string `env:"UPLOADS_DIR" envDefault:"uploads"`
	UploadsBaseURL string `env:"UPLOADS_BASE_URL" envDefault:"/uploads"`
	S3             file.S3Config
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.NewFromConfig(cfg.Log, logger.WithService("hotube"))
	logger.SetAsDefault(log)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited with error", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	pool, err := pg.Connect(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.DB, log); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	cookies, err := cookie.New(cfg.CookieSecrets)
	if err != nil {
		return fmt.Errorf("failed to create cookie manager: %w", err)
	}
	flashes := flash.New(cookies)

	sessionOpts := []session.Option{
		session.WithConfig(cfg.Session),
		session.WithCookieManager(cookies),
	}
	if cfg.SessionStore == "redis" {
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer func() { _ = client.Close() }()
		sessionOpts = append(sessionOpts, session.WithStore(session.NewRedisStore(client)))
	}
	sessions := session.New(sessionOpts...)

	files, err := newFileStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create file storage: %w", err)
	}

	views, err := view.NewTemplateRenderer(templatesFS, "templates/*.html", nil)
	if err != nil {
		return fmt.Errorf("failed to parse templates: %w", err)
	}

	userStorage := user.NewRepository(pool)
	videoStorage := video.NewRepository(pool)

	userSvc := user.NewService(userStorage, files, user.WithLogger(log))
	videoSvc := video.NewService(videoStorage, files, video.WithLogger(log))

	gate := auth.NewGate(flashes, auth.WithGateLogger(log))
	authHandler := auth.NewHandler(
		auth.NewPasswordService(userStorage, auth.WithPasswordLogger(log)),
		auth.NewGitHubProvider(cfg.GitHub),
		auth.NewReconciler(userStorage, auth.WithReconcilerLogger(log)),
		sessions,
		cookies,
		flashes,
		views,
		auth.WithHandlerLogger(log),
	)
	userHandler := user.NewHandler(userSvc, sessions, flashes, views, user.WithHandlerLogger(log))
	videoHandler := video.NewHandler(videoSvc, flashes, views, video.WithHandlerLogger(log))

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(sessions.Middleware)

	authHandler.Routes(r, gate)
	videoHandler.Routes(r, gate.Protect)
	r.Mount("/users", userHandler.Handle(gate.Protect))

	if cfg.FileStorage == "local" {
		fs := http.StripPrefix(cfg.UploadsBaseURL+"/", http.FileServer(http.Dir(cfg.UploadsDir)))
		r.Get(cfg.UploadsBaseURL+"/*", fs.ServeHTTP)
	}

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}

func newFileStorage(ctx context.Context, cfg appConfig) (file.Storage, error) {
	if cfg.FileStorage == "s3" {
		return file.NewS3Storage(ctx, cfg.S3)
	}
	return file.NewLocalStorage(cfg.UploadsDir, cfg.UploadsBaseURL)
}
