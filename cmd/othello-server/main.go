package main

import (
    "context"
    "errors"
    "flag"
    "net/http"
    "os"
    "os/signal"
    "syscall"

    "go.uber.org/zap"

    "github.com/jaminalder/othello-board/internal/app"
    "github.com/jaminalder/othello-board/internal/bootstrap"
    "github.com/jaminalder/othello-board/internal/web"
)

func main() {
    cfgPath := flag.String("config", "", "optional config file (yaml, json, toml or .env)")
    flag.Parse()

    cfg, err := bootstrap.Setup(*cfgPath)
    if err != nil {
        NewLogger(false, "info").Fatalw("failed to setup configuration", "error", err)
    }
    logger := NewLogger(cfg.Dev, cfg.LogLevel)
    defer func() { _ = logger.Sync() }()

    svc := app.NewService(
        app.WithLogger(logger.Named("app")),
        app.WithSubscriberBuffer(cfg.SubscriberBuffer),
    )
    opts := []web.Option{
        web.WithLogger(logger.Named("web")),
        web.WithHeartbeat(cfg.HeartbeatInterval),
    }
    if cfg.Dev {
        opts = append(opts, web.WithRequestLog())
    }
    srv := &http.Server{Addr: cfg.Addr(), Handler: web.NewServer(svc, opts...)}

    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()

    go func() {
        logger.Infow("server listening", "addr", cfg.Addr())
        if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            logger.Errorw("server failed", "error", err)
            stop()
        }
    }()

    <-ctx.Done()
    logger.Info("shutting down")
    shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
    defer cancel()
    if err := srv.Shutdown(shutdownCtx); err != nil {
        logger.Errorw("graceful shutdown failed", "error", err)
        os.Exit(1)
    }
}

// NewLogger builds a production logger, or a development one in dev mode.
// An unparsable level falls back to info.
func NewLogger(dev bool, level string) *zap.SugaredLogger {
    zc := zap.NewProductionConfig()
    if dev {
        zc = zap.NewDevelopmentConfig()
    }
    if lvl, err := zap.ParseAtomicLevel(level); err == nil {
        zc.Level = lvl
    }
    logger, err := zc.Build()
    if err != nil {
        panic("failed to initialize logger: " + err.Error())
    }
    return logger.Sugar()
}
