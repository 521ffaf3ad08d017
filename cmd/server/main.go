package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dunamismax/chat-relay/internal/chat"
	"github.com/dunamismax/chat-relay/internal/command"
	"github.com/dunamismax/chat-relay/internal/config"
	"github.com/dunamismax/chat-relay/internal/observe"
	"github.com/dunamismax/chat-relay/internal/registry"
	"github.com/dunamismax/chat-relay/internal/transport"
	"github.com/dunamismax/chat-relay/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L().Sugar().Fatalw("config_error", "err", err)
	}
	logger.SetLevel(cfg.LogLevel)
	defer logger.Sync()

	identities := registry.NewIdentities()
	rooms := registry.NewRooms(cfg.Rooms)

	eng := chat.NewEngine(identities, rooms, chat.Limits{
		MaxMessageBytes: cfg.MaxMessageBytes,
		RateLimitCount:  cfg.RateLimitCount,
		RateLimitWindow: cfg.RateLimitWindow,
		MaxSessions:     cfg.MaxSessions,
		OutBuffer:       cfg.OutBuffer,
	})

	cmds := command.NewRegistry(rooms)
	if err := command.RegisterBuiltins(cmds); err != nil {
		logger.L().Sugar().Fatalw("command_registry_error", "err", err)
	}
	eng.SetCommands(cmds)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return (&transport.TCPServer{Engine: eng}).Start(ctx, cfg.TCPAddr)
	})
	g.Go(func() error {
		return (&transport.WebSocketServer{Engine: eng, Path: cfg.WSPath}).Start(ctx, cfg.WSAddr)
	})
	g.Go(func() error {
		return observe.Serve(ctx, cfg.HTTPAddr, identities.Snapshot)
	})

	logger.L().Sugar().Infow("server_start",
		"tcp", cfg.TCPAddr, "ws", cfg.WSAddr, "ws_path", cfg.WSPath, "http", cfg.HTTPAddr,
		"rooms", cfg.Rooms)

	// 监听端口起不来属于致命错误，进程直接退出
	if err := g.Wait(); err != nil {
		logger.L().Sugar().Fatalw("server_exit", "err", err)
	}
	logger.L().Sugar().Infow("server_stopped")
}
