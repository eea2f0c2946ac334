package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"starchase/server"
)

// StarChase 入口：加载配置，启动 HTTP + WebSocket 服务，并初始化房间管理器
func main() {
	cfg, err := server.LoadConfig(".env")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// 命令行参数优先于环境变量
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "server listen address, e.g. :8080")
	flag.StringVar(&cfg.WebDir, "web", cfg.WebDir, "static client directory")
	flag.StringVar(&cfg.LogFile, "log", cfg.LogFile, "log file path")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug / info / warn / error")
	flag.StringVar(&cfg.DefaultRoom, "room", cfg.DefaultRoom, "default room id")
	flag.IntVar(&cfg.MaxRooms, "max-rooms", cfg.MaxRooms, "upper bound on concurrently hosted rooms")
	flag.IntVar(&cfg.MaxPlayers, "max-players", cfg.MaxPlayers, "active players per room")
	flag.IntVar(&cfg.TickRate, "tick-rate", cfg.TickRate, "simulation ticks per second")
	flag.DurationVar(&cfg.ResetPeriod, "reset-period", cfg.ResetPeriod, "leaderboard reset period")
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// 使用第三方 zap 日志库写入日志文件（带滚动）
	if err := server.InitLogger(cfg.LogFile, cfg.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer server.SyncLogger()

	rm := server.NewManager(cfg)
	// 预创建默认房间，排行榜清零周期从启动时开始计
	if _, err := rm.GetOrCreateRoom(cfg.DefaultRoom); err != nil {
		server.Log.Fatalw("create default room", "err", err)
	}

	srv := &http.Server{Addr: cfg.Addr, Handler: rm.Routes(cfg.WebDir)}

	go func() {
		server.Log.Infof("StarChase listening on %s; open http://localhost%v/", cfg.Addr, cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		server.Log.Warnw("http shutdown", "err", err)
	}
	rm.Shutdown()
}
