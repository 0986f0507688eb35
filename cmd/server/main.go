package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bgpstack/roa-history/internal/conf"
	"github.com/bgpstack/roa-history/internal/data"
	"github.com/bgpstack/roa-history/internal/pkg/logger"
	"github.com/bgpstack/roa-history/internal/roa/biz"
	roadata "github.com/bgpstack/roa-history/internal/roa/data"
	"github.com/bgpstack/roa-history/internal/roa/service"
	"github.com/bgpstack/roa-history/internal/server"
	"go.uber.org/zap"
)

var (
	configFile = flag.String("config", "config.yaml", "config file path")
)

func main() {
	flag.Parse()

	// Load configuration
	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger with config
	logConfig := &logger.Config{
		Level:            config.Log.Level,
		Format:           config.Log.Format,
		Output:           config.Log.Output,
		EnableCaller:     config.Log.EnableCaller,
		EnableStacktrace: config.Log.EnableStacktrace,
		File: logger.FileConfig{
			Filename:   config.Log.File.Filename,
			MaxSize:    config.Log.File.MaxSize,
			MaxAge:     config.Log.File.MaxAge,
			MaxBackups: config.Log.File.MaxBackups,
			Compress:   config.Log.File.Compress,
		},
	}

	log, err := logger.New(logConfig)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	if err := logger.InitGlobal(logConfig); err != nil {
		log.Fatal("failed to initialize global logger", zap.Error(err))
	}

	log.Info("config loaded successfully")

	// Initialize data layer
	d, cleanup, err := data.NewData(config, log)
	if err != nil {
		log.Fatal("failed to initialize data layer", zap.Error(err))
	}
	defer cleanup()

	// Select the history store backend
	var repo biz.ROARepo
	switch config.Store.Driver {
	case "rpc":
		repo = roadata.NewRPCROARepo(roadata.RPCConfig{
			BaseURL: config.RPC.BaseURL,
			APIKey:  config.RPC.APIKey,
			Timeout: config.RPC.Timeout,
		})
		log.Info("using rpc history store", zap.String("base_url", config.RPC.BaseURL))
	default:
		repo = roadata.NewROARepo(d.DB)
		log.Info("using postgres history store")
	}

	// Initialize use case and service
	roaUseCase := biz.NewROAUseCase(repo, config.API.BaseURL, log)
	roaService := service.NewROAService(roaUseCase, log)

	// Initialize HTTP server
	httpServer := server.NewHTTPServer(config, log, roaService, d.RedisClient)

	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	log.Info("server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
