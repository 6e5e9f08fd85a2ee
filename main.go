package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"zetacore/app/client/gcal"
	"zetacore/app/client/speechkit"
	"zetacore/app/config"
	"zetacore/app/server"
	"zetacore/app/service/brain"
	"zetacore/app/service/engine"
	"zetacore/app/service/extract"
	"zetacore/app/service/reply"
	"zetacore/app/service/session"
	"zetacore/app/util/mylog"

	"github.com/gofiber/fiber/v2/log"
	"github.com/samber/do"
)

func main() {
	di := do.New()
	defer di.Shutdown()
	defer log.Info("Waiting for services to finish...")

	mylog.Preinit()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	do.ProvideValue(di, appCtx)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	do.ProvideValue(di, cfg)

	if err = mylog.Init(cfg); err != nil {
		log.Fatalf("logging init failed: %v", err)
	}

	do.Provide(di, gcal.NewClient)
	if cfg.Speech.KeyFile != "" {
		do.Provide(di, speechkit.NewClient)
	}
	do.Provide(di, session.New)
	do.Provide(di, extract.New)
	do.Provide(di, brain.New)
	do.Provide(di, reply.New)
	do.Provide(di, engine.New)
	do.Provide(di, server.New)
	do.Provide(di, server.NewMCPServer)

	do.Provide(di, func(i *do.Injector) (engine.Extractor, error) {
		return do.MustInvoke[*extract.Service](i), nil
	})
	do.Provide(di, func(i *do.Injector) (engine.Interpreter, error) {
		return do.MustInvoke[*brain.Service](i), nil
	})
	do.Provide(di, func(i *do.Injector) (engine.Calendar, error) {
		return do.MustInvoke[*gcal.Client](i), nil
	})
	do.Provide(di, func(i *do.Injector) (engine.Replier, error) {
		return do.MustInvoke[*reply.Service](i), nil
	})

	if len(os.Args) > 1 && os.Args[1] == "mcp" {
		if err := do.MustInvoke[*server.MCPServer](di).Serve(); err != nil {
			log.Fatalf("mcp serve failed: %v", err)
		}
		return
	}

	slog.Info("Service started")

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		log.Info("Shutting down...")

		cancel()
	}()

	do.MustInvoke[*server.Server](di).Run(appCtx)
}
