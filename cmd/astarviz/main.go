package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"astarviz/internal/config"
	"astarviz/internal/controller"
	"astarviz/internal/grid"
	"astarviz/internal/obstacles"
	"astarviz/internal/render/png"
	"astarviz/internal/render/term"
	"astarviz/internal/search"
)

func main() {
	var (
		cfgPath = flag.String("config", "", "optional configuration file (YAML or JSON)")
		logPath = flag.String("log", "astarviz.log", "file receiving log output while the terminal is in use")
		pngPath = flag.String("png", "astar.png", "where the p key writes a PNG snapshot")
		sound   = flag.Bool("sound", false, "play a tone when a search finishes")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("open log: %v", err)
	}
	defer logFile.Close()
	logger := log.New(logFile, "astar-viz ", log.LstdFlags|log.Lmicroseconds)

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("create screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("init screen: %v", err)
	}

	canvas := term.NewCanvas()
	if *sound {
		speaker, err := term.NewSound()
		if err != nil {
			logger.Printf("sound disabled: %v", err)
		}
		defer speaker.Close()
		canvas.OnStateChange(speaker.Outcome)
	}

	view := grid.NewViewport(cfg.Grid.Width, cfg.Grid.Height)
	engine := search.New(view,
		search.WithRenderer(canvas),
		search.WithLogger(log.New(logFile, "astar-engine ", log.LstdFlags|log.Lmicroseconds)),
		search.WithStepDelay(cfg.Search.StepDelay.Duration()),
		search.WithCommandBatch(cfg.Search.CommandBatch),
		search.WithStart(cfg.Search.Start),
		search.WithTarget(cfg.Search.Target),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	served := make(chan error, 1)
	go func() { served <- engine.Serve(ctx) }()

	app := &term.App{
		Screen:     screen,
		Engine:     engine,
		Controller: controller.New(engine, log.New(logFile, "astar-controller ", log.LstdFlags|log.Lmicroseconds)),
		Canvas:     canvas,
		Generator:  obstacles.NewGenerator(cfg.Obstacles),
		PNG: png.Options{
			CellPixels: cfg.Render.CellPixels,
			ShowGrid:   cfg.Render.ShowGrid,
			Caption:    true,
			Palette:    png.DefaultPalette,
		},
		PNGPath:   *pngPath,
		Logger:    logger,
		Viewport:  view,
		MaxWidth:  cfg.Grid.Width,
		MaxHeight: cfg.Grid.Height,
	}
	runErr := app.Run(ctx)
	screen.Fini()

	stop()
	if err := <-served; err != nil && ctx.Err() == nil {
		logger.Printf("engine stopped: %v", err)
	}
	if runErr != nil {
		log.Fatalf("visualizer: %v", runErr)
	}
	log.Print(png.Caption(engine.Snapshot()))
}
