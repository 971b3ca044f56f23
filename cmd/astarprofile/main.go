package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"astarviz/internal/config"
	"astarviz/internal/controller"
	"astarviz/internal/grid"
	"astarviz/internal/obstacles"
	"astarviz/internal/render/png"
	"astarviz/internal/search"
)

type runJob struct {
	index  int
	seed   int64
	start  grid.Position
	target grid.Position
}

type runResult struct {
	state    search.State
	steps    int
	cost     int
	blocked  int
	duration time.Duration
}

func main() {
	var (
		totalRuns   = flag.Int("runs", 200, "number of searches to run")
		concurrency = flag.Int("concurrency", runtime.NumCPU(), "number of concurrent engines")
		seed        = flag.Int64("seed", 1337, "random seed for obstacle fields and endpoints")
		width       = flag.Int("width", 800, "grid width in world units")
		height      = flag.Int("height", 600, "grid height in world units")
		threshold   = flag.Float64("threshold", config.Default().Obstacles.Threshold, "noise threshold above which a cell is blocked")
		timeout     = flag.Duration("timeout", 10*time.Second, "per-run timeout")
		pngDir      = flag.String("png", "", "directory to write one PNG per run (empty disables)")
	)
	flag.Parse()

	if *totalRuns <= 0 {
		fmt.Fprintln(os.Stderr, "runs must be positive")
		os.Exit(1)
	}
	if *concurrency <= 0 {
		fmt.Fprintln(os.Stderr, "concurrency must be positive")
		os.Exit(1)
	}
	if *width < grid.CellSize || *height < grid.CellSize {
		fmt.Fprintf(os.Stderr, "grid must be at least %dx%d\n", grid.CellSize, grid.CellSize)
		os.Exit(1)
	}
	if *pngDir != "" {
		if err := os.MkdirAll(*pngDir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "create png dir: %v\n", err)
			os.Exit(1)
		}
	}

	bounds := grid.FixedBounds{Width: *width, Height: *height}
	obstacleCfg := config.Default().Obstacles
	obstacleCfg.Threshold = *threshold
	base := obstacles.NewGenerator(obstacleCfg)
	pngOpts := png.Options{CellPixels: config.Default().Render.CellPixels, ShowGrid: true, Caption: true, Palette: png.DefaultPalette}

	jobs := make(chan runJob)
	go func() {
		defer close(jobs)
		rng := rand.New(rand.NewSource(*seed))
		cols, rows := *width/grid.CellSize, *height/grid.CellSize
		for i := 0; i < *totalRuns; i++ {
			start := grid.Pos(0, 0).Offset(rng.Intn(cols), rng.Intn(rows))
			target := grid.Pos(0, 0).Offset(rng.Intn(cols), rng.Intn(rows))
			jobs <- runJob{index: i, seed: rng.Int63(), start: start, target: target}
		}
	}()

	var (
		metrics      search.Metrics
		wg           sync.WaitGroup
		successes    int64
		failures     int64
		timeouts     int64
		totalSteps   int64
		totalCost    int64
		totalBlocked int64
		totalRunTime int64
		pngErrors    int64
	)
	quiet := log.New(io.Discard, "", 0)

	worker := func() {
		defer wg.Done()
		for job := range jobs {
			res, snap, err := profileRun(job, bounds, base, &metrics, quiet, *timeout)
			atomic.AddInt64(&totalBlocked, int64(res.blocked))
			atomic.AddInt64(&totalRunTime, int64(res.duration))
			if err != nil {
				atomic.AddInt64(&timeouts, 1)
				continue
			}
			switch res.state {
			case search.StateSucceeded:
				atomic.AddInt64(&successes, 1)
				atomic.AddInt64(&totalSteps, int64(res.steps))
				atomic.AddInt64(&totalCost, int64(res.cost))
			default:
				atomic.AddInt64(&failures, 1)
			}
			if *pngDir != "" {
				path := filepath.Join(*pngDir, fmt.Sprintf("run-%04d.png", job.index))
				if err := png.Save(path, snap, *width, *height, pngOpts); err != nil {
					atomic.AddInt64(&pngErrors, 1)
				}
			}
		}
	}

	wg.Add(*concurrency)
	for i := 0; i < *concurrency; i++ {
		go worker()
	}

	startWall := time.Now()
	wg.Wait()
	wallDuration := time.Since(startWall)

	runs := int64(*totalRuns)
	succ := atomic.LoadInt64(&successes)
	avgSteps, avgCost := 0.0, 0.0
	if succ > 0 {
		avgSteps = float64(atomic.LoadInt64(&totalSteps)) / float64(succ)
		avgCost = float64(atomic.LoadInt64(&totalCost)) / float64(succ)
	}
	stats := metrics.Snapshot()

	fmt.Println("== Grid Search Profile ==")
	fmt.Printf("Grid: %dx%d (%d cells)\n", *width, *height, (*width/grid.CellSize)*(*height/grid.CellSize))
	fmt.Printf("Runs: %d\n", *totalRuns)
	fmt.Printf("Concurrency: %d\n", *concurrency)
	fmt.Printf("Obstacle threshold: %.2f, average blocked cells: %.2f\n", *threshold, float64(atomic.LoadInt64(&totalBlocked))/float64(runs))
	fmt.Printf("Successes: %d, Failures: %d, Timeouts: %d\n", succ, atomic.LoadInt64(&failures), atomic.LoadInt64(&timeouts))
	fmt.Printf("Average path length (steps): %.2f\n", avgSteps)
	fmt.Printf("Average path cost: %.2f\n", avgCost)
	fmt.Printf("Average per-run duration: %s\n", time.Duration(atomic.LoadInt64(&totalRunTime)/runs))
	fmt.Printf("Wall clock duration: %s\n", wallDuration)
	fmt.Printf("Average nodes expanded: %.2f\n", float64(stats.NodesExpanded)/float64(runs))
	fmt.Printf("Average heuristic evaluations: %.2f\n", float64(stats.HeuristicEvaluations)/float64(runs))
	fmt.Printf("Frontier inserts: %d, replacements: %d\n", stats.FrontierInserts, stats.FrontierReplacements)
	fmt.Printf("Neighbors skipped: bounds %d, explored %d, blocked %d, not cheaper %d\n",
		stats.SkippedOutOfBounds, stats.SkippedExplored, stats.SkippedBlocked, stats.SkippedNotCheaper)
	if *pngDir != "" {
		fmt.Printf("PNG snapshots: %s (%d errors)\n", *pngDir, atomic.LoadInt64(&pngErrors))
	}
}

// profileRun builds a fresh engine for job, fills it with a noise field and
// runs one search to completion with no pacing.
func profileRun(job runJob, bounds grid.Bounds, base *obstacles.Generator, metrics *search.Metrics, logger *log.Logger, timeout time.Duration) (runResult, search.Snapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	engine := search.New(bounds,
		search.WithStepDelay(0),
		search.WithProfiler(metrics.Profiler()),
		search.WithLogger(logger),
		search.WithStart(job.start),
		search.WithTarget(job.target),
	)
	served := make(chan error, 1)
	go func() { served <- engine.Serve(ctx) }()
	defer func() {
		cancel()
		<-served
	}()

	ctrl := controller.New(engine, logger)
	blocked, err := ctrl.GenerateObstacles(ctx, base.WithSeed(job.seed))
	res := runResult{blocked: blocked}
	if err != nil {
		return res, search.Snapshot{}, err
	}

	began := time.Now()
	ctrl.Run()
	state, err := engine.Wait(ctx)
	res.duration = time.Since(began)
	if err != nil {
		return res, search.Snapshot{}, err
	}
	snap := engine.Snapshot()
	res.state = state
	res.cost = snap.Cost
	if len(snap.Path) > 0 {
		res.steps = len(snap.Path) - 1
	}
	return res, snap, nil
}
