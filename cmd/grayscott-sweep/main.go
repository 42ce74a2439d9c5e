// Command grayscott-sweep runs a feed x kill grid of sessions in parallel and
// ranks the resulting patterns.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"gray-scott/internal/compute"
	"gray-scott/internal/core"
	"gray-scott/internal/sims/grayscott"
)

type axis struct {
	min, max, step float64
}

func (a axis) values() []float64 {
	if a.step <= 0 || a.max < a.min {
		return []float64{a.min}
	}
	n := int((a.max-a.min)/a.step+1e-9) + 1
	out := make([]float64, n)
	for i := range out {
		out[i] = a.min + float64(i)*a.step
	}
	return out
}

type scenarioResult struct {
	feed, kill float64
	stats      grayscott.FieldStats
	err        error
}

func (r scenarioResult) String() string {
	return fmt.Sprintf("feed=%.4f kill=%.4f meanV=%.4f stdV=%.4f coverage=%.3f",
		r.feed, r.kill, r.stats.Mean, r.stats.StdDev, r.stats.Coverage)
}

func main() {
	base := grayscott.DefaultConfig()
	base.Width, base.Height = 96, 96
	base.Steps = 2000
	base.Bind(flag.CommandLine)
	feeds := axis{min: 0.02, max: 0.06, step: 0.005}
	kills := axis{min: 0.05, max: 0.065, step: 0.0025}
	flag.Float64Var(&feeds.min, "feed-min", feeds.min, "first feed rate")
	flag.Float64Var(&feeds.max, "feed-max", feeds.max, "last feed rate")
	flag.Float64Var(&feeds.step, "feed-step", feeds.step, "feed rate increment")
	flag.Float64Var(&kills.min, "kill-min", kills.min, "first kill rate")
	flag.Float64Var(&kills.max, "kill-max", kills.max, "last kill rate")
	flag.Float64Var(&kills.step, "kill-step", kills.step, "kill rate increment")
	workers := flag.Int("workers", runtime.NumCPU(), "scenarios run concurrently")
	top := flag.Int("top", 5, "results to print")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	base, warnings := base.Sanitize()
	for _, w := range warnings {
		core.Logger().Warn("parameter clamped", "warning", w)
	}

	var sets []grayscott.Params
	for _, f := range feeds.values() {
		for _, k := range kills.values() {
			p := base.Params
			p.Feed, p.Kill = float32(f), float32(k)
			sets = append(sets, p)
		}
	}
	fmt.Printf("Sweeping %d parameter sets (%d workers, %d steps on %dx%d)\n",
		len(sets), *workers, base.Steps, base.Width, base.Height)

	start := time.Now()
	results, err := sweep(context.Background(), base, sets, *workers)
	if err != nil {
		core.Logger().Error("sweep failed", "err", err)
		os.Exit(1)
	}
	elapsed := time.Since(start)

	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			core.Logger().Warn("scenario failed", "feed", r.feed, "kill", r.kill, "err", r.err)
		}
	}
	rank(results)

	fmt.Printf("\nTop %d results (elapsed %s, %d failed):\n", *top, elapsed.Round(time.Millisecond), failed)
	for i := 0; i < len(results) && i < *top; i++ {
		if results[i].err != nil {
			break
		}
		fmt.Printf("%2d) %s\n", i+1, results[i])
	}
}

// sweep runs one session per parameter set, each on its own serial backend,
// with at most workers sessions in flight. Results keep the order of sets.
func sweep(ctx context.Context, base grayscott.Config, sets []grayscott.Params, workers int) ([]scenarioResult, error) {
	results := make([]scenarioResult, len(sets))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, params := range sets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cfg := base
			cfg.Params = params
			results[i] = runScenario(cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// runScenario clamps cfg and runs it to its target in one invocation. The
// result reports the coefficients that actually ran.
func runScenario(cfg grayscott.Config) scenarioResult {
	cfg, warnings := cfg.Sanitize()
	for _, w := range warnings {
		core.Logger().Warn("parameter clamped", "warning", w)
	}
	res := scenarioResult{feed: float64(cfg.Params.Feed), kill: float64(cfg.Params.Kill)}
	cfg.BatchSize = 0
	ctrl := grayscott.NewControllerWithBackend(compute.BackendSerial)
	defer ctrl.Close()

	out, err := ctrl.Invoke(grayscott.Input{Run: true, Config: cfg})
	if err != nil {
		res.err = err
		return res
	}
	res.stats = grayscott.Summarize(out.V, grayscott.CoverageThreshold)
	return res
}

// rank orders successful results by V standard deviation, then coverage;
// failures sort last.
func rank(results []scenarioResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if (a.err == nil) != (b.err == nil) {
			return a.err == nil
		}
		if a.stats.StdDev != b.stats.StdDev {
			return a.stats.StdDev > b.stats.StdDev
		}
		return a.stats.Coverage > b.stats.Coverage
	})
}
