// Command mapfsolve runs Conflict-Based Search with Safe-Interval Path
// Planning over a 4-connected grid, for a set of agents given as
// start-goal vertex pairs on the command line.
package main

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/elektrokombinacija/cbs-sipp/internal/cbs"
	"github.com/elektrokombinacija/cbs-sipp/internal/gridworld"
	"github.com/elektrokombinacija/cbs-sipp/internal/heuristic"
	"github.com/elektrokombinacija/cbs-sipp/internal/logging"
	"github.com/elektrokombinacija/cbs-sipp/internal/metrics"
	"github.com/elektrokombinacija/cbs-sipp/internal/tsys"
)

var cli struct {
	Width      int      `default:"10" help:"Grid width."`
	Height     int      `default:"10" help:"Grid height."`
	Agent      []string `required:"" sep:"none" placeholder:"SX,SY-GX,GY" help:"One agent's start and goal vertex, e.g. 0,0-9,9. Repeatable."`
	Precision  float64  `default:"0.5" help:"Half-width of the time window a branch constraint forbids around a conflict."`
	Verbose    bool     `short:"v" help:"Enable debug-level logging."`
	MetricsOn  string   `name:"metrics-addr" help:"If set, serve Prometheus metrics on this address (e.g. :9090) while solving."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("mapfsolve"),
		kong.Description("Conflict-Based Search over Safe-Interval Path Planning."),
	)

	logger := logging.New("mapfsolve")
	if cli.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	tasks, err := parseAgents(cli.Agent, cli.Width)
	if err != nil {
		logger.Fatal("invalid agent", "err", err)
	}

	g := gridworld.NewGrid(cli.Width, cli.Height)
	w := gridworld.NewWorld(g)
	pos := gridworld.Position(cli.Width)

	var recorder *metrics.Recorder
	if cli.MetricsOn != "" {
		reg := prometheus.NewRegistry()
		recorder = metrics.New(reg)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(cli.MetricsOn, mux); err != nil {
				logger.Error("metrics server stopped", "err", err)
			}
		}()
		logger.Info("serving metrics", "addr", cli.MetricsOn)
	} else {
		recorder = metrics.NewUnregistered()
	}

	pivots, toPivots := buildPivots(tasks, w, pos, recorder)

	cfg, err := cbs.NewConfig(tasks, pivots, toPivots, cli.Precision)
	if err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}

	engine := cbs.New(w, cbs.WithLogger(logger), cbs.WithMetrics(recorder))

	start := time.Now()
	engine.Init(&cfg)
	node, ok := engine.SolveIter(&cfg)
	elapsed := time.Since(start)

	if !ok {
		fmt.Println("no joint plan exists for these agents")
		os.Exit(1)
	}

	fmt.Printf("solved %d agents in %v, total cost %.1f\n", len(tasks), elapsed, node.TotalCost())
	for i, sol := range node.AgentSolutions(len(tasks)) {
		fmt.Printf("  agent %d: cost %.1f, %d waypoints\n", i, sol.Costs[len(sol.Costs)-1], len(sol.States))
	}
}

// buildPivots wires one Reverse Resumable A* instance per agent's goal
// into a shared differential-heuristic pool, every agent's LSIPP search
// draws on. Each instance is guided by a straight-line heuristic toward
// that agent's own start, not a shared one.
func buildPivots(tasks []tsys.Task, w *gridworld.World, pos heuristic.PositionFunc, rec *metrics.Recorder) ([]tsys.State, []heuristic.Heuristic) {
	pivots := make([]tsys.State, len(tasks))
	toPivots := make([]heuristic.Heuristic, len(tasks))
	rev := w.Reverse()
	for i, task := range tasks {
		guide := heuristic.NewSimpleHeuristic(task.Initial, pos, 1)
		pivots[i] = task.Goal
		toPivots[i] = heuristic.NewReverseResumableAStar(rev, task, guide, rec)
	}
	return pivots, toPivots
}

func parseAgents(raw []string, width int) ([]tsys.Task, error) {
	tasks := make([]tsys.Task, len(raw))
	for i, a := range raw {
		parts := strings.SplitN(a, "-", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("agent %q: expected SX,SY-GX,GY", a)
		}
		start, err := parseVertex(parts[0], width)
		if err != nil {
			return nil, fmt.Errorf("agent %q: start: %w", a, err)
		}
		goal, err := parseVertex(parts[1], width)
		if err != nil {
			return nil, fmt.Errorf("agent %q: goal: %w", a, err)
		}
		tasks[i] = tsys.Task{Initial: start, Goal: goal}
	}
	return tasks, nil
}

func parseVertex(raw string, width int) (gridworld.State, error) {
	parts := strings.SplitN(raw, ",", 2)
	if len(parts) != 2 {
		return gridworld.State{}, fmt.Errorf("expected X,Y, got %q", raw)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return gridworld.State{}, err
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return gridworld.State{}, err
	}
	return gridworld.State{V: gridworld.VertexID(y*width + x)}, nil
}
