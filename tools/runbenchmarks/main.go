// Command runbenchmarks loads a directory of geninstances-generated JSON
// scenarios, solves each one directly against the CBS/SIPP engine, and
// writes timing and cost results to a CSV file.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"time"

	"github.com/elektrokombinacija/cbs-sipp/internal/cbs"
	"github.com/elektrokombinacija/cbs-sipp/internal/gridworld"
	"github.com/elektrokombinacija/cbs-sipp/internal/heuristic"
	"github.com/elektrokombinacija/cbs-sipp/internal/logging"
	"github.com/elektrokombinacija/cbs-sipp/internal/metrics"
	"github.com/elektrokombinacija/cbs-sipp/internal/tsys"
)

type instanceFile struct {
	Name   string `json:"name"`
	Params struct {
		GridWidth  int `json:"grid_width"`
		GridHeight int `json:"grid_height"`
	} `json:"params"`
	Agents []struct {
		Start int `json:"start"`
		Goal  int `json:"goal"`
	} `json:"agents"`
}

type result struct {
	Timestamp string
	GoVersion string
	OS        string
	Arch      string
	Instance  string
	NumAgents int
	GridSize  string
	RuntimeMs float64
	Success   bool
	TotalCost float64
}

func loadInstance(path string) (*instanceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var inst instanceFile
	if err := json.Unmarshal(data, &inst); err != nil {
		return nil, err
	}
	return &inst, nil
}

func solve(inst *instanceFile) result {
	r := result{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		Instance:  inst.Name,
		NumAgents: len(inst.Agents),
		GridSize:  fmt.Sprintf("%dx%d", inst.Params.GridWidth, inst.Params.GridHeight),
	}

	g := gridworld.NewGrid(inst.Params.GridWidth, inst.Params.GridHeight)
	w := gridworld.NewWorld(g)
	pos := gridworld.Position(inst.Params.GridWidth)

	tasks := make([]tsys.Task, len(inst.Agents))
	for i, a := range inst.Agents {
		tasks[i] = tsys.Task{
			Initial: gridworld.State{V: gridworld.VertexID(a.Start)},
			Goal:    gridworld.State{V: gridworld.VertexID(a.Goal)},
		}
	}

	rev := w.Reverse()
	rec := metrics.NewUnregistered()
	pivots := make([]tsys.State, len(tasks))
	toPivots := make([]heuristic.Heuristic, len(tasks))
	for i, task := range tasks {
		guide := heuristic.NewSimpleHeuristic(task.Initial, pos, 1)
		pivots[i] = task.Goal
		toPivots[i] = heuristic.NewReverseResumableAStar(rev, task, guide, rec)
	}

	cfg, err := cbs.NewConfig(tasks, pivots, toPivots, 0.5)
	if err != nil {
		return r
	}

	engine := cbs.New(w, cbs.WithLogger(logging.Discard()), cbs.WithMetrics(rec))
	start := time.Now()
	engine.Init(&cfg)
	node, ok := engine.SolveIter(&cfg)
	r.RuntimeMs = float64(time.Since(start).Microseconds()) / 1000.0
	r.Success = ok
	if ok {
		r.TotalCost = node.TotalCost()
	}
	return r
}

func writeCSV(path string, results []result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"timestamp", "go_version", "os", "arch", "instance", "num_agents", "grid_size", "runtime_ms", "success", "total_cost"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.Timestamp, r.GoVersion, r.OS, r.Arch, r.Instance,
			strconv.Itoa(r.NumAgents), r.GridSize,
			strconv.FormatFloat(r.RuntimeMs, 'f', 3, 64),
			strconv.FormatBool(r.Success),
			strconv.FormatFloat(r.TotalCost, 'f', 1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	dir := flag.String("dir", "", "directory of geninstances JSON scenarios")
	out := flag.String("out", "benchmarks.csv", "output CSV path")
	flag.Parse()

	if *dir == "" {
		fmt.Fprintln(os.Stderr, "runbenchmarks: -dir is required")
		os.Exit(1)
	}

	entries, err := filepath.Glob(filepath.Join(*dir, "*.json"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "runbenchmarks:", err)
		os.Exit(1)
	}
	sort.Strings(entries)

	var results []result
	for _, path := range entries {
		inst, err := loadInstance(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "runbenchmarks: skipping %s: %v\n", path, err)
			continue
		}
		results = append(results, solve(inst))
	}

	if err := writeCSV(*out, results); err != nil {
		fmt.Fprintln(os.Stderr, "runbenchmarks:", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d results to %s\n", len(results), *out)
}
