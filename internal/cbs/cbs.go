// Package cbs implements the high-level Conflict-Based Search loop: a
// best-first search over a tree of per-agent constraint deltas, with each
// node's agents replanned via LSIPP and conflicts between their solutions
// detected and branched on until a conflict-free node is found.
package cbs

import (
	"container/heap"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/elektrokombinacija/cbs-sipp/internal/constraint"
	"github.com/elektrokombinacija/cbs-sipp/internal/heuristic"
	"github.com/elektrokombinacija/cbs-sipp/internal/logging"
	"github.com/elektrokombinacija/cbs-sipp/internal/lsipp"
	"github.com/elektrokombinacija/cbs-sipp/internal/metrics"
	"github.com/elektrokombinacija/cbs-sipp/internal/tsys"
)

// Config is a full CBS problem: one task per agent, plus the shared pool
// of differential-heuristic pivots (typically one per agent's goal) every
// agent's LSIPP calls draw on.
type Config struct {
	Tasks             []tsys.Task
	Pivots            []tsys.State
	HeuristicToPivots []heuristic.Heuristic
	Precision         tsys.Duration

	// Frozen marks agents whose plan is exogenously pinned and must never
	// be replanned (e.g. a sub-plan fixed by an outer scheduler). Nil or
	// the wrong length is treated as "nobody is frozen". Conflicts
	// involving a frozen agent classify as Frozen, and branching only
	// ever generates a child for the non-frozen side.
	Frozen []bool
}

// NewConfig validates and builds a Config.
func NewConfig(tasks []tsys.Task, pivots []tsys.State, heuristicToPivots []heuristic.Heuristic, precision tsys.Duration) (Config, error) {
	if len(pivots) != len(heuristicToPivots) {
		return Config{}, fmt.Errorf("cbs: pivots and heuristic_to_pivots length mismatch: %d vs %d", len(pivots), len(heuristicToPivots))
	}
	return Config{Tasks: tasks, Pivots: pivots, HeuristicToPivots: heuristicToPivots, Precision: precision}, nil
}

func (c *Config) isFrozen(agent int) bool {
	return len(c.Frozen) == len(c.Tasks) && agent >= 0 && agent < len(c.Frozen) && c.Frozen[agent]
}

// Engine runs Conflict-Based Search over a fixed transition system. Init
// must be called before the first SolveIter, and again to start a fresh
// search against a new Config.
type Engine struct {
	ts      tsys.TransitionSystem
	solvers []*lsipp.Solver
	queue   nodeQueue

	logger  *log.Logger
	metrics *metrics.Recorder
	runID   string
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger overrides the engine's default stderr logger.
func WithLogger(l *log.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithMetrics overrides the engine's default unregistered Recorder.
func WithMetrics(r *metrics.Recorder) Option { return func(e *Engine) { e.metrics = r } }

// New returns a CBS engine over ts.
func New(ts tsys.TransitionSystem, opts ...Option) *Engine {
	e := &Engine{ts: ts, logger: logging.New("cbs"), metrics: metrics.NewUnregistered()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// ConflictBasedSearch is an alias for New kept for callers that spell out
// the algorithm name at the construction site.
func ConflictBasedSearch(ts tsys.TransitionSystem, opts ...Option) *Engine {
	return New(ts, opts...)
}

// Init plans every agent's unconstrained path and seeds the open queue
// with the root node. If any agent is infeasible even with no constraints,
// the queue is left empty and the first SolveIter call returns (nil, false)
// immediately.
func (e *Engine) Init(cfg *Config) {
	e.queue = nil
	e.solvers = make([]*lsipp.Solver, len(cfg.Tasks))
	for i := range cfg.Tasks {
		e.solvers[i] = lsipp.NewSolver(e.ts)
	}
	e.runID = uuid.NewString()
	e.logger.Info("initializing", "run", e.runID, "agents", len(cfg.Tasks))

	root := &Node{agent: -1, solutions: map[int]lsipp.Solution{}}
	var total tsys.Cost
	for i, task := range cfg.Tasks {
		lcfg := lsipp.NewConfigWithPivots(task, constraint.NewSet(), nil, cfg.Pivots, cfg.HeuristicToPivots, cfg.Precision)
		sol, ok := e.solvers[i].Solve(&lcfg)
		e.metrics.RecordLSIPPInvocation()
		if !ok {
			e.logger.Info("search exhausted at root", "run", e.runID, "agent", i)
			return
		}
		root.solutions[i] = sol
		total += sol.Cost
	}
	root.totalCost = total
	root.conflicts = e.detectConflicts(cfg, root)

	e.metrics.RecordNodeCreated()
	heap.Push(&e.queue, root)
}

// SolveIter pops nodes from the open queue until one is conflict-free and
// returns it with ok=true. Nodes that still have conflicts are never
// returned, so a single call may pop and expand many nodes. For each such
// node its leading conflict is branched on, the resulting children (at
// most two, fewer if a branch is infeasible or skipped for being the
// frozen side) are pushed, and the loop continues. Returns (nil, false)
// once the open queue is exhausted without finding a solution.
func (e *Engine) SolveIter(cfg *Config) (*Node, bool) {
	for e.queue.Len() > 0 {
		node := heap.Pop(&e.queue).(*Node)
		e.metrics.RecordNodePopped()

		if len(node.conflicts) == 0 {
			e.logger.Info("solution found", "run", e.runID, "cost", node.totalCost)
			return node, true
		}

		c := node.conflicts[0]
		e.metrics.RecordConflict(c.Type.String())
		e.logger.Debug("branching", "run", e.runID, "type", c.Type, "agentA", c.AgentA, "agentB", c.AgentB)

		for _, side := range []struct {
			agent int
			move  Move
		}{{c.AgentA, c.MoveA}, {c.AgentB, c.MoveB}} {
			if c.Type == Frozen && cfg.isFrozen(side.agent) {
				continue
			}
			child, ok := e.expand(cfg, node, side.agent, side.move, c.IsEdge)
			if !ok {
				e.logger.Debug("branch infeasible", "run", e.runID, "agent", side.agent)
				continue
			}
			e.metrics.RecordNodeCreated()
			heap.Push(&e.queue, child)
		}
	}
	e.logger.Info("search exhausted", "run", e.runID)
	return nil, false
}

func buildConstraint(agent int, m Move, isEdge bool, precision tsys.Duration) constraint.Constraint {
	if isEdge {
		return constraint.NewActionConstraint(agent, m.From, m.To, tsys.Interval{Start: m.Interval.Start, End: m.Interval.Start})
	}
	return constraint.NewStateConstraint(agent, m.To, tsys.Interval{Start: m.Interval.End - precision, End: m.Interval.End + precision})
}

func (e *Engine) expand(cfg *Config, parent *Node, agent int, move Move, isEdge bool) (*Node, bool) {
	hypo := buildConstraint(agent, move, isEdge, cfg.Precision)
	child := &Node{
		parent:    parent,
		agent:     agent,
		delta:     []constraint.Constraint{hypo},
		solutions: map[int]lsipp.Solution{},
	}

	set, landmarks := child.GetConstraints(agent)
	lcfg := lsipp.NewConfigWithPivots(cfg.Tasks[agent], set, landmarks, cfg.Pivots, cfg.HeuristicToPivots, cfg.Precision)
	sol, ok := e.solvers[agent].Solve(&lcfg)
	e.metrics.RecordLSIPPInvocation()
	if !ok {
		return nil, false
	}
	child.solutions[agent] = sol

	parentSol := parent.GetSolutions(len(cfg.Tasks))[agent]
	child.totalCost = parent.totalCost - parentSol.Cost + sol.Cost
	child.conflicts = e.detectConflicts(cfg, child)
	return child, true
}
