package main

import (
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/reearth/reearth-flow-go/flow/expr"
	"github.com/reearth/reearth-flow-go/flow/kvstore"
	"github.com/reearth/reearth-flow-go/flow/logging"
	"github.com/reearth/reearth-flow-go/flow/runtime"
	"github.com/reearth/reearth-flow-go/flow/storage"
)

// resources bundles the shared, reference-counted handles every node's
// NodeContext carries (spec.md §5), built once per CLI invocation.
type resources struct {
	storage *storage.Resolver
	expr    *expr.Engine
	kv      kvstore.Store
	logging *logging.Root
}

func newResources(logRoot string) *resources {
	logging.ApplyLevelFromEnv()
	return &resources{
		storage: storage.New(),
		expr:    expr.NewEngine(),
		kv:      kvstore.NewMemStore(),
		logging: logging.NewRoot(logRoot),
	}
}

// nodeContextFactory returns a per-node NodeContext constructor closing
// over res and graph, looking up each node's declared `with` params by id
// (spec.md §5: contexts are cloned per message, cheap by-value/reference
// handles).
func nodeContextFactory(jobID string, graph runtime.GraphDef, res *resources) func(nodeID string) runtime.NodeContext {
	index := make(map[string]runtime.NodeDef, len(graph.Nodes))
	for _, n := range graph.Nodes {
		index[n.ID] = n
	}
	return func(nodeID string) runtime.NodeContext {
		def := index[nodeID]
		actionLogger, err := res.logging.ActionLogger(jobID, def.ActionName)
		if err != nil {
			actionLogger = res.logging.Base()
		}
		return runtime.NodeContext{
			RunID:   jobID,
			NodeID:  nodeID,
			Expr:    res.expr,
			Storage: res.storage,
			KV:      res.kv,
			Logger:  actionLogger,
			With:    def.With,
		}
	}
}

// newJobID mints a fresh run id for each invocation.
func newJobID() string { return uuid.New().String() }

// parseVars turns a repeated --var key=value flag into a map, used to
// override the workflow document's `with` bag (SPEC_FULL.md §6.2).
func parseVars(pairs []string) map[string]string {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		for i := 0; i < len(p); i++ {
			if p[i] == '=' {
				out[p[:i]] = p[i+1:]
				break
			}
		}
	}
	return out
}

func atoiOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

// flowNumThreadsFromEnv reads FLOW_NUM_THREADS, the Go-idiomatic rename of
// the original's RAYON_NUM_THREADS (SPEC_FULL.md §6.3). A positive value is
// passed to runtime.WithThreadPoolSize, which the executor does not read
// (see ExecutorOptions.ThreadPoolSize); 0 passes nothing.
func flowNumThreadsFromEnv() int {
	return atoiOr(os.Getenv("FLOW_NUM_THREADS"), 0)
}
