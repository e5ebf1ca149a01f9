package main

import (
	"context"
	"fmt"

	"github.com/reearth/reearth-flow-go/flow/emit"
	"github.com/reearth/reearth-flow-go/flow/metrics"
	"github.com/reearth/reearth-flow-go/flow/registry"
	"github.com/reearth/reearth-flow-go/flow/runtime"
	"github.com/reearth/reearth-flow-go/flow/workflow"
	"github.com/spf13/cobra"
)

type runOptions struct {
	workflowURI   string
	vars          []string
	stateRoot     string
	logRoot       string
	errorThresh   int
	channelBuffer int
}

func newRunCmd() *cobra.Command {
	opts := runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a workflow document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.workflowURI, "workflow", "", "Storage URI of the workflow document (required)")
	cmd.Flags().StringArrayVar(&opts.vars, "var", nil, "Override a workflow `with` parameter: key=value")
	cmd.Flags().StringVar(&opts.stateRoot, "state-root", "", "Storage URI root for checkpoint state (accepted but not used: this command writes no checkpoints)")
	cmd.Flags().StringVar(&opts.logRoot, "log-root", "", "Directory root for per-action log files")
	cmd.Flags().IntVar(&opts.errorThresh, "error-threshold", 0, "Cancel the run once cross-run errors exceed this count (0 disables)")
	cmd.Flags().IntVar(&opts.channelBuffer, "channel-buffer", 64, "Per-edge channel buffer size")
	_ = cmd.MarkFlagRequired("workflow")
	return cmd
}

func runWorkflow(ctx context.Context, opts runOptions) error {
	res := newResources(opts.logRoot)
	defer res.logging.Close()

	_, graph, err := workflow.Load(ctx, res.storage, opts.workflowURI, parseVars(opts.vars))
	if err != nil {
		return err
	}

	jobID := newJobID()
	nodeCtxFor := nodeContextFactory(jobID, graph, res)

	schema, err := runtime.BuildDagSchema(graph, nodeCtxFor, registry.Global())
	if err != nil {
		return fmt.Errorf("flow: building dag schema: %w", err)
	}
	for _, w := range schema.Warnings() {
		res.logging.Base().Warn(w)
	}

	hub := emit.NewHub(256)
	defer hub.Close()
	hub.Subscribe(emit.NewLogEmitter(res.logging.Base()))

	collector := metrics.New(nil)

	execOpts := []runtime.Option{runtime.WithChannelBufferSize(opts.channelBuffer)}
	if opts.errorThresh > 0 {
		execOpts = append(execOpts, runtime.WithErrorThreshold(opts.errorThresh))
	}
	if n := flowNumThreadsFromEnv(); n > 0 {
		execOpts = append(execOpts, runtime.WithThreadPoolSize(n))
	}

	executor := runtime.NewExecutor(schema, hub, collector, execOpts...)
	report, err := executor.Run(ctx, jobID, nodeCtxFor)
	if report == nil {
		return fmt.Errorf("flow: run %s: %w", jobID, err)
	}

	fmt.Printf("run %s: cancelled=%v\n", report.RunID, report.Cancelled)
	for nodeID, state := range report.NodeStates {
		fmt.Printf("  %s: %s (errors=%d)\n", nodeID, state, report.ErrorCounts[nodeID])
	}
	if report.Cancelled {
		return fmt.Errorf("flow: run %s cancelled: error threshold exceeded", report.RunID)
	}
	if err != nil {
		return fmt.Errorf("flow: run %s: %w", jobID, err)
	}
	return nil
}
