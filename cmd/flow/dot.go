package main

import (
	"context"
	"fmt"

	"github.com/reearth/reearth-flow-go/flow/registry"
	"github.com/reearth/reearth-flow-go/flow/runtime"
	"github.com/reearth/reearth-flow-go/flow/workflow"
	"github.com/spf13/cobra"
)

func newDotCmd() *cobra.Command {
	var workflowURI string
	cmd := &cobra.Command{
		Use:   "dot",
		Short: "Print a workflow's DAG schema as Graphviz DOT",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printDot(cmd.Context(), workflowURI)
		},
	}
	cmd.Flags().StringVar(&workflowURI, "workflow", "", "Storage URI of the workflow document (required)")
	_ = cmd.MarkFlagRequired("workflow")
	return cmd
}

func printDot(ctx context.Context, workflowURI string) error {
	res := newResources("")
	_, graph, err := workflow.Load(ctx, res.storage, workflowURI, nil)
	if err != nil {
		return err
	}
	nodeCtxFor := nodeContextFactory("dot", graph, res)
	schema, err := runtime.BuildDagSchema(graph, nodeCtxFor, registry.Global())
	if err != nil {
		return fmt.Errorf("flow: building dag schema: %w", err)
	}
	fmt.Print(schema.ToDot())
	return nil
}
