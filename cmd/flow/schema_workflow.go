package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newSchemaWorkflowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema-workflow",
		Short: "Emit JSON Schema for the workflow document format",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printWorkflowSchema()
		},
	}
}

// workflowDocumentSchema is hand-written (not reflected) because the YAML
// document's own Go types (flow/workflow.Document) are decode targets, not
// parameter structs flow/registry's reflection tags were built for —
// spec.md §6 names this exact shape.
func printWorkflowSchema() error {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":           map[string]any{"type": "string"},
			"name":         map[string]any{"type": "string"},
			"entryGraphId": map[string]any{"type": "string"},
			"with":         map[string]any{"type": "object"},
			"graphs": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":   map[string]any{"type": "string"},
						"name": map[string]any{"type": "string"},
						"nodes": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"id":         map[string]any{"type": "string"},
									"name":       map[string]any{"type": "string"},
									"type":       map[string]any{"type": "string", "enum": []string{"action", "subGraph"}},
									"action":     map[string]any{"type": "string"},
									"with":       map[string]any{"type": "object"},
									"subGraphId": map[string]any{"type": "string"},
								},
								"required": []string{"id", "type"},
							},
						},
						"edges": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"id":       map[string]any{"type": "string"},
									"from":     map[string]any{"type": "string"},
									"to":       map[string]any{"type": "string"},
									"fromPort": map[string]any{"type": "string"},
									"toPort":   map[string]any{"type": "string"},
								},
								"required": []string{"id", "from", "to", "fromPort", "toPort"},
							},
						},
					},
					"required": []string{"id", "nodes", "edges"},
				},
			},
		},
		"required": []string{"id", "entryGraphId", "graphs"},
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(schema); err != nil {
		return fmt.Errorf("flow: encoding workflow schema: %w", err)
	}
	return nil
}
