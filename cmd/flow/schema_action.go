package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/reearth/reearth-flow-go/flow/registry"
	"github.com/spf13/cobra"
)

// actionSchema is the JSON shape emitted per registered factory, covering
// every field runtime.Factory declares.
type actionSchema struct {
	ActionName  string   `json:"actionName"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
	Parameters  any      `json:"parameters"`
	InputPorts  []string `json:"inputPorts"`
	OutputPorts []string `json:"outputPorts"`
}

func newSchemaActionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema-action",
		Short: "Emit JSON Schema for every registered action's `with` parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printActionSchemas()
		},
	}
}

func printActionSchemas() error {
	reg := registry.Global()
	var out []actionSchema
	for _, name := range reg.ActionNames() {
		_, factory, ok := reg.Factory(name)
		if !ok {
			continue
		}
		out = append(out, actionSchema{
			ActionName:  factory.ActionName(),
			Description: factory.Description(),
			Categories:  factory.Categories(),
			Parameters:  factory.ParameterSchema(),
			InputPorts:  portsToStrings(factory.InputPorts()),
			OutputPorts: portsToStrings(factory.OutputPorts()),
		})
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("flow: encoding action schemas: %w", err)
	}
	return nil
}

func portsToStrings[P ~string](ports []P) []string {
	out := make([]string, len(ports))
	for i, p := range ports {
		out[i] = string(p)
	}
	return out
}
