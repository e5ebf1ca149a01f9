package main

// Blank imports register every built-in action factory into
// flow/registry.Global() via each package's init(), mirroring
// rakunlabs-at's node-package registration shape
// (internal/service/workflow/node.go importing its nodes/ siblings).
import (
	_ "github.com/reearth/reearth-flow-go/flow/processors/attribute"
	_ "github.com/reearth/reearth-flow-go/flow/processors/feature"
	_ "github.com/reearth/reearth-flow-go/flow/processors/file"
	_ "github.com/reearth/reearth-flow-go/flow/processors/geometry"
	_ "github.com/reearth/reearth-flow-go/flow/processors/xml"
)
