// Package attribute implements the attribute-manipulation processor family:
// aggregation, file-path metadata extraction, and attribute keep/map
// transforms. Grounded on original_source/worker/crates/action-processor/
// src/attribute/*.rs.
package attribute

import (
	"context"
	"strings"
	"sync"

	"github.com/reearth/reearth-flow-go/flow/expr"
	"github.com/reearth/reearth-flow-go/flow/registry"
	"github.com/reearth/reearth-flow-go/flow/runtime"
	"github.com/reearth/reearth-flow-go/flow/types"
)

func init() {
	registry.RegisterProcessor("AttributeAggregator", &AggregatorFactory{})
}

// AggregateMethod picks how multiple features sharing an aggregate key are
// combined, mirroring aggregator.rs's Method enum.
type AggregateMethod string

const (
	MethodMax   AggregateMethod = "max"
	MethodMin   AggregateMethod = "min"
	MethodCount AggregateMethod = "count"
)

// AggregateAttributeParam names one attribute-value expression whose result
// becomes part of the aggregate key, and the attribute name the finished
// feature carries it under.
type AggregateAttributeParam struct {
	NewAttribute   string `flow:"newAttribute,required"`
	AttributeValue string `flow:"attributeValue,required"`
}

// AggregatorParam is the `with` shape for AttributeAggregator, matching
// aggregator.rs's AttributeAggregatorParam field-for-field (renamed to Go
// idiom; JSON keys stay camelCase via the flow tag).
type AggregatorParam struct {
	AggregateAttributes  []AggregateAttributeParam `flow:"aggregateAttributes,required"`
	Calculation          string                    `flow:"calculation,required"`
	CalculationAttribute string                    `flow:"calculationAttribute,required"`
	Method               AggregateMethod           `flow:"method,required"`
}

// AggregatorFactory builds AttributeAggregator processors.
type AggregatorFactory struct{}

func (AggregatorFactory) ActionName() string  { return "AttributeAggregator" }
func (AggregatorFactory) Description() string { return "Aggregates features by attributes" }
func (AggregatorFactory) Categories() []string { return []string{"Attribute"} }
func (AggregatorFactory) ParameterSchema() runtime.ParamSchema {
	return registry.BuildParamSchema(AggregatorParam{})
}
func (AggregatorFactory) InputPorts() []runtime.Port  { return []runtime.Port{runtime.PortDefault} }
func (AggregatorFactory) OutputPorts() []runtime.Port { return []runtime.Port{runtime.PortDefault} }

func (f AggregatorFactory) BuildProcessor(nodeCtx runtime.NodeContext, with map[string]types.Value) (runtime.Processor, error) {
	params, err := decodeAggregatorParam(with)
	if err != nil {
		return nil, runtime.FactoryError(nodeCtx.NodeID, "decoding AttributeAggregator params", err)
	}

	compiledAttrs := make([]compiledAggregateAttribute, 0, len(params.AggregateAttributes))
	for _, a := range params.AggregateAttributes {
		script, err := nodeCtx.Expr.Compile(a.AttributeValue)
		if err != nil {
			return nil, runtime.FactoryError(nodeCtx.NodeID, "compiling aggregateAttributes expression", err)
		}
		compiledAttrs = append(compiledAttrs, compiledAggregateAttribute{
			newAttribute: types.NewAttribute(a.NewAttribute),
			script:       script,
		})
	}
	calc, err := nodeCtx.Expr.Compile(params.Calculation)
	if err != nil {
		return nil, runtime.FactoryError(nodeCtx.NodeID, "compiling calculation expression", err)
	}

	return &Aggregator{
		engine:               nodeCtx.Expr,
		aggregateAttributes:  compiledAttrs,
		calculation:          calc,
		calculationAttribute: types.NewAttribute(params.CalculationAttribute),
		method:               params.Method,
		buffer:               make(map[string]int64),
	}, nil
}

type compiledAggregateAttribute struct {
	newAttribute types.Attribute
	script       *expr.CompiledScript
}

// Aggregator buffers a running max/min/count per aggregate key, emitting
// one synthesized feature per key from Finish. It runs single-threaded
// (num_threads() == 1, as in aggregator.rs); the buffer is additionally
// guarded by mu.
type Aggregator struct {
	engine               *expr.Engine
	aggregateAttributes  []compiledAggregateAttribute
	calculation          *expr.CompiledScript
	calculationAttribute types.Attribute
	method               AggregateMethod

	mu     sync.Mutex
	buffer map[string]int64
}

func (a *Aggregator) Initialize(ctx context.Context, nodeCtx runtime.NodeContext) error { return nil }
func (a *Aggregator) NumThreads() int                                                  { return 1 }
func (a *Aggregator) Name() string                                                     { return "AttributeAggregator" }

func (a *Aggregator) Process(ctx context.Context, execCtx runtime.ExecutorContext, fwd runtime.Forwarder) error {
	scope := a.engine.NewScope(execCtx.Feature.Attributes, nil)

	keyParts := make([]string, 0, len(a.aggregateAttributes))
	for _, attr := range a.aggregateAttributes {
		v, err := scope.EvalString(attr.script)
		if err != nil {
			return runtime.ProcessError(execCtx.NodeID, "evaluating aggregateAttributes expression", err)
		}
		keyParts = append(keyParts, v)
	}
	calc, err := scope.EvalInt(a.calculation)
	if err != nil {
		return runtime.ProcessError(execCtx.NodeID, "evaluating calculation expression", err)
	}
	key := strings.Join(keyParts, "\t")

	a.mu.Lock()
	defer a.mu.Unlock()
	switch a.method {
	case MethodMax:
		if cur, ok := a.buffer[key]; !ok || calc > cur {
			a.buffer[key] = calc
		}
	case MethodMin:
		if cur, ok := a.buffer[key]; !ok || calc < cur {
			a.buffer[key] = calc
		}
	case MethodCount:
		a.buffer[key] += calc
	}
	return nil
}

func (a *Aggregator) Finish(ctx context.Context, nodeCtx runtime.NodeContext, fwd runtime.Forwarder) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for key, value := range a.buffer {
		feature := types.New()
		parts := strings.Split(key, "\t")
		attrs := feature.CloneAttributes()
		for i, attr := range a.aggregateAttributes {
			if i < len(parts) {
				attrs[attr.newAttribute] = types.String(parts[i])
			}
		}
		attrs[a.calculationAttribute] = types.Int(value)
		feature = feature.WithAttributes(attrs)
		if err := fwd.Send(ctx, runtime.PortDefault, feature); err != nil {
			return err
		}
	}
	return nil
}

func decodeAggregatorParam(with map[string]types.Value) (AggregatorParam, error) {
	var p AggregatorParam
	if v, ok := with["calculation"]; ok {
		p.Calculation, _ = v.AsString()
	}
	if v, ok := with["calculationAttribute"]; ok {
		p.CalculationAttribute, _ = v.AsString()
	}
	if v, ok := with["method"]; ok {
		s, _ := v.AsString()
		p.Method = AggregateMethod(s)
	}
	if v, ok := with["aggregateAttributes"]; ok {
		items, _ := v.AsArray()
		for _, item := range items {
			m, _ := item.AsMap()
			var aa AggregateAttributeParam
			if nv, ok := m["newAttribute"]; ok {
				aa.NewAttribute, _ = nv.AsString()
			}
			if av, ok := m["attributeValue"]; ok {
				aa.AttributeValue, _ = av.AsString()
			}
			p.AggregateAttributes = append(p.AggregateAttributes, aa)
		}
	}
	return p, nil
}
