// Package file implements FileReader, a source that reads features from a
// CSV/TSV/newline-delimited-JSON document addressed by a storage URI.
// Grounded on
// original_source/worker/crates/action-source/src/file/reader/runner.rs,
// reduced to the csv/tsv/json formats (citygml is handled separately by
// flow/processors/xml, out of scope for this package per SPEC_FULL.md §9.1's
// note that CityGML parsing is contract-only).
package file

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/reearth/reearth-flow-go/flow/registry"
	"github.com/reearth/reearth-flow-go/flow/runtime"
	"github.com/reearth/reearth-flow-go/flow/types"
	"github.com/tidwall/gjson"
)

func init() {
	registry.RegisterSource("FileReader", &ReaderFactory{})
}

// Format selects the document shape FileReader parses, mirroring
// runner.rs's FileReader enum tag.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatJSON Format = "json"
)

// ReaderParam holds FileReader's `with` parameters: dataset is an
// expression-evaluated path/URI (common_property.dataset in runner.rs),
// format picks the parser.
type ReaderParam struct {
	Dataset string `flow:"dataset,required"`
	Format  Format `flow:"format,required"`
}

type ReaderFactory struct{}

func (ReaderFactory) ActionName() string  { return "FileReader" }
func (ReaderFactory) Description() string { return "Reads features from a CSV/TSV/JSON document" }
func (ReaderFactory) Categories() []string { return []string{"File"} }
func (ReaderFactory) ParameterSchema() runtime.ParamSchema {
	return registry.BuildParamSchema(ReaderParam{})
}
func (ReaderFactory) InputPorts() []runtime.Port  { return nil }
func (ReaderFactory) OutputPorts() []runtime.Port { return []runtime.Port{runtime.PortDefault} }

func (f ReaderFactory) BuildSource(nodeCtx runtime.NodeContext, with map[string]types.Value) (runtime.Source, error) {
	datasetValue, ok := with["dataset"]
	if !ok {
		return nil, runtime.FactoryError(nodeCtx.NodeID, "missing required parameter `dataset`", nil)
	}
	dataset, ok := datasetValue.AsString()
	if !ok {
		return nil, runtime.FactoryError(nodeCtx.NodeID, "`dataset` must be a string", nil)
	}
	formatValue, ok := with["format"]
	if !ok {
		return nil, runtime.FactoryError(nodeCtx.NodeID, "missing required parameter `format`", nil)
	}
	formatStr, ok := formatValue.AsString()
	if !ok {
		return nil, runtime.FactoryError(nodeCtx.NodeID, "`format` must be a string", nil)
	}
	format := Format(formatStr)
	switch format {
	case FormatCSV, FormatTSV, FormatJSON:
	default:
		return nil, runtime.FactoryError(nodeCtx.NodeID, "`format` must be \"csv\", \"tsv\", or \"json\"", nil)
	}
	return &Reader{dataset: dataset, format: format}, nil
}

// Reader streams features parsed from a storage blob. The dataset path is
// evaluated as an expression against the run's engine before resolution,
// matching get_input_path's expr_engine.eval_scope call in runner.rs.
type Reader struct {
	dataset string
	format  Format
}

func (r *Reader) Initialize(ctx context.Context, nodeCtx runtime.NodeContext) error { return nil }

func (r *Reader) SerializeState() ([]byte, error) { return nil, nil }

func (r *Reader) Start(ctx context.Context, nodeCtx runtime.NodeContext, fwd runtime.Forwarder) error {
	path := r.dataset
	if nodeCtx.Expr != nil {
		if compiled, err := nodeCtx.Expr.Compile(r.dataset); err == nil {
			scope := nodeCtx.Expr.NewScope(nil, nil)
			if s, err := scope.EvalString(compiled); err == nil {
				path = s
			}
		}
	}
	data, err := nodeCtx.Storage.Read(ctx, path)
	if err != nil {
		return runtime.SourceError(nodeCtx.NodeID, fmt.Sprintf("reading %q", path), err)
	}
	switch r.format {
	case FormatCSV:
		return r.readDelimited(ctx, data, ',', fwd)
	case FormatTSV:
		return r.readDelimited(ctx, data, '\t', fwd)
	case FormatJSON:
		return r.readJSON(ctx, data, fwd)
	default:
		return runtime.SourceError(nodeCtx.NodeID, "unknown format", nil)
	}
}

func (r *Reader) readDelimited(ctx context.Context, data []byte, delim rune, fwd runtime.Forwarder) error {
	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return runtime.SourceError("", "reading header row", err)
	}
	for {
		record, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return runtime.SourceError("", "reading row", err)
		}
		feature := types.New()
		attrs := feature.CloneAttributes()
		for i, col := range header {
			if i < len(record) {
				attrs[types.NewAttribute(col)] = types.String(record[i])
			}
		}
		feature = feature.WithAttributes(attrs)
		if err := fwd.Send(ctx, runtime.PortDefault, feature); err != nil {
			return err
		}
	}
}

// readJSON accepts either a JSON array of objects or newline-delimited JSON
// objects, using gjson to avoid committing to either shape ahead of time.
func (r *Reader) readJSON(ctx context.Context, data []byte, fwd runtime.Forwarder) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		result := gjson.ParseBytes(trimmed)
		var sendErr error
		result.ForEach(func(_, value gjson.Result) bool {
			if err := fwd.Send(ctx, runtime.PortDefault, featureFromJSON(value)); err != nil {
				sendErr = err
				return false
			}
			return true
		})
		return sendErr
	}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		value := gjson.ParseBytes(line)
		if err := fwd.Send(ctx, runtime.PortDefault, featureFromJSON(value)); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func featureFromJSON(value gjson.Result) types.Feature {
	feature := types.New()
	attrs := feature.CloneAttributes()
	value.ForEach(func(key, val gjson.Result) bool {
		attrs[types.NewAttribute(key.String())] = valueFromJSON(val)
		return true
	})
	return feature.WithAttributes(attrs)
}

func valueFromJSON(val gjson.Result) types.Value {
	switch val.Type {
	case gjson.String:
		return types.String(val.String())
	case gjson.Number:
		if val.Num == float64(int64(val.Num)) {
			return types.Int(int64(val.Num))
		}
		return types.Float(val.Num)
	case gjson.True, gjson.False:
		return types.Bool(val.Bool())
	case gjson.JSON:
		if val.IsArray() {
			var items []types.Value
			val.ForEach(func(_, item gjson.Result) bool {
				items = append(items, valueFromJSON(item))
				return true
			})
			return types.Array(items)
		}
		m := make(map[string]types.Value)
		val.ForEach(func(key, item gjson.Result) bool {
			m[key.String()] = valueFromJSON(item)
			return true
		})
		return types.Map(m)
	default:
		return types.Null()
	}
}
