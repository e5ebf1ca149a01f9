// Package xml implements CityGMLReader, a source that splits a CityGML
// document into one opaque GmlFeature per top-level city object, grounded on
// original_source/worker/crates/action-source/src/file/reader/citygml.rs and
// reduced per spec.md §1's stated scope: this engine routes CityGML
// features, it does not interpret their geometry or application schema.
// Only enough of the document is parsed to carve out feature boundaries and
// their gml:id, using encoding/xml's streaming decoder the way runner.rs's
// citygml module streams city objects out of a quick-xml reader.
package xml

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"

	"github.com/reearth/reearth-flow-go/flow/registry"
	"github.com/reearth/reearth-flow-go/flow/runtime"
	"github.com/reearth/reearth-flow-go/flow/types"
)

func init() {
	registry.RegisterSource("CityGMLReader", &ReaderFactory{})
}

type ReaderParam struct {
	Dataset string `flow:"dataset,required"`
}

type ReaderFactory struct{}

func (ReaderFactory) ActionName() string  { return "CityGMLReader" }
func (ReaderFactory) Description() string { return "Splits a CityGML document into opaque feature fragments" }
func (ReaderFactory) Categories() []string { return []string{"File", "CityGML"} }
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
	return &Reader{dataset: dataset}, nil
}

// Reader emits one feature per top-level <cityObjectMember> (or any direct
// child element of the document root, since bldg:Building/veg:SolitaryVegetationObject/...
// all nest one level under CityModel the same way), each carrying the raw
// XML bytes of that fragment untouched in CityGmlGeometry.
type Reader struct {
	dataset string
}

func (r *Reader) Initialize(ctx context.Context, nodeCtx runtime.NodeContext) error { return nil }
func (r *Reader) SerializeState() ([]byte, error)                                  { return nil, nil }

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
	members, err := splitMembers(data)
	if err != nil {
		return runtime.SourceError(nodeCtx.NodeID, "parsing CityGML document", err)
	}
	for _, m := range members {
		feature := types.New()
		feature = feature.WithGeometry(types.CityGmlGeometry{Features: []types.GmlFeature{m}})
		if err := fwd.Send(ctx, runtime.PortDefault, feature); err != nil {
			return err
		}
	}
	return nil
}

// splitMembers decodes the document's top-level element stream and returns
// one GmlFeature per depth-1 child, each holding the raw bytes of its
// subtree and the gml:id found by captureElement.
func splitMembers(data []byte) ([]types.GmlFeature, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var members []types.GmlFeature
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth == 2 {
				raw, id, err := captureElement(dec, t)
				if err != nil {
					return nil, err
				}
				members = append(members, types.GmlFeature{ID: id, Raw: raw})
				depth--
			}
		case xml.EndElement:
			depth--
		}
	}
	return members, nil
}

// captureElement re-encodes start (already consumed) through its matching
// end element, returning the raw bytes and an id: the element's own id
// attribute, or else that of the first descendant element declaring one
// (a cityObjectMember wrapper carries no gml:id; the city object inside it
// does).
func captureElement(dec *xml.Decoder, start xml.StartElement) ([]byte, string, error) {
	var id string
	for _, attr := range start.Attr {
		if attr.Name.Local == "id" {
			id = attr.Value
		}
	}
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	if err := enc.EncodeToken(start); err != nil {
		return nil, "", err
	}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return nil, "", err
		}
		if err := enc.EncodeToken(tok); err != nil {
			return nil, "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if id == "" {
				for _, attr := range t.Attr {
					if attr.Name.Local == "id" {
						id = attr.Value
					}
				}
			}
		case xml.EndElement:
			depth--
		}
	}
	if err := enc.Flush(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), id, nil
}
