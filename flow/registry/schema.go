package registry

import (
	"reflect"
	"strings"

	"github.com/reearth/reearth-flow-go/flow/runtime"
)

// BuildParamSchema reflects over a factory's parameter struct (the Go type
// its BuildSource/BuildProcessor/BuildSink unmarshal `with` into) and
// produces the ParamSchema every Factory.ParameterSchema() returns.
//
// SPEC_FULL.md §9.4 calls for `github.com/invopop/jsonschema`-style
// reflection; no pack repo carries a JSON-schema reflection library
// (invopop/jsonschema included), so this is deliberately hand-rolled over
// `reflect` rather than a borrowed dependency — the one place in
// flow/registry that is stdlib-only by necessity rather than choice. Each
// processor's parameter struct tags itself with `flow:"name"` or
// `flow:"name,required"`; fields without a tag fall back to their Go field
// name.
func BuildParamSchema(paramStruct any) runtime.ParamSchema {
	t := reflect.TypeOf(paramStruct)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return runtime.ParamSchema{}
	}

	properties := make(map[string]any, t.NumField())
	var required []string

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, opts := parseFlowTag(field)
		if name == "-" {
			continue
		}
		properties[name] = map[string]any{"type": jsonType(field.Type)}
		if opts.required {
			required = append(required, name)
		}
	}

	schema := runtime.ParamSchema{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

type tagOptions struct{ required bool }

func parseFlowTag(field reflect.StructField) (string, tagOptions) {
	tag := field.Tag.Get("flow")
	if tag == "" {
		return field.Name, tagOptions{}
	}
	parts := strings.Split(tag, ",")
	name := parts[0]
	if name == "" {
		name = field.Name
	}
	opts := tagOptions{}
	for _, p := range parts[1:] {
		if p == "required" {
			opts.required = true
		}
	}
	return name, opts
}

func jsonType(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	default:
		return "string"
	}
}
