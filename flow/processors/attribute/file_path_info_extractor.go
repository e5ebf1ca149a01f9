package attribute

import (
	"context"
	"os"
	"path/filepath"

	"github.com/reearth/reearth-flow-go/flow/registry"
	"github.com/reearth/reearth-flow-go/flow/runtime"
	"github.com/reearth/reearth-flow-go/flow/types"
)

func init() {
	registry.RegisterProcessor("AttributeFilePathInfoExtractor", &FilePathInfoExtractorFactory{})
}

// FilePathInfoExtractorParam names the attribute holding a filesystem path
// to stat, matching file_path_info_extractor.rs's single `attribute` field.
type FilePathInfoExtractorParam struct {
	Attribute string `flow:"attribute,required"`
}

type FilePathInfoExtractorFactory struct{}

func (FilePathInfoExtractorFactory) ActionName() string { return "AttributeFilePathInfoExtractor" }
func (FilePathInfoExtractorFactory) Description() string {
	return "Extracts file path information from attributes"
}
func (FilePathInfoExtractorFactory) Categories() []string { return []string{"Attribute"} }
func (FilePathInfoExtractorFactory) ParameterSchema() runtime.ParamSchema {
	return registry.BuildParamSchema(FilePathInfoExtractorParam{})
}
func (FilePathInfoExtractorFactory) InputPorts() []runtime.Port {
	return []runtime.Port{runtime.PortDefault}
}
func (FilePathInfoExtractorFactory) OutputPorts() []runtime.Port {
	return []runtime.Port{runtime.PortDefault, runtime.PortRejected}
}

func (f FilePathInfoExtractorFactory) BuildProcessor(nodeCtx runtime.NodeContext, with map[string]types.Value) (runtime.Processor, error) {
	attrName, ok := with["attribute"]
	if !ok {
		return nil, runtime.FactoryError(nodeCtx.NodeID, "missing required parameter `attribute`", nil)
	}
	name, ok := attrName.AsString()
	if !ok {
		return nil, runtime.FactoryError(nodeCtx.NodeID, "`attribute` must be a string", nil)
	}
	return &FilePathInfoExtractor{attribute: types.NewAttribute(name)}, nil
}

// FilePathInfoExtractor stats the file named by its configured attribute
// and attaches fileType/fileSize/fileAtime/fileMtime/fileCtime, routing to
// PortRejected when the attribute is missing or not a string. Runs with 5
// worker goroutines, matching the original's num_threads() == 5 (disk stat
// calls are the bottleneck, not CPU, so more concurrency than usual pays
// off here).
type FilePathInfoExtractor struct {
	attribute types.Attribute
}

func (e *FilePathInfoExtractor) Initialize(ctx context.Context, nodeCtx runtime.NodeContext) error {
	return nil
}
func (e *FilePathInfoExtractor) NumThreads() int { return 5 }
func (e *FilePathInfoExtractor) Name() string    { return "AttributeFilePathInfoExtractor" }

func (e *FilePathInfoExtractor) Process(ctx context.Context, execCtx runtime.ExecutorContext, fwd runtime.Forwarder) error {
	feature := execCtx.Feature
	pathValue, ok := feature.Get(e.attribute)
	if !ok {
		return fwd.Send(ctx, runtime.PortRejected, feature)
	}
	path, ok := pathValue.AsString()
	if !ok {
		return fwd.Send(ctx, runtime.PortRejected, feature)
	}

	attrs := feature.CloneAttributes()
	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink == 0 {
		if info.IsDir() {
			attrs[types.NewAttribute("fileType")] = types.String("Directory")
			size, err := dirSize(path)
			if err != nil {
				return runtime.ProcessError(execCtx.NodeID, "computing directory size", err)
			}
			attrs[types.NewAttribute("fileSize")] = types.Int(size)
		} else {
			attrs[types.NewAttribute("fileType")] = types.String("File")
			attrs[types.NewAttribute("fileSize")] = types.Int(info.Size())
		}
		attrs[types.NewAttribute("fileMtime")] = types.DateTime(info.ModTime())
		if stat, ok := platformTimes(info); ok {
			attrs[types.NewAttribute("fileAtime")] = types.DateTime(stat.atime)
			attrs[types.NewAttribute("fileCtime")] = types.DateTime(stat.ctime)
		}
	}

	return fwd.Send(ctx, runtime.PortDefault, feature.WithAttributes(attrs))
}

func (e *FilePathInfoExtractor) Finish(ctx context.Context, nodeCtx runtime.NodeContext, fwd runtime.Forwarder) error {
	return nil
}

func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
