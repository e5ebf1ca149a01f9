package runtime

// ExecutorOptions bundles the executor's tunables, grounded on spec.md
// §4.7 and on the functional-options shape of graph/options.go
// (WithMaxConcurrent, WithQueueDepth, ...), renamed to this engine's
// vocabulary.
type ExecutorOptions struct {
	// ChannelBufferSize bounds every edge's queue.
	ChannelBufferSize int
	// EventHubCapacity is not read by the executor: it publishes to the
	// *emit.Hub passed to NewExecutor, whose queue keeps the capacity given
	// to emit.NewHub.
	EventHubCapacity int
	// ErrorThreshold, if non-nil, cancels the run once the cross-run error
	// counter exceeds it (spec.md's Open Question: counts across the whole
	// run, not per-node — resolved that way here, see DESIGN.md).
	ErrorThreshold *int
	// ThreadPoolSize is stored but not read by the executor: each node runs
	// its own NumThreads() (or NumThreadsOverride) workers, and no bound on
	// worker goroutines across nodes is applied.
	ThreadPoolSize int
}

// Option configures ExecutorOptions, mirroring graph/options.go's
// functional-option pattern (Option func(*engineConfig) error) reduced to
// the simpler case where none of this engine's options can fail validation.
type Option func(*ExecutorOptions)

func defaultOptions() ExecutorOptions {
	return ExecutorOptions{
		ChannelBufferSize: 64,
		EventHubCapacity:  256,
		ErrorThreshold:    nil,
		ThreadPoolSize:    0,
	}
}

func WithChannelBufferSize(n int) Option {
	return func(o *ExecutorOptions) { o.ChannelBufferSize = n }
}

func WithEventHubCapacity(n int) Option {
	return func(o *ExecutorOptions) { o.EventHubCapacity = n }
}

func WithErrorThreshold(n int) Option {
	return func(o *ExecutorOptions) { o.ErrorThreshold = &n }
}

func WithThreadPoolSize(n int) Option {
	return func(o *ExecutorOptions) { o.ThreadPoolSize = n }
}
