package emit

// NullEmitter discards every event. It is the default when no observability
// backend is configured.
type NullEmitter struct{}

func (NullEmitter) Emit(Event) {}
