package kubectl

// StatusSink receives one line per dispatcher phase transition. Phase is one
// of building, executing, interpreting, done or failed.
type StatusSink interface {
	UpdateStatus(phase, status string)
}

// StatusSinkFunc adapts a function to StatusSink.
type StatusSinkFunc func(phase, status string)

// UpdateStatus implements StatusSink.
func (f StatusSinkFunc) UpdateStatus(phase, status string) {
	f(phase, status)
}

// NopStatusSink discards every update.
type NopStatusSink struct{}

// UpdateStatus implements StatusSink.
func (NopStatusSink) UpdateStatus(string, string) {}
