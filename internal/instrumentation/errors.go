package instrumentation

import (
	"errors"
	"fmt"
)

// ErrInvalidSamplingRate is returned when the trace sampling rate is outside [0, 1].
var ErrInvalidSamplingRate = errors.New("trace sampling rate must be between 0 and 1")

// UnsupportedExporterError reports an exporter name the provider cannot build.
type UnsupportedExporterError struct {
	Kind string
	Name string
}

func (e *UnsupportedExporterError) Error() string {
	return fmt.Sprintf("unsupported %s exporter %q", e.Kind, e.Name)
}
