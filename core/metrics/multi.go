package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []SearchSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...SearchSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the summary to all sinks, returning the first error encountered.
func (m *MultiSink) RecordRun(s RunSummary) error {
	for _, sink := range m.Sinks {
		if err := sink.RecordRun(s); err != nil {
			return err
		}
	}
	return nil
}

// RecordProgress forwards progress to the sinks supporting it.
func (m *MultiSink) RecordProgress(p ProgressPoint) error {
	for _, sink := range m.Sinks {
		if rec, ok := sink.(ProgressRecorder); ok {
			if err := rec.RecordProgress(p); err != nil {
				return err
			}
		}
	}
	return nil
}
