package logger

// nopLogger discards everything. Tests use it through NewNop.
type nopLogger struct {
	// keeps distinct allocations distinct; zero-size values may share an address
	_ byte
}

// NewNop returns a Logger that drops all entries.
func NewNop() Logger {
	return &nopLogger{}
}

func (*nopLogger) Debug(string, ...Field) {}
func (*nopLogger) Info(string, ...Field)  {}
func (*nopLogger) Warn(string, ...Field)  {}
func (*nopLogger) Error(string, ...Field) {}
func (*nopLogger) Fatal(string, ...Field) {}

func (l *nopLogger) With(...Field) Logger { return l }

func (*nopLogger) Sync() error { return nil }
