package importer

import (
	"context"
	"fmt"

	"github.com/vvka-141/pgimportdoc/pkg/pgimportdoc"
)

// mockSession records the call sequence and serves canned results.
type mockSession struct {
	calls []string

	encodingStatus string
	encodingErr    error

	execResult pgimportdoc.ExecutionResult
	execErr    error

	gotCommand string
	gotParam   pgimportdoc.BoundParameter

	closed int
}

func (s *mockSession) SetClientEncoding(_ context.Context, encoding string) (string, error) {
	s.calls = append(s.calls, "encoding:"+encoding)
	return s.encodingStatus, s.encodingErr
}

func (s *mockSession) ExecDocument(_ context.Context, command string, param pgimportdoc.BoundParameter) (pgimportdoc.ExecutionResult, error) {
	s.calls = append(s.calls, "exec")
	s.gotCommand = command
	s.gotParam = param
	return s.execResult, s.execErr
}

func (s *mockSession) Close() {
	s.calls = append(s.calls, "close")
	s.closed++
}

type mockConnector struct {
	session    *mockSession
	connectErr error
	connects   int
}

func (c *mockConnector) Connect(_ context.Context) (pgimportdoc.Session, error) {
	c.connects++
	if c.connectErr != nil {
		return nil, c.connectErr
	}
	return c.session, nil
}

type mockLoader struct {
	data  []byte
	err   error
	loads int
}

func (l *mockLoader) Load(_ context.Context) (*pgimportdoc.DocumentBuffer, error) {
	l.loads++
	if l.err != nil {
		return nil, l.err
	}
	return &pgimportdoc.DocumentBuffer{Data: l.data}, nil
}

// recordingLogger captures warnings for assertions and drops the rest.
type recordingLogger struct {
	warnings []string
}

func (l *recordingLogger) Verbose(_ string, _ ...interface{}) {}
func (l *recordingLogger) Info(_ string, _ ...interface{})    {}
func (l *recordingLogger) Error(_ string, _ ...interface{})   {}

func (l *recordingLogger) Warn(format string, args ...interface{}) {
	l.warnings = append(l.warnings, fmt.Sprintf(format, args...))
}
