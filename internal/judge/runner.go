package judge

import "context"

// Error classes attached to an ExecResult. Candidate-code failures are
// reported in the result; Execute returns a non-nil error only when the
// judging infrastructure itself failed.
const (
	ErrorClassNone    = ""
	ErrorClassCompile = "compile_error"
	ErrorClassRuntime = "runtime_error"
	ErrorClassTimeout = "timeout"
	ErrorClassOOM     = "out_of_memory"
)

// ExecRequest describes one execution of submitted code against one stdin.
type ExecRequest struct {
	Language  string
	Code      string
	Stdin     string
	TimeoutMs int
	MemoryMB  int
}

// ExecResult is the raw record returned by the sandbox.
type ExecResult struct {
	Stdout     string
	Stderr     string
	ExitCode   int
	TimedOut   bool
	RuntimeMs  int
	MemoryKB   int
	Truncated  bool
	Provider   string
	ErrorClass string
}

// Runner executes untrusted code under resource limits. Implementations are
// selected by configuration; tests substitute fakes.
type Runner interface {
	Execute(ctx context.Context, req ExecRequest) (*ExecResult, error)
}
