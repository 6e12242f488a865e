package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

var (
	// ErrRuntimeUnavailable means the interpreter environment failed to
	// load. Distinct from an error in learner code, which is always
	// returned as captured stderr data.
	ErrRuntimeUnavailable = errors.New("code runtime unavailable")
	// ErrNotReady means RunCode/RunTests was called before a successful Init
	ErrNotReady = errors.New("code runtime not ready")
	// ErrTimeout bounds a hung learner script
	ErrTimeout = errors.New("execution timed out")
)

// allowedPackages is the stdlib import whitelist for learner code.
// Filesystem, network, process and unsafe access stay blocked.
var allowedPackages = map[string]bool{
	"bufio":           true,
	"bytes":           true,
	"errors":          true,
	"fmt":             true,
	"math":            true,
	"math/rand":       true,
	"regexp":          true,
	"sort":            true,
	"strconv":         true,
	"strings":         true,
	"time":            true,
	"unicode":         true,
	"encoding/json":   true,
	"encoding/base64": true,
}

// RunResult is the captured output of a single execution
type RunResult struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr,omitempty"`
}

// TestCase grades one execution by strict stdout comparison after trimming
type TestCase struct {
	Description    string `json:"description"`
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
}

// TestResult reports one test case outcome. ActualOutput is empty on pass.
type TestResult struct {
	Passed         bool   `json:"passed"`
	Description    string `json:"description"`
	ExpectedOutput string `json:"expectedOutput"`
	ActualOutput   string `json:"actualOutput,omitempty"`
}

// Runtime owns the interpreter capability for code exercises. A fresh
// interpreter is built per execution so no stream or symbol state bleeds
// between runs; executions against one Runtime are serialized.
type Runtime struct {
	timeout time.Duration

	initMu   sync.Mutex
	initDone chan struct{} // non-nil while an init is in flight
	ready    bool
	initErr  error

	execMu sync.Mutex
}

// New creates an uninitialized runtime with the given execution timeout
func New(timeout time.Duration) *Runtime {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Runtime{timeout: timeout}
}

// Init acquires the interpreter capability. Idempotent at process level:
// concurrent callers before initialization completes all await the same
// in-flight attempt. A load failure is remembered until Reset.
func (r *Runtime) Init() error {
	r.initMu.Lock()
	if r.ready {
		r.initMu.Unlock()
		return nil
	}
	if r.initErr != nil {
		err := r.initErr
		r.initMu.Unlock()
		return err
	}
	if r.initDone != nil {
		done := r.initDone
		r.initMu.Unlock()
		<-done
		r.initMu.Lock()
		defer r.initMu.Unlock()
		if r.ready {
			return nil
		}
		return r.initErr
	}

	done := make(chan struct{})
	r.initDone = done
	r.initMu.Unlock()

	err := checkInterpreter()

	r.initMu.Lock()
	r.initDone = nil
	if err != nil {
		r.initErr = fmt.Errorf("%w: %v", ErrRuntimeUnavailable, err)
		err = r.initErr
	} else {
		r.ready = true
	}
	close(done)
	r.initMu.Unlock()
	return err
}

// Ready reports whether the runtime can execute code
func (r *Runtime) Ready() bool {
	r.initMu.Lock()
	defer r.initMu.Unlock()
	return r.ready
}

// Reset clears a remembered init failure so Init can be re-triggered
// explicitly. Callers must not retry automatically.
func (r *Runtime) Reset() {
	r.initMu.Lock()
	defer r.initMu.Unlock()
	if !r.ready {
		r.initErr = nil
	}
}

// checkInterpreter verifies the interpreter and its stdlib symbols load
func checkInterpreter() error {
	i := interp.New(interp.Options{Stdout: io.Discard, Stderr: io.Discard})
	if err := i.Use(stdlib.Symbols); err != nil {
		return err
	}
	if _, err := i.Eval(`1 + 1`); err != nil {
		return err
	}
	return nil
}

// RunCode executes learner source to completion and returns captured
// stdout plus, if anything went wrong in the code, a stderr payload.
// Learner errors never surface as Go errors past this boundary.
func (r *Runtime) RunCode(ctx context.Context, source string) (*RunResult, error) {
	if !r.Ready() {
		return nil, ErrNotReady
	}

	r.execMu.Lock()
	defer r.execMu.Unlock()

	stdout, stderr := r.execute(ctx, source, "")
	return &RunResult{Stdout: stdout, Stderr: stderr}, nil
}

// RunTests executes the source once per test case, seeding stdin from the
// case input and comparing trimmed stdout against the trimmed expected
// output. Cases are independent: a failing or crashing case never stops
// the rest of the batch.
func (r *Runtime) RunTests(ctx context.Context, source string, cases []TestCase) ([]TestResult, error) {
	if !r.Ready() {
		return nil, ErrNotReady
	}

	r.execMu.Lock()
	defer r.execMu.Unlock()

	results := make([]TestResult, 0, len(cases))
	for _, tc := range cases {
		result := TestResult{
			Description:    tc.Description,
			ExpectedOutput: tc.ExpectedOutput,
		}

		stdout, stderr := r.execute(ctx, source, tc.Input)
		actual := strings.TrimSpace(stdout)
		expected := strings.TrimSpace(tc.ExpectedOutput)

		if stderr != "" {
			// The exception message stands in for the actual output
			result.ActualOutput = stderr
		} else if actual == expected {
			result.Passed = true
		} else {
			result.ActualOutput = actual
		}

		results = append(results, result)
	}

	return results, nil
}

// execute runs source on a fresh interpreter with freshly bound streams.
// The returned stderr text is non-empty when the code failed.
func (r *Runtime) execute(ctx context.Context, source, stdin string) (string, string) {
	if err := validateImports(source); err != nil {
		return "", err.Error()
	}

	var outBuf, errBuf bytes.Buffer
	i := interp.New(interp.Options{
		Stdin:  strings.NewReader(stdin),
		Stdout: &outBuf,
		Stderr: &errBuf,
	})
	if err := i.Use(stdlib.Symbols); err != nil {
		return "", fmt.Sprintf("runtime error: %v", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	evalDone := make(chan error, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				evalDone <- fmt.Errorf("panic: %v", rec)
			}
		}()
		_, err := i.EvalWithContext(ctx, source)
		evalDone <- err
	}()

	select {
	case err := <-evalDone:
		stderr := errBuf.String()
		if err != nil {
			if stderr != "" {
				stderr += "\n"
			}
			stderr += err.Error()
		}
		return outBuf.String(), stderr
	case <-ctx.Done():
		return outBuf.String(), ErrTimeout.Error()
	}
}

// validateImports rejects source importing packages off the whitelist
func validateImports(source string) error {
	var forbidden []string

	inBlock := false
	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "import (") {
			inBlock = true
			continue
		}
		if inBlock && strings.HasPrefix(trimmed, ")") {
			inBlock = false
			continue
		}

		var pkg string
		if inBlock {
			pkg = importPath(trimmed)
		} else if strings.HasPrefix(trimmed, "import ") {
			pkg = importPath(strings.TrimPrefix(trimmed, "import "))
		}
		if pkg == "" {
			continue
		}
		if !allowedPackages[pkg] {
			forbidden = append(forbidden, pkg)
		}
	}

	if len(forbidden) > 0 {
		return fmt.Errorf("import not allowed in the sandbox: %s", strings.Join(forbidden, ", "))
	}
	return nil
}

// importPath extracts the quoted path from an import line, dropping any alias
func importPath(line string) string {
	start := strings.Index(line, `"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(line[start+1:], `"`)
	if end < 0 {
		return ""
	}
	return line[start+1 : start+1+end]
}
