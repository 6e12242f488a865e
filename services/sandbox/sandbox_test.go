package sandbox

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sumProgram = `package main

import "fmt"

func main() {
	var a, b int
	fmt.Scan(&a)
	fmt.Scan(&b)
	fmt.Println(a + b)
}
`

func newReadyRuntime(t *testing.T) *Runtime {
	t.Helper()
	r := New(5 * time.Second)
	require.NoError(t, r.Init())
	return r
}

func TestRunCodeBeforeInit(t *testing.T) {
	r := New(5 * time.Second)

	_, err := r.RunCode(context.Background(), `package main; func main() {}`)
	require.ErrorIs(t, err, ErrNotReady)

	_, err = r.RunTests(context.Background(), sumProgram, []TestCase{{Input: "1\n2", ExpectedOutput: "3"}})
	require.ErrorIs(t, err, ErrNotReady)
}

func TestInitIsIdempotent(t *testing.T) {
	r := New(5 * time.Second)
	require.NoError(t, r.Init())
	require.NoError(t, r.Init())
	require.True(t, r.Ready())
}

func TestInitConcurrentCallers(t *testing.T) {
	r := New(5 * time.Second)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = r.Init()
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.True(t, r.Ready())
}

func TestRunCodeCapturesStdout(t *testing.T) {
	r := newReadyRuntime(t)

	result, err := r.RunCode(context.Background(), `package main

import "fmt"

func main() {
	fmt.Println("hello")
}
`)
	require.NoError(t, err)
	require.Equal(t, "hello", strings.TrimSpace(result.Stdout))
	require.Empty(t, result.Stderr)
}

func TestRunCodeReturnsErrorsAsData(t *testing.T) {
	r := newReadyRuntime(t)

	result, err := r.RunCode(context.Background(), `package main

func main() {
	undefinedFunction()
}
`)
	require.NoError(t, err)
	require.NotEmpty(t, result.Stderr)
}

func TestRunCodeRejectsBlockedImport(t *testing.T) {
	r := newReadyRuntime(t)

	result, err := r.RunCode(context.Background(), `package main

import "os"

func main() {
	os.Exit(1)
}
`)
	require.NoError(t, err)
	require.Contains(t, result.Stderr, "not allowed")
}

func TestRunTestsPassingCase(t *testing.T) {
	r := newReadyRuntime(t)

	results, err := r.RunTests(context.Background(), sumProgram, []TestCase{
		{Description: "adds with a negative", Input: "10\n-2", ExpectedOutput: "8"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, results[0].Passed)
	require.Empty(t, results[0].ActualOutput)
}

func TestRunTestsReportsMismatch(t *testing.T) {
	r := newReadyRuntime(t)

	results, err := r.RunTests(context.Background(), sumProgram, []TestCase{
		{Input: "2\n2", ExpectedOutput: "5"},
		{Input: "1\n1", ExpectedOutput: "2"},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	// The mismatch carries both sides of the comparison
	require.False(t, results[0].Passed)
	require.Equal(t, "5", results[0].ExpectedOutput)
	require.Equal(t, "4", results[0].ActualOutput)

	// A failing case never stops the rest of the batch
	require.True(t, results[1].Passed)
}

func TestRunTestsErroringSource(t *testing.T) {
	r := newReadyRuntime(t)

	results, err := r.RunTests(context.Background(), `package main

func main() {
	panic("boom")
}
`, []TestCase{
		{Input: "", ExpectedOutput: "anything"},
		{Input: "", ExpectedOutput: "anything"},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, res := range results {
		require.False(t, res.Passed)
		require.NotEmpty(t, res.ActualOutput)
	}
}

func TestRunCodeTimesOut(t *testing.T) {
	r := New(500 * time.Millisecond)
	require.NoError(t, r.Init())

	result, err := r.RunCode(context.Background(), `package main

func main() {
	for {
	}
}
`)
	require.NoError(t, err)
	require.Contains(t, result.Stderr, "timed out")
}

func TestValidateImports(t *testing.T) {
	require.NoError(t, validateImports(`package main

import (
	"fmt"
	"strings"
)

func main() { fmt.Println(strings.ToUpper("x")) }
`))

	err := validateImports(`package main

import (
	"fmt"
	"net/http"
)

func main() { fmt.Println(http.StatusOK) }
`)
	require.Error(t, err)
	require.Contains(t, err.Error(), "net/http")
}
