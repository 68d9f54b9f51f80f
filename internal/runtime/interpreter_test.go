package runtime

import (
	"bytes"
	"strings"
	"testing"

	"github.com/merx-lang/merx/internal/analysis"
	"github.com/merx-lang/merx/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runProgram parses, validates, and runs src with the given stdin.
func runProgram(t *testing.T, src, stdin string) (code int, stdout, stderr string, err error) {
	t.Helper()
	fc, perr := parser.Parse(src)
	require.NoError(t, perr)
	prog, verr := analysis.Validate(fc)
	require.NoError(t, verr)

	var out, errOut bytes.Buffer
	interp := New(prog, strings.NewReader(stdin), &out, &errOut)
	code, err = interp.Run()
	return code, out.String(), errOut.String(), err
}

func TestRun_Hello(t *testing.T) {
	code, out, errOut, err := runProgram(t, `flowchart TD
  Start --> A[println 'Hello, merx!']
  A --> End
`, "")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "Hello, merx!\n", out)
	assert.Empty(t, errOut)
}

func TestRun_FizzBuzzPrefix(t *testing.T) {
	code, out, _, err := runProgram(t, `flowchart TD
  Start --> A[n = 1]
  A --> B{n <= 5?}
  B -->|Yes| C{n % 15 == 0?}
  C -->|Yes| D[println 'FizzBuzz']
  C -->|No| E{n % 3 == 0?}
  E -->|Yes| F[println 'Fizz']
  E -->|No| G{n % 5 == 0?}
  G -->|Yes| H[println 'Buzz']
  G -->|No| I[println n]
  D --> J[n = n + 1]
  F --> J
  H --> J
  I --> J
  J --> B
  B -->|No| End
`, "")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "1\n2\nFizz\n4\nBuzz\n", out)
}

func TestRun_CastChain(t *testing.T) {
	_, out, _, err := runProgram(t, `flowchart TD
  Start --> A[x = '42' as int]
  A --> B[println x + 1]
  B --> End
`, "")
	require.NoError(t, err)
	assert.Equal(t, "43\n", out)
}

func TestRun_ExitCode(t *testing.T) {
	code, out, _, err := runProgram(t, `flowchart TD
  Start --> A{false?}
  A -->|Yes| End
  A -->|No, exit 7| End
`, "")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 7, code)
}

func TestRun_EagerLogicalRaises(t *testing.T) {
	_, out, _, err := runProgram(t, `flowchart TD
  Start --> A[println true || (1/0 == 0)]
  A --> End
`, "")
	assert.ErrorIs(t, err, ErrDivisionByZero)
	assert.Empty(t, out, "no partial output before the failure")
}

func TestRun_ExitCodeOnProcessEdge(t *testing.T) {
	code, _, _, err := runProgram(t, `flowchart TD
  Start --> A[x = 1]
  A -->|exit 3| End
`, "")
	require.NoError(t, err)
	assert.Equal(t, 3, code)
}

func TestRun_ExitCodeDefaultsToZero(t *testing.T) {
	code, _, _, err := runProgram(t, `flowchart TD
  Start --> End
`, "")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestRun_YesExitCode(t *testing.T) {
	code, _, _, err := runProgram(t, `flowchart TD
  Start --> A{true?}
  A -->|Yes, exit 42| End
  A -->|No| End
`, "")
	require.NoError(t, err)
	assert.Equal(t, 42, code)
}

func TestRun_ConditionRequiresBool(t *testing.T) {
	_, _, _, err := runProgram(t, `flowchart TD
  Start --> A{1 + 1?}
  A -->|Yes| End
  A -->|No| End
`, "")
	var terr *TypeError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "bool", terr.Expected)
	assert.Equal(t, KindInt, terr.Found)
}

func TestRun_Loop(t *testing.T) {
	_, out, _, err := runProgram(t, `flowchart TD
  Start --> A[i = 0; sum = 0]
  A --> B{i < 10?}
  B -->|Yes| C[sum = sum + i; i = i + 1]
  C --> B
  B -->|No| D[println sum]
  D --> End
`, "")
	require.NoError(t, err)
	assert.Equal(t, "45\n", out)
}

func TestRun_InputLoop(t *testing.T) {
	_, out, _, err := runProgram(t, `flowchart TD
  Start --> Read[line = input]
  Read --> Check{line != ''?}
  Check -->|Yes| Show[println line]
  Show --> Read
  Check -->|No| End
`, "alpha\nbeta\n\nignored\n")
	require.NoError(t, err)
	assert.Equal(t, "alpha\nbeta\n", out)
}

func TestRun_InputEOFTerminatesLoop(t *testing.T) {
	// EOF yields '' which ends the loop; no error.
	_, out, _, err := runProgram(t, `flowchart TD
  Start --> Read[line = input]
  Read --> Check{line != ''?}
  Check -->|Yes| Show[println line]
  Show --> Read
  Check -->|No| End
`, "only\n")
	require.NoError(t, err)
	assert.Equal(t, "only\n", out)
}

func TestRun_ErrorStatementDoesNotHalt(t *testing.T) {
	code, out, errOut, err := runProgram(t, `flowchart TD
  Start --> A[error 'warning'; println 'still running']
  A --> End
`, "")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "still running\n", out)
	assert.Equal(t, "warning\n", errOut)
}

func TestRun_OutputBeforeFailureIsKept(t *testing.T) {
	_, out, _, err := runProgram(t, `flowchart TD
  Start --> A[println 'one'; println 1 / 0]
  A --> End
`, "")
	assert.ErrorIs(t, err, ErrDivisionByZero)
	assert.Equal(t, "one\n", out)
}

func TestRun_UndefinedVariable(t *testing.T) {
	_, _, _, err := runProgram(t, `flowchart TD
  Start --> A[println ghost]
  A --> End
`, "")
	var uerr *UndefinedVariableError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "ghost", uerr.Name)
}

func TestRun_UnreachableDanglingProcess(t *testing.T) {
	fc, err := parser.Parse(`flowchart TD
  Start --> A[x = 1]
  B[y = 2]
  A --> End
`)
	require.NoError(t, err)
	prog, err := analysis.Validate(fc)
	require.NoError(t, err)

	// B is unreachable, so the program runs fine.
	var out bytes.Buffer
	interp := New(prog, strings.NewReader(""), &out, &out)
	code, err := interp.Run()
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestRun_ReachableDeadEnd(t *testing.T) {
	_, _, _, err := runProgram(t, `flowchart TD
  Start --> A[x = 1]
  End
`, "")
	var nerr *NoSuccessorError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, "A", nerr.NodeID)
}

func TestRun_StartLabelIgnored(t *testing.T) {
	code, out, _, err := runProgram(t, `flowchart TD
  Start([Begin]) --> A[println 'ok']
  A --> End([Done])
`, "")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "ok\n", out)
}

func TestRun_VariablesAreGlobal(t *testing.T) {
	// One flat scope: assignments in one node are visible in all others.
	_, out, _, err := runProgram(t, `flowchart TD
  Start --> A[x = 1]
  A --> B{x == 1?}
  B -->|Yes| C[x = x + 1; println x]
  B -->|No| End
  C --> End
`, "")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)
}

func TestInterpreter_EnvAccess(t *testing.T) {
	fc, err := parser.Parse("flowchart TD\n  Start --> A[x = 5]\n  A --> End\n")
	require.NoError(t, err)
	prog, err := analysis.Validate(fc)
	require.NoError(t, err)

	interp := New(prog, strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	_, err = interp.Run()
	require.NoError(t, err)

	v, ok := interp.Env().Get("x")
	require.True(t, ok)
	assert.Equal(t, IntVal(5), v)
}
