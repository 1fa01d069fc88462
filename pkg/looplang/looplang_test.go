package looplang

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/looplang/internal/testutil"
	"github.com/leapstack-labs/looplang/pkg/interp"
	"github.com/leapstack-labs/looplang/pkg/parser"
	"github.com/leapstack-labs/looplang/pkg/token"
)

func TestLoopBodyRunsExactlyBoundTimes(t *testing.T) {
	prog, err := ParseProgram("x := 3; loop x do x := 0; count := count + 1 end")
	require.NoError(t, err)

	out, err := RunProgram(prog, nil)
	require.NoError(t, err)
	assert.Equal(t, "3", out["count"].String())
	assert.Equal(t, "0", out["x"].String())
}

func TestTruncatedSubtraction(t *testing.T) {
	out, err := Eval("x := 2; y := 5; z := x - y", nil)
	require.NoError(t, err)
	assert.Equal(t, "0", out["z"].String())
}

func TestUnassignedReadsZero(t *testing.T) {
	out, err := Eval("y := x + 1", nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"y": "1"}, testutil.Values(out))
}

func TestEmptyLoopLeavesStoreUnchanged(t *testing.T) {
	prog, err := ParseProgram("loop 5 do end")
	require.NoError(t, err)

	in := testutil.Vars("a", 1)
	out, err := RunProgram(prog, in)
	require.NoError(t, err)
	assert.Equal(t, testutil.Values(in), testutil.Values(out))
}

func TestRerunIsDeterministic(t *testing.T) {
	prog, err := ParseProgram("loop n do loop n do s := s + 1 end end; t := s - n")
	require.NoError(t, err)

	in := testutil.Vars("n", 12)
	first, err := RunProgram(prog, in)
	require.NoError(t, err)
	second, err := RunProgram(prog, in)
	require.NoError(t, err)

	assert.Equal(t, testutil.Values(first), testutil.Values(second))
	assert.Equal(t, "144", first["s"].String())
	assert.Equal(t, "12", in["n"].String())
}

func TestUnterminatedLoopIsParseErrorAtEOF(t *testing.T) {
	src := "loop x do"
	prog, err := ParseProgram(src)
	require.Error(t, err)
	assert.Nil(t, prog)

	var parseErr *parser.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, token.EOF, parseErr.Found.Type)
	assert.Equal(t, len(src), parseErr.Pos.Offset)
}

func TestNegativeBindingRejected(t *testing.T) {
	prog, err := ParseProgram("y := x")
	require.NoError(t, err)

	_, err = RunProgram(prog, map[string]*big.Int{"x": big.NewInt(-3)})
	var evalErr *interp.EvalError
	require.True(t, errors.As(err, &evalErr))
	assert.Equal(t, interp.InvalidBinding, evalErr.Kind)
}

func TestErrorsArePositioned(t *testing.T) {
	for _, src := range []string{"x := 1 @", "loop", "x := 1 1"} {
		_, err := Eval(src, nil)
		require.Error(t, err, src)

		var pos Positioner
		require.True(t, errors.As(err, &pos), "%T should have a position", err)
		assert.True(t, pos.Position().IsValid(), src)
	}

	_, err := Eval("x := 2 + y", testutil.Vars("y", testutil.Nat("115792089237316195423570985008687907853269984665640564039457584007913129639935")),
		interp.WithArithmetic(interp.ArithUint256))
	var pos Positioner
	require.True(t, errors.As(err, &pos))
	assert.Equal(t, 8, pos.Position().Column)
}

func TestProgramsTerminate(t *testing.T) {
	// Reassigning the bound variable inside the body cannot extend the loop.
	out, err := Eval("n := 3; loop n do n := n + n; k := k + 1 end", nil, interp.WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)
	assert.Equal(t, "3", out["k"].String())
	assert.Equal(t, "24", out["n"].String())
}

func TestPrintOutput(t *testing.T) {
	var buf bytes.Buffer
	_, err := Eval(`loop 3 do i := i + 1; print "i=", i end`, nil, interp.WithOutput(&buf))
	require.NoError(t, err)
	assert.Equal(t, "i=1\ni=2\ni=3\n", buf.String())
}
