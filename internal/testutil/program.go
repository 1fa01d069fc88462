package testutil

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/looplang/pkg/ast"
	"github.com/leapstack-labs/looplang/pkg/parser"
)

// MustParse parses src and fails the test on error.
func MustParse(t testing.TB, src string) *ast.Program {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err, "parse %q", src)
	return prog
}

// Nat parses a decimal string into a big.Int and panics on malformed input.
func Nat(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("testutil: bad number " + s)
	}
	return v
}

// Vars builds a bindings map from alternating names and int64 values:
// Vars("x", 1, "y", 2).
func Vars(kv ...any) map[string]*big.Int {
	if len(kv)%2 != 0 {
		panic("testutil: Vars needs name/value pairs")
	}
	out := make(map[string]*big.Int, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		name := kv[i].(string)
		switch v := kv[i+1].(type) {
		case int:
			out[name] = big.NewInt(int64(v))
		case int64:
			out[name] = big.NewInt(v)
		case *big.Int:
			out[name] = v
		case string:
			out[name] = Nat(v)
		default:
			panic("testutil: unsupported value type")
		}
	}
	return out
}

// Values renders bindings as decimal strings, for readable assertions.
func Values(m map[string]*big.Int) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v.String()
	}
	return out
}
