package interp

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// Arithmetic selects the number representation used by the evaluator.
type Arithmetic string

const (
	// ArithBig uses arbitrary-precision naturals. This is the default.
	ArithBig Arithmetic = "big"
	// ArithUint256 uses 256-bit unsigned words; results that do not fit
	// fail with an Overflow EvalError.
	ArithUint256 Arithmetic = "uint256"
)

// ParseArithmetic converts a configuration value into an Arithmetic.
func ParseArithmetic(s string) (Arithmetic, error) {
	switch Arithmetic(s) {
	case ArithBig, "":
		return ArithBig, nil
	case ArithUint256:
		return ArithUint256, nil
	default:
		return "", fmt.Errorf("unknown arithmetic %q (want %q or %q)", s, ArithBig, ArithUint256)
	}
}

// arith implements natural-number operations for one representation.
// Operands are never negative and are never mutated.
type arith interface {
	// add returns a+b, or ok=false if the result does not fit.
	add(a, b *big.Int) (*big.Int, bool)
	// sub returns a-b truncated at zero.
	sub(a, b *big.Int) *big.Int
	// fits reports whether v is representable.
	fits(v *big.Int) bool
	bits() int
}

func newArith(a Arithmetic) arith {
	if a == ArithUint256 {
		return wordArith{}
	}
	return bigArith{}
}

type bigArith struct{}

func (bigArith) add(a, b *big.Int) (*big.Int, bool) {
	return new(big.Int).Add(a, b), true
}

func (bigArith) sub(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int)
	}
	return new(big.Int).Sub(a, b)
}

func (bigArith) fits(*big.Int) bool { return true }
func (bigArith) bits() int          { return 0 }

type wordArith struct{}

func (wordArith) add(a, b *big.Int) (*big.Int, bool) {
	x, overflow := uint256.FromBig(a)
	if overflow {
		return nil, false
	}
	y, overflow := uint256.FromBig(b)
	if overflow {
		return nil, false
	}
	z := new(uint256.Int).Add(x, y)
	if z.Lt(x) {
		return nil, false
	}
	return z.ToBig(), true
}

func (wordArith) sub(a, b *big.Int) *big.Int {
	x, _ := uint256.FromBig(a)
	y, _ := uint256.FromBig(b)
	if !y.Lt(x) {
		return new(big.Int)
	}
	return new(uint256.Int).Sub(x, y).ToBig()
}

func (wordArith) fits(v *big.Int) bool {
	_, overflow := uint256.FromBig(v)
	return !overflow
}

func (wordArith) bits() int { return 256 }
