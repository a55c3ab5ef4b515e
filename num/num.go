// Package num implements the signed fixed-point scalar used for all pool
// accounting. Values carry 48 fractional bits inside a 128-bit
// two's-complement envelope, so every representable value round-trips
// losslessly through its persisted bit pattern. Arithmetic is performed on
// arbitrary-precision integers and checked against the envelope: overflow and
// division by zero surface as errors, never as wrapped or clamped values.
package num

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// FracBits is the number of fractional bits in the fixed-point representation.
const FracBits = 48

var (
	// ErrOverflow reports a result outside the 128-bit fixed-point range.
	ErrOverflow = errors.New("num: value exceeds 128-bit fixed-point range")
	// ErrDivideByZero reports a division with a zero divisor.
	ErrDivideByZero = errors.New("num: division by zero")
	// ErrUnrepresentable reports an input that cannot be expressed as a
	// fixed-point value.
	ErrUnrepresentable = errors.New("num: unrepresentable value")
	// ErrNegative reports a negative value where a token quantity was
	// expected.
	ErrNegative = errors.New("num: negative value")
)

var (
	scale     = new(big.Int).Lsh(big.NewInt(1), FracBits)
	maxRaw    = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minRaw    = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	twoPow128 = new(big.Int).Lsh(big.NewInt(1), 128)
	maxUint64 = new(big.Int).SetUint64(^uint64(0))
)

// Num is a signed Q80.48 fixed-point number. The zero value is 0.
type Num struct {
	raw *big.Int
}

// Zero returns the fixed-point zero.
func Zero() Num { return Num{} }

// One returns the fixed-point one.
func One() Num { return FromInt64(1) }

func (n Num) ref() *big.Int {
	if n.raw == nil {
		return new(big.Int)
	}
	return n.raw
}

func checked(raw *big.Int) (Num, error) {
	if raw.Cmp(maxRaw) > 0 || raw.Cmp(minRaw) < 0 {
		return Num{}, ErrOverflow
	}
	return Num{raw: raw}, nil
}

// FromInt64 converts an integer token amount into a fixed-point value.
func FromInt64(v int64) Num {
	return Num{raw: new(big.Int).Lsh(big.NewInt(v), FracBits)}
}

// FromUint64 converts an unsigned integer token amount into a fixed-point
// value. The full uint64 range fits in the 80 integer bits.
func FromUint64(v uint64) Num {
	return Num{raw: new(big.Int).Lsh(new(big.Int).SetUint64(v), FracBits)}
}

// FromBits reconstructs a value from its 128-bit two's-complement halves.
// The conversion is total: every (hi, lo) pair is a valid value.
func FromBits(hi int64, lo uint64) Num {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[0:8], uint64(hi))
	binary.BigEndian.PutUint64(buf[8:16], lo)
	return FromBytes(buf)
}

// Bits returns the 128-bit two's-complement representation split into a
// signed high half and an unsigned low half.
func (n Num) Bits() (hi int64, lo uint64) {
	b := n.Bytes()
	return int64(binary.BigEndian.Uint64(b[0:8])), binary.BigEndian.Uint64(b[8:16])
}

// FromBytes reconstructs a value from its big-endian 128-bit
// two's-complement encoding.
func FromBytes(b [16]byte) Num {
	v := new(big.Int).SetBytes(b[:])
	if b[0]&0x80 != 0 {
		v.Sub(v, twoPow128)
	}
	return Num{raw: v}
}

// Bytes returns the big-endian 128-bit two's-complement encoding used for
// persistence.
func (n Num) Bytes() [16]byte {
	v := new(big.Int).Set(n.ref())
	if v.Sign() < 0 {
		v.Add(v, twoPow128)
	}
	var buf [16]byte
	v.FillBytes(buf[:])
	return buf
}

// Parse converts a decimal string into a fixed-point value, rounding to the
// nearest representable value (ties away from zero). Parsing is the one
// boundary where rounding is permitted.
func Parse(s string) (Num, error) {
	r, ok := new(big.Rat).SetString(strings.TrimSpace(s))
	if !ok {
		return Num{}, fmt.Errorf("num: parse %q: %w", s, ErrUnrepresentable)
	}
	return fromRat(r)
}

// MustParse is Parse for static literals; it panics on invalid input.
func MustParse(s string) Num {
	n, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}

func fromRat(r *big.Rat) (Num, error) {
	numer := new(big.Int).Mul(r.Num(), scale)
	denom := r.Denom()
	q, rem := new(big.Int).QuoRem(numer, denom, new(big.Int))
	rem.Abs(rem)
	rem.Lsh(rem, 1)
	if rem.Cmp(denom) >= 0 {
		if numer.Sign() < 0 {
			q.Sub(q, big.NewInt(1))
		} else {
			q.Add(q, big.NewInt(1))
		}
	}
	return checked(q)
}

// Add returns n + other.
func (n Num) Add(other Num) (Num, error) {
	return checked(new(big.Int).Add(n.ref(), other.ref()))
}

// Sub returns n - other.
func (n Num) Sub(other Num) (Num, error) {
	return checked(new(big.Int).Sub(n.ref(), other.ref()))
}

// Mul returns n * other truncated toward zero at the 48th fractional bit.
func (n Num) Mul(other Num) (Num, error) {
	product := new(big.Int).Mul(n.ref(), other.ref())
	return checked(product.Quo(product, scale))
}

// Div returns n / other truncated toward zero at the 48th fractional bit.
func (n Num) Div(other Num) (Num, error) {
	if other.IsZero() {
		return Num{}, ErrDivideByZero
	}
	quotient := new(big.Int).Lsh(n.ref(), FracBits)
	return checked(quotient.Quo(quotient, other.ref()))
}

// Neg returns -n.
func (n Num) Neg() (Num, error) {
	return checked(new(big.Int).Neg(n.ref()))
}

// Abs returns |n|.
func (n Num) Abs() (Num, error) {
	return checked(new(big.Int).Abs(n.ref()))
}

// Cmp compares n and other, returning -1, 0 or 1.
func (n Num) Cmp(other Num) int { return n.ref().Cmp(other.ref()) }

// Sign returns -1, 0 or 1 depending on the sign of n.
func (n Num) Sign() int { return n.ref().Sign() }

// IsZero reports whether n is exactly zero.
func (n Num) IsZero() bool { return n.Sign() == 0 }

// IsPositive reports whether n > 0.
func (n Num) IsPositive() bool { return n.Sign() > 0 }

// IsNegative reports whether n < 0.
func (n Num) IsNegative() bool { return n.Sign() < 0 }

// Equal reports whether n and other carry the same value.
func (n Num) Equal(other Num) bool { return n.Cmp(other) == 0 }

// Uint64 truncates n toward zero and returns it as integer token units.
// Negative values and values beyond uint64 are rejected.
func (n Num) Uint64() (uint64, error) {
	if n.Sign() < 0 {
		return 0, ErrNegative
	}
	whole := new(big.Int).Rsh(n.ref(), FracBits)
	if whole.Cmp(maxUint64) > 0 {
		return 0, ErrOverflow
	}
	return whole.Uint64(), nil
}

// Float64 returns the nearest float64. It is intended for metrics and
// logging, not for accounting math.
func (n Num) Float64() float64 {
	f, _ := new(big.Rat).SetFrac(n.ref(), scale).Float64()
	return f
}

// Rat returns the exact rational value of n.
func (n Num) Rat() *big.Rat {
	return new(big.Rat).SetFrac(new(big.Int).Set(n.ref()), scale)
}

// String renders the value as a decimal with trailing zeros trimmed.
func (n Num) String() string {
	s := n.Rat().FloatString(14)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}
