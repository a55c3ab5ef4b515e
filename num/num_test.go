package num

import (
	"errors"
	"testing"
)

func TestBitsRoundTrip(t *testing.T) {
	values := []string{"0", "1", "-1", "0.5", "-0.5", "123456789.000000001", "-98765.4321", "604800000000"}
	for _, s := range values {
		n := MustParse(s)
		hi, lo := n.Bits()
		if got := FromBits(hi, lo); !got.Equal(n) {
			t.Fatalf("bits round trip for %s: got %s", s, got)
		}
		if got := FromBytes(n.Bytes()); !got.Equal(n) {
			t.Fatalf("bytes round trip for %s: got %s", s, got)
		}
	}
}

func TestBitsRoundTripExtremes(t *testing.T) {
	for _, tc := range []struct {
		hi int64
		lo uint64
	}{
		{0, 0},
		{0, 1},
		{-1, ^uint64(0)},
		{1<<63 - 1, ^uint64(0)},
		{-1 << 63, 0},
	} {
		n := FromBits(tc.hi, tc.lo)
		hi, lo := n.Bits()
		if hi != tc.hi || lo != tc.lo {
			t.Fatalf("extreme bits (%d,%d) round trip: got (%d,%d)", tc.hi, tc.lo, hi, lo)
		}
	}
}

func TestCheckedArithmetic(t *testing.T) {
	two := FromInt64(2)
	three := FromInt64(3)

	sum, err := two.Add(three)
	if err != nil || !sum.Equal(FromInt64(5)) {
		t.Fatalf("2+3: got %s err %v", sum, err)
	}
	diff, err := two.Sub(three)
	if err != nil || !diff.Equal(FromInt64(-1)) {
		t.Fatalf("2-3: got %s err %v", diff, err)
	}
	product, err := two.Mul(three)
	if err != nil || !product.Equal(FromInt64(6)) {
		t.Fatalf("2*3: got %s err %v", product, err)
	}
	quotient, err := three.Div(two)
	if err != nil || !quotient.Equal(MustParse("1.5")) {
		t.Fatalf("3/2: got %s err %v", quotient, err)
	}
}

func TestDivideByZero(t *testing.T) {
	if _, err := One().Div(Zero()); !errors.Is(err, ErrDivideByZero) {
		t.Fatalf("expected ErrDivideByZero, got %v", err)
	}
}

func TestOverflowDetected(t *testing.T) {
	max := FromBits(1<<63-1, ^uint64(0))
	if _, err := max.Add(One()); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow on max+1, got %v", err)
	}
	if _, err := max.Mul(FromInt64(2)); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow on max*2, got %v", err)
	}
	min := FromBits(-1<<63, 0)
	if _, err := min.Neg(); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow negating min, got %v", err)
	}
	if _, err := min.Sub(One()); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow on min-1, got %v", err)
	}
}

func TestParse(t *testing.T) {
	if n := MustParse("0.25"); n.Float64() != 0.25 {
		t.Fatalf("parse 0.25: got %s", n)
	}
	if n := MustParse("-2.5"); n.Float64() != -2.5 {
		t.Fatalf("parse -2.5: got %s", n)
	}
	if _, err := Parse("not-a-number"); !errors.Is(err, ErrUnrepresentable) {
		t.Fatalf("expected ErrUnrepresentable, got %v", err)
	}
	// Values past the integer range must be rejected, not clamped.
	if _, err := Parse("1000000000000000000000000000000"); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
}

func TestUint64Truncates(t *testing.T) {
	v, err := MustParse("41.999").Uint64()
	if err != nil || v != 41 {
		t.Fatalf("expected 41, got %d err %v", v, err)
	}
	if _, err := MustParse("-0.1").Uint64(); !errors.Is(err, ErrNegative) {
		t.Fatalf("expected ErrNegative, got %v", err)
	}
}

func TestString(t *testing.T) {
	for _, tc := range []struct{ in, want string }{
		{"0", "0"},
		{"1", "1"},
		{"0.5", "0.5"},
		{"-12.25", "-12.25"},
	} {
		if got := MustParse(tc.in).String(); got != tc.want {
			t.Fatalf("string of %s: got %s want %s", tc.in, got, tc.want)
		}
	}
}
