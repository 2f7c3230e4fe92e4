package fixedpoint

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

func TestRoundTripWithinOneULP(t *testing.T) {
	cases := []string{
		"1",
		"0.0000001",
		"1.000000000000000001",
		"0.9",
		"1.1",
		"42",
		"123456789.987654321",
		"79228162514264337593543950336", // 2^96
	}

	ulp := decimal.New(1, -DisplayPrecision)

	for _, raw := range cases {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			t.Fatalf("bad case %q: %v", raw, err)
		}
		q, err := FromDecimal(d)
		if err != nil {
			t.Fatalf("FromDecimal(%s): %v", raw, err)
		}
		back, err := ToDecimal(q)
		if err != nil {
			t.Fatalf("ToDecimal(%s): %v", q, err)
		}
		diff := back.Sub(d).Abs()
		if diff.GreaterThan(ulp) {
			t.Errorf("round trip of %s drifted by %s (> %s)", raw, diff, ulp)
		}
	}
}

func TestFromDecimalRejectsNonPositive(t *testing.T) {
	for _, raw := range []string{"0", "-1", "-0.0000001"} {
		d, _ := decimal.NewFromString(raw)
		if _, err := FromDecimal(d); err == nil {
			t.Errorf("FromDecimal(%s) should fail", raw)
		}
	}
}

func TestFromFloatRejectsNonFinite(t *testing.T) {
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if _, err := FromFloat(f); err != nil {
			continue
		}
		t.Errorf("FromFloat(%v) should fail", f)
	}
}

func TestFromDecimalFloors(t *testing.T) {
	// 1 + 2^-97 is below the smallest Q64.96 step above one, so it must
	// floor to exactly 2^96.
	d := decimal.NewFromInt(1).Add(decimal.NewFromInt(1).DivRound(decimal.NewFromInt(2).Pow(decimal.NewFromInt(97)), 40))
	q, err := FromDecimal(d)
	if err != nil {
		t.Fatalf("FromDecimal: %v", err)
	}
	if !q.Equal(Q96()) {
		t.Errorf("expected floor to 2^96, got %s", q)
	}
}

func TestToDecimalRejectsNonPositive(t *testing.T) {
	if _, err := ToDecimal(Q96().Neg()); err == nil {
		t.Error("negative Q64.96 value should be rejected")
	}
}
