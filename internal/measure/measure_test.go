package measure

import (
	"testing"

	"depo-backend/internal/apperr"

	"github.com/shopspring/decimal"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"unit", "AREA", " weight ", "length"} {
		if _, err := ParseKind(s); err != nil {
			t.Fatalf("ParseKind(%q): %v", s, err)
		}
	}
	for _, s := range []string{"", "koli", "volume"} {
		_, err := ParseKind(s)
		if !apperr.HasCode(err, apperr.CodeInvalidStockUnit) {
			t.Fatalf("ParseKind(%q) = %v, want INVALID_STOCK_UNIT", s, err)
		}
	}
}

func TestApply(t *testing.T) {
	cases := []struct {
		name    string
		kind    Kind
		in      Input
		code    string
		current string
	}{
		{"unit always one", KindUnit, Input{Weight: dec("5")}, "", "1"},
		{"area product", KindArea, Input{Width: dec("2.5"), Height: dec("4")}, "", "10"},
		{"area missing height", KindArea, Input{Width: dec("2")}, apperr.CodeDimensionsRequired, ""},
		{"area zero width", KindArea, Input{Width: dec("0"), Height: dec("3")}, apperr.CodeDimensionsRequired, ""},
		{"weight", KindWeight, Input{Weight: dec("12.125"), Length: dec("3")}, "", "12.125"},
		{"weight negative", KindWeight, Input{Weight: dec("-1")}, apperr.CodeWeightRequired, ""},
		{"length missing", KindLength, Input{}, apperr.CodeLengthRequired, ""},
		{"length", KindLength, Input{Length: dec("7")}, "", "7"},
		{"weight below scale", KindWeight, Input{Weight: dec("0.00004")}, apperr.CodeWeightRequired, ""},
		{"length five decimals", KindLength, Input{Length: dec("1.23456")}, apperr.CodeLengthRequired, ""},
		{"area rounds to zero", KindArea, Input{Width: dec("0.01"), Height: dec("0.001")}, apperr.CodeDimensionsRequired, ""},
		{"area product rounded", KindArea, Input{Width: dec("1.25"), Height: dec("1.125")}, "", "1.4063"},
		{"unknown", Kind("volume"), Input{}, apperr.CodeInvalidStockUnit, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := Apply(tc.kind, tc.in)
			if tc.code != "" {
				if !apperr.HasCode(err, tc.code) {
					t.Fatalf("err = %v, want %s", err, tc.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if !Consistent(tc.kind, f) {
				t.Fatalf("fields not consistent with %s: %+v", tc.kind, f)
			}
			if got := Current(tc.kind, f); !got.Equal(decimal.RequireFromString(tc.current)) {
				t.Fatalf("Current = %s, want %s", got, tc.current)
			}
		})
	}
}

func TestSetClearsForeignColumns(t *testing.T) {
	f := Fields{
		Quantity: decimal.NewNullDecimal(decimal.NewFromInt(1)),
		Weight:   decimal.NewNullDecimal(decimal.NewFromInt(4)),
	}
	Set(KindWeight, &f, decimal.NewFromInt(3))
	if f.Quantity.Valid {
		t.Fatal("quantity should be cleared when switching to weight")
	}
	if !Consistent(KindWeight, f) {
		t.Fatalf("not consistent: %+v", f)
	}
}

func TestDecrementKeepsDimensions(t *testing.T) {
	f, err := Apply(KindArea, Input{Width: dec("2"), Height: dec("5")})
	if err != nil {
		t.Fatal(err)
	}
	left, err := Decrement(KindArea, &f, decimal.NewFromInt(10))
	if err != nil {
		t.Fatal(err)
	}
	if !left.IsZero() || !f.Area.Valid || !f.Width.Valid {
		t.Fatalf("unexpected after decrement: left=%s fields=%+v", left, f)
	}
	if _, err := Decrement(KindArea, &f, decimal.NewFromInt(1)); err != ErrNegative {
		t.Fatalf("err = %v, want ErrNegative", err)
	}
}

func TestUnits(t *testing.T) {
	if KindArea.Unit() != "m2" || KindUnit.Unit() != "adet" {
		t.Fatal("unexpected unit names")
	}
}

func TestExactAndDecrementPrecision(t *testing.T) {
	for s, want := range map[string]bool{"1": true, "0.0001": true, "12.5000": true, "0.00004": false, "3.14159": false} {
		if got := Exact(decimal.RequireFromString(s)); got != want {
			t.Fatalf("Exact(%s) = %v, want %v", s, got, want)
		}
	}

	f := WithAmount(KindArea, decimal.NewFromInt(10))
	if _, err := Decrement(KindArea, &f, decimal.RequireFromString("0.00004")); err != ErrPrecision {
		t.Fatalf("err = %v, want ErrPrecision", err)
	}
	if !Current(KindArea, f).Equal(decimal.NewFromInt(10)) {
		t.Fatalf("rejected decrement changed the measure: %s", Current(KindArea, f))
	}
	left, err := Decrement(KindArea, &f, decimal.RequireFromString("0.0001"))
	if err != nil || !left.Equal(decimal.RequireFromString("9.9999")) {
		t.Fatalf("left = %s err = %v", left, err)
	}
}
