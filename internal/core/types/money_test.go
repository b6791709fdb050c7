package types

import (
	"testing"
)

func TestRoundMoney_HalfAwayFromZero(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.005", "1.01"},
		{"-1.005", "-1.01"},
		{"2.675", "2.68"},
		{"1.004", "1"},
		{"0.125", "0.13"}, // banker's rounding would give 0.12
		{"99.999", "100"},
	}

	for _, tt := range tests {
		got := RoundMoney(MustMoney(tt.in))
		if got.String() != tt.want {
			t.Errorf("RoundMoney(%s) = %s, want %s", tt.in, got.String(), tt.want)
		}
	}
}

func TestApplyDiscount_NoIntermediateRounding(t *testing.T) {
	// 33.33 with 15% discount: 28.3305 must survive until the caller rounds.
	got := ApplyDiscount(MustMoney("33.33"), MustMoney("15"))
	if got.String() != "28.3305" {
		t.Errorf("ApplyDiscount = %s, want 28.3305", got.String())
	}
	if RoundMoney(got).String() != "28.33" {
		t.Errorf("rounded = %s, want 28.33", RoundMoney(got).String())
	}
}

func TestVATAmount(t *testing.T) {
	got := VATAmount(MustMoney("90"), MustMoney("20"))
	if got.String() != "18" {
		t.Errorf("VATAmount(90, 20) = %s, want 18", got.String())
	}

	// VAT rounds independently of the net amount.
	got = VATAmount(MustMoney("10.01"), MustMoney("10"))
	if got.String() != "1" {
		t.Errorf("VATAmount(10.01, 10) = %s, want 1", got.String())
	}
}
