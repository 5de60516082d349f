package services

import "testing"

func TestComputeSplitRoundsHalfUp(t *testing.T) {
	cases := []struct {
		amount         int64
		rate           float64
		wantCommission int64
	}{
		{100000, 0.10, 10000},
		{99999, 0.10, 10000},
		{100005, 0.10, 10001},
		{101, 0.105, 11},
		{1, 0.5, 1},
		{0, 0.3, 0},
		{100, 0, 0},
		{100, 1, 100},
	}

	for _, tc := range cases {
		commission, earnings := ComputeSplit(tc.amount, tc.rate)
		if commission != tc.wantCommission {
			t.Fatalf("ComputeSplit(%d, %v): expected commission %d, got %d",
				tc.amount, tc.rate, tc.wantCommission, commission)
		}
		if commission+earnings != tc.amount {
			t.Fatalf("ComputeSplit(%d, %v): commission %d + earnings %d != amount",
				tc.amount, tc.rate, commission, earnings)
		}
	}
}

func TestComputeSplitSumIsExactAcrossRange(t *testing.T) {
	rates := []float64{0, 0.01, 0.1, 0.15, 0.333, 0.5, 0.75, 0.999, 1}
	for amount := int64(0); amount <= 5000; amount++ {
		for _, rate := range rates {
			commission, earnings := ComputeSplit(amount, rate)
			if commission+earnings != amount {
				t.Fatalf("amount %d rate %v: split %d + %d does not sum back",
					amount, rate, commission, earnings)
			}
			if commission < 0 || earnings < 0 {
				t.Fatalf("amount %d rate %v: negative split %d/%d",
					amount, rate, commission, earnings)
			}
		}
	}
}
