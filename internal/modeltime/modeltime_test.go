package modeltime

import "testing"

func TestPeriodYearRoundTrip(t *testing.T) {
	mt := Default()

	if got := mt.MaxPeriods(); got != DefaultPeriods {
		t.Fatalf("MaxPeriods: got %d, want %d", got, DefaultPeriods)
	}
	if got := mt.EndYear(); got != 2095 {
		t.Fatalf("EndYear: got %d, want 2095", got)
	}

	for period := 0; period < mt.MaxPeriods(); period++ {
		year := mt.PeriodToYear(period)
		if got := mt.YearToPeriod(year); got != period {
			t.Errorf("round trip period %d: year %d mapped back to %d", period, year, got)
		}
	}
}

func TestYearToPeriodClamping(t *testing.T) {
	mt := Default()

	tests := []struct {
		name string
		year int
		want int
	}{
		{"before_base_year", 1900, 0},
		{"base_year", 1975, 0},
		{"mid_step", 1980, 0},
		{"second_period", 1990, 1},
		{"end_year", 2095, 8},
		{"beyond_horizon", 2200, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mt.YearToPeriod(tt.year); got != tt.want {
				t.Errorf("YearToPeriod(%d): got %d, want %d", tt.year, got, tt.want)
			}
		})
	}
}

func TestNewRejectsBadArguments(t *testing.T) {
	if _, err := New(1975, 0, 9); err == nil {
		t.Error("expected error for zero year step")
	}
	if _, err := New(1975, 15, 0); err == nil {
		t.Error("expected error for zero periods")
	}
}
