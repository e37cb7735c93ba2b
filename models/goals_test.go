package models

import "testing"

func TestDefaultGoalsConversionTarget(t *testing.T) {
	g := DefaultGoals()
	if g.ConversionRateTarget != 15.79 {
		t.Fatalf("expected 15.79, got %v", g.ConversionRateTarget)
	}

	g.CallsBiweekly = 0
	if got := g.WithDerived().ConversionRateTarget; got != 0 {
		t.Fatalf("zero call goal should give 0 target, got %v", got)
	}
}

func TestSettingsCoversEveryConfigurableGoal(t *testing.T) {
	settings := DefaultGoals().Settings()
	if len(settings) != 17 {
		t.Fatalf("expected 17 goal settings, got %d", len(settings))
	}
	if settings["GOAL_CALLS_BIWEEKLY"] != 1710 {
		t.Fatalf("unexpected calls goal %v", settings["GOAL_CALLS_BIWEEKLY"])
	}
	if _, ok := settings["GOAL_CONVERSION_RATE_TARGET"]; ok {
		t.Fatalf("derived target must not be configurable")
	}
}

func TestIsMegaSpin(t *testing.T) {
	rules := DefaultSpinRules()
	tests := []struct {
		booking int
		want    bool
	}{
		{0, false},
		{4, false},
		{12, false},
		{16, true},
		{32, true},
		{-16, false},
	}
	for _, tt := range tests {
		if got := rules.IsMegaSpin(tt.booking); got != tt.want {
			t.Fatalf("IsMegaSpin(%d) = %v, want %v", tt.booking, got, tt.want)
		}
	}
	if (SpinRules{}).IsMegaSpin(16) {
		t.Fatalf("zero rules should never mark mega")
	}
}
