// File: models/goals.go
package models

import "math"

// Goals are the KPI thresholds in effect. Archived periods carry their own
// copy, so a later change here never rewrites history.
type Goals struct {
	CallsBiweekly int `bson:"calls_biweekly" json:"calls_biweekly" mapstructure:"GOAL_CALLS_BIWEEKLY"`
	CallsWeekly   int `bson:"calls_weekly" json:"calls_weekly" mapstructure:"GOAL_CALLS_WEEKLY"`
	CallsDaily    int `bson:"calls_daily" json:"calls_daily" mapstructure:"GOAL_CALLS_DAILY"`

	ReservationsBiweekly int `bson:"reservations_biweekly" json:"reservations_biweekly" mapstructure:"GOAL_RESERVATIONS_BIWEEKLY"`
	ReservationsWeekly   int `bson:"reservations_weekly" json:"reservations_weekly" mapstructure:"GOAL_RESERVATIONS_WEEKLY"`
	ReservationsDaily    int `bson:"reservations_daily" json:"reservations_daily" mapstructure:"GOAL_RESERVATIONS_DAILY"`

	ProfitBiweekly float64 `bson:"profit_biweekly" json:"profit_biweekly" mapstructure:"GOAL_PROFIT_BIWEEKLY"`
	ProfitWeekly   float64 `bson:"profit_weekly" json:"profit_weekly" mapstructure:"GOAL_PROFIT_WEEKLY"`
	ProfitDaily    float64 `bson:"profit_daily" json:"profit_daily" mapstructure:"GOAL_PROFIT_DAILY"`

	SpinsBiweekly float64 `bson:"spins_biweekly" json:"spins_biweekly" mapstructure:"GOAL_SPINS_BIWEEKLY"`
	SpinsWeekly   float64 `bson:"spins_weekly" json:"spins_weekly" mapstructure:"GOAL_SPINS_WEEKLY"`
	SpinsDaily    float64 `bson:"spins_daily" json:"spins_daily" mapstructure:"GOAL_SPINS_DAILY"`

	CombinedBiweekly float64 `bson:"combined_biweekly" json:"combined_biweekly" mapstructure:"GOAL_COMBINED_BIWEEKLY"`
	MiscBiweekly     float64 `bson:"misc_biweekly" json:"misc_biweekly" mapstructure:"GOAL_MISC_BIWEEKLY"`

	AvgSpin     float64 `bson:"avg_spin" json:"avg_spin" mapstructure:"GOAL_AVG_SPIN"`
	AvgMegaSpin float64 `bson:"avg_mega_spin" json:"avg_mega_spin" mapstructure:"GOAL_AVG_MEGA_SPIN"`

	// Minutes between bookings; lower is better.
	AvgTimePerBooking int `bson:"avg_time_per_booking" json:"avg_time_per_booking" mapstructure:"GOAL_AVG_TIME_PER_BOOKING"`

	// Derived from the biweekly reservation and call goals.
	ConversionRateTarget float64 `bson:"conversion_rate_target" json:"conversion_rate_target" mapstructure:"-"`
}

// SpinRules describe how bookings earn spins.
type SpinRules struct {
	BookingsPerSpin int `json:"bookings_per_spin" mapstructure:"SPIN_BOOKINGS_PER_SPIN"`
	SpinsPerMega    int `json:"spins_per_mega" mapstructure:"SPIN_SPINS_PER_MEGA"`
}

func DefaultGoals() Goals {
	return Goals{
		CallsBiweekly:        1710,
		CallsWeekly:          855,
		CallsDaily:           142,
		ReservationsBiweekly: 270,
		ReservationsWeekly:   135,
		ReservationsDaily:    22,
		ProfitBiweekly:       865.00,
		ProfitWeekly:         432.50,
		ProfitDaily:          72.08,
		SpinsBiweekly:        890.00,
		SpinsWeekly:          445.00,
		SpinsDaily:           74.17,
		CombinedBiweekly:     1800.00,
		MiscBiweekly:         35.00,
		AvgSpin:              5.00,
		AvgMegaSpin:          49.00,
		AvgTimePerBooking:    30,
	}.WithDerived()
}

func DefaultSpinRules() SpinRules {
	return SpinRules{BookingsPerSpin: 4, SpinsPerMega: 4}
}

// WithDerived returns a copy with the derived targets recomputed.
func (g Goals) WithDerived() Goals {
	g.ConversionRateTarget = 0
	if g.CallsBiweekly > 0 {
		rate := float64(g.ReservationsBiweekly) / float64(g.CallsBiweekly) * 100
		g.ConversionRateTarget = math.Round(rate*100) / 100
	}
	return g
}

// Settings maps each configurable goal to its config key.
func (g Goals) Settings() map[string]interface{} {
	return map[string]interface{}{
		"GOAL_CALLS_BIWEEKLY":        g.CallsBiweekly,
		"GOAL_CALLS_WEEKLY":          g.CallsWeekly,
		"GOAL_CALLS_DAILY":           g.CallsDaily,
		"GOAL_RESERVATIONS_BIWEEKLY": g.ReservationsBiweekly,
		"GOAL_RESERVATIONS_WEEKLY":   g.ReservationsWeekly,
		"GOAL_RESERVATIONS_DAILY":    g.ReservationsDaily,
		"GOAL_PROFIT_BIWEEKLY":       g.ProfitBiweekly,
		"GOAL_PROFIT_WEEKLY":         g.ProfitWeekly,
		"GOAL_PROFIT_DAILY":          g.ProfitDaily,
		"GOAL_SPINS_BIWEEKLY":        g.SpinsBiweekly,
		"GOAL_SPINS_WEEKLY":          g.SpinsWeekly,
		"GOAL_SPINS_DAILY":           g.SpinsDaily,
		"GOAL_COMBINED_BIWEEKLY":     g.CombinedBiweekly,
		"GOAL_MISC_BIWEEKLY":         g.MiscBiweekly,
		"GOAL_AVG_SPIN":              g.AvgSpin,
		"GOAL_AVG_MEGA_SPIN":         g.AvgMegaSpin,
		"GOAL_AVG_TIME_PER_BOOKING":  g.AvgTimePerBooking,
	}
}

// IsMegaSpin reports whether the spin earned at the given booking number is
// the mega tier. Zero or unknown booking numbers are never mega.
func (r SpinRules) IsMegaSpin(bookingNumber int) bool {
	cycle := r.BookingsPerSpin * r.SpinsPerMega
	if cycle <= 0 || bookingNumber <= 0 {
		return false
	}
	return bookingNumber%cycle == 0
}
