package period

import (
	"kpitracker/models"

	"github.com/shopspring/decimal"
)

// Progress bands, in percent of goal.
const (
	onTrackThreshold = 100
	warningThreshold = 75
)

// Status bands a progress percentage. Daily and period reports both use it.
func Status(progressPercent float64) string {
	switch {
	case progressPercent >= onTrackThreshold:
		return models.StatusOnTrack
	case progressPercent >= warningThreshold:
		return models.StatusWarning
	default:
		return models.StatusBehind
	}
}

// Progress is current/goal as a percentage rounded to one decimal, or 0
// when no goal is configured.
func Progress(current, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	return decimal.NewFromFloat(current).
		Div(decimal.NewFromFloat(goal)).
		Mul(decimal.NewFromInt(100)).
		Round(1).
		InexactFloat64()
}

// GoalMet reports whether current meets or exceeds goal.
func GoalMet(current, goal float64) bool {
	return current >= goal
}

func BuildMetricStat(total, goal float64) models.MetricStat {
	progress := Progress(total, goal)
	return models.MetricStat{
		Total:           round(total, 2),
		Goal:            round(goal, 2),
		ProgressPercent: progress,
		OnTrack:         GoalMet(total, goal),
		Status:          Status(progress),
	}
}

// BuildConversionStat compares the booking/call rate with the rate implied
// by the goals.
func BuildConversionStat(bookings, calls, goalBookings, goalCalls int) models.ConversionStat {
	rate := ConversionRate(bookings, calls)
	goal := ConversionRate(goalBookings, goalCalls)
	onTrack := rate >= goal
	status := models.StatusBehind
	if onTrack {
		status = models.StatusOnTrack
	}
	return models.ConversionStat{Rate: rate, Goal: goal, OnTrack: onTrack, Status: status}
}

// BuildTimeStat treats a lower average as better; no tracked bookings is
// on track.
func BuildTimeStat(average float64, goal int) models.TimeStat {
	onTrack := average <= float64(goal) || average == 0
	status := models.StatusBehind
	if onTrack {
		status = models.StatusOnTrack
	}
	return models.TimeStat{
		Average: average,
		Goal:    float64(goal),
		OnTrack: onTrack,
		Status:  status,
	}
}

// ConversionRate is bookings/calls as a percentage to two decimals, 0
// without calls.
func ConversionRate(bookings, calls int) float64 {
	if calls <= 0 {
		return 0
	}
	return decimal.NewFromInt(int64(bookings)).
		Div(decimal.NewFromInt(int64(calls))).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}

func round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
