package period

import "kpitracker/models"

const biweeklyLabel = "biweekly"

// BuildDailyStats scores one day against the daily goals.
func BuildDailyStats(date string, s Summary, g models.Goals) models.DailyStats {
	return models.DailyStats{
		Date:           date,
		Calls:          BuildMetricStat(float64(s.Calls), float64(g.CallsDaily)),
		Reservations:   BuildMetricStat(float64(s.Bookings), float64(g.ReservationsDaily)),
		ConversionRate: BuildConversionStat(s.Bookings, s.Calls, g.ReservationsDaily, g.CallsDaily),
		Profit:         BuildMetricStat(s.Profit, g.ProfitDaily),
		Spins:          BuildMetricStat(s.Spins, g.SpinsDaily),
		AvgTime:        BuildTimeStat(s.AvgTimeBetweenBookings, g.AvgTimePerBooking),
	}
}

// BuildBiweeklyStats scores a period against the biweekly goals.
func BuildBiweeklyStats(p models.Period, s Summary, g models.Goals) models.BiweeklyStats {
	return models.BiweeklyStats{
		Period:    biweeklyLabel,
		PeriodID:  p.ID,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		// One record per date, so the record count is the days tracked.
		DaysTracked: s.RecordCount,
		Calls:       BuildMetricStat(float64(s.Calls), float64(g.CallsBiweekly)),
		Reservations: models.ReservationStat{
			MetricStat:            BuildMetricStat(float64(s.Bookings), float64(g.ReservationsBiweekly)),
			PrepaidCount:          s.PrepaidCount,
			RefundProtectionCount: s.RefundProtectionCount,
		},
		ConversionRate: BuildConversionStat(s.Bookings, s.Calls, g.ReservationsBiweekly, g.CallsBiweekly),
		Profit:         BuildMetricStat(s.Profit, g.ProfitBiweekly),
		Spins:          BuildMetricStat(s.Spins, g.SpinsBiweekly),
		Combined:       BuildMetricStat(s.Combined, g.CombinedBiweekly),
		Misc:           BuildMetricStat(s.Misc, g.MiscBiweekly),
		AvgTime:        BuildTimeStat(s.AvgTimeBetweenBookings, g.AvgTimePerBooking),
		SpinAverages: models.SpinAverages{
			Regular:     s.AvgRegularSpin,
			RegularGoal: g.AvgSpin,
			Mega:        s.AvgMegaSpin,
			MegaGoal:    g.AvgMegaSpin,
		},
	}
}

// BuildSnapshot turns a closed period's summary into its write-once record.
// Goals are copied by value.
func BuildSnapshot(id string, p models.Period, s Summary, g models.Goals) models.PeriodSnapshot {
	return models.PeriodSnapshot{
		ID:                id,
		PeriodID:          p.ID,
		StartDate:         p.StartDate,
		EndDate:           p.EndDate,
		Status:            models.PeriodStatusClosed,
		EntryCount:        s.RecordCount,
		Totals:            s.Totals(),
		Goals:             g,
		GoalsMet:          s.GoalsMet(g),
		ConversionRate:    s.ConversionRate,
		AvgTimePerBooking: s.AvgTimeBetweenBookings,
	}
}
