package period

import (
	"context"
	"fmt"

	recordsRepo "kpitracker/database/repository/records"
	"kpitracker/models"

	"github.com/shopspring/decimal"
)

// Summary is the reduction of a set of daily records.
type Summary struct {
	RecordCount           int     `json:"record_count"`
	Calls                 int     `json:"calls"`
	Bookings              int     `json:"bookings"`
	Profit                float64 `json:"profit"`
	Spins                 float64 `json:"spins"`
	Combined              float64 `json:"combined"`
	Misc                  float64 `json:"misc"`
	PrepaidCount          int     `json:"prepaid_count"`
	RefundProtectionCount int     `json:"refund_protection_count"`
	// Mean of booking gaps > 0 minutes; untracked gaps are excluded.
	AvgTimeBetweenBookings float64 `json:"avg_time_between_bookings"`
	ConversionRate         float64 `json:"conversion_rate"`
	AvgRegularSpin         float64 `json:"avg_regular_spin"`
	AvgMegaSpin            float64 `json:"avg_mega_spin"`
}

// Aggregator reads a period's records and reduces them.
type Aggregator struct {
	Records recordsRepo.DailyRecordRepository
}

func NewAggregator(records recordsRepo.DailyRecordRepository) *Aggregator {
	return &Aggregator{Records: records}
}

// Aggregate reduces every record in the period's date range or linked to
// its id. Live reporting passes includeArchived=false.
func (a *Aggregator) Aggregate(ctx context.Context, p models.Period, includeArchived bool) (Summary, error) {
	records, err := a.Records.FindForPeriod(ctx, p, includeArchived)
	if err != nil {
		return Summary{}, fmt.Errorf("aggregate %s: %w", p.ID, err)
	}
	return Reduce(records), nil
}

// Reduce folds records into totals. The result does not depend on record
// order: money is summed exactly and averages come from sums and counts.
func Reduce(records []models.DailyRecord) Summary {
	var (
		s                    Summary
		profit, spins, misc  decimal.Decimal
		regularSum, megaSum  decimal.Decimal
		regularCount, megaCt int64
		timeSum, timeCount   int64
	)

	for _, rec := range records {
		s.RecordCount++
		s.Calls += rec.CallsReceived

		for _, b := range rec.Bookings {
			s.Bookings++
			profit = profit.Add(decimal.NewFromFloat(b.Profit))
			if b.IsPrepaid {
				s.PrepaidCount++
			}
			if b.HasRefundProtection {
				s.RefundProtectionCount++
			}
			if b.TimeSinceLast > 0 {
				timeSum += int64(b.TimeSinceLast)
				timeCount++
			}
		}

		for _, sp := range rec.Spins {
			amount := decimal.NewFromFloat(sp.Amount)
			spins = spins.Add(amount)
			if sp.IsMega {
				megaSum = megaSum.Add(amount)
				megaCt++
			} else {
				regularSum = regularSum.Add(amount)
				regularCount++
			}
		}

		for _, m := range rec.MiscIncome {
			misc = misc.Add(decimal.NewFromFloat(m.Amount))
		}
	}

	s.Profit = profit.Round(2).InexactFloat64()
	s.Spins = spins.Round(2).InexactFloat64()
	s.Combined = profit.Add(spins).Round(2).InexactFloat64()
	s.Misc = misc.Round(2).InexactFloat64()
	s.ConversionRate = ConversionRate(s.Bookings, s.Calls)
	s.AvgTimeBetweenBookings = mean(decimal.NewFromInt(timeSum), timeCount, 1)
	s.AvgRegularSpin = mean(regularSum, regularCount, 2)
	s.AvgMegaSpin = mean(megaSum, megaCt, 2)
	return s
}

// Totals is the snapshot form of the summary.
func (s Summary) Totals() models.PeriodTotals {
	return models.PeriodTotals{
		Calls:                 s.Calls,
		Reservations:          s.Bookings,
		Profit:                s.Profit,
		Spins:                 s.Spins,
		Combined:              s.Combined,
		Misc:                  s.Misc,
		PrepaidCount:          s.PrepaidCount,
		RefundProtectionCount: s.RefundProtectionCount,
	}
}

// GoalsMet evaluates each biweekly goal against the summary.
func (s Summary) GoalsMet(g models.Goals) models.GoalsMet {
	return models.GoalsMet{
		Calls:        GoalMet(float64(s.Calls), float64(g.CallsBiweekly)),
		Reservations: GoalMet(float64(s.Bookings), float64(g.ReservationsBiweekly)),
		Profit:       GoalMet(s.Profit, g.ProfitBiweekly),
		Spins:        GoalMet(s.Spins, g.SpinsBiweekly),
		Combined:     GoalMet(s.Combined, g.CombinedBiweekly),
		Misc:         GoalMet(s.Misc, g.MiscBiweekly),
	}
}

func mean(sum decimal.Decimal, count int64, places int32) float64 {
	if count == 0 {
		return 0
	}
	return sum.Div(decimal.NewFromInt(count)).Round(places).InexactFloat64()
}
