// File: models/period.go
package models

import "time"

const PeriodStatusClosed = "closed"

// Period is a half-month reporting window: day 1-14 or day 15-last.
type Period struct {
	ID        string `json:"period_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// PeriodSnapshot is the write-once summary of a closed period.
type PeriodSnapshot struct {
	ID                string       `bson:"id" json:"id"`
	PeriodID          string       `bson:"period_id" json:"period_id"`
	StartDate         string       `bson:"start_date" json:"start_date"`
	EndDate           string       `bson:"end_date" json:"end_date"`
	Status            string       `bson:"status" json:"status"`
	EntryCount        int          `bson:"entry_count" json:"entry_count"`
	Totals            PeriodTotals `bson:"totals" json:"totals"`
	Goals             Goals        `bson:"goals" json:"goals"`
	GoalsMet          GoalsMet     `bson:"goals_met" json:"goals_met"`
	ConversionRate    float64      `bson:"conversion_rate" json:"conversion_rate"`
	AvgTimePerBooking float64      `bson:"avg_time_per_booking" json:"avg_time_per_booking"`
	ArchivedAt        time.Time    `bson:"archived_at" json:"archived_at"`
}

type PeriodTotals struct {
	Calls                 int     `bson:"calls" json:"calls"`
	Reservations          int     `bson:"reservations" json:"reservations"`
	Profit                float64 `bson:"profit" json:"profit"`
	Spins                 float64 `bson:"spins" json:"spins"`
	Combined              float64 `bson:"combined" json:"combined"`
	Misc                  float64 `bson:"misc" json:"misc"`
	PrepaidCount          int     `bson:"prepaid_count" json:"prepaid_count"`
	RefundProtectionCount int     `bson:"refund_protection_count" json:"refund_protection_count"`
}

type GoalsMet struct {
	Calls        bool `bson:"calls" json:"calls"`
	Reservations bool `bson:"reservations" json:"reservations"`
	Profit       bool `bson:"profit" json:"profit"`
	Spins        bool `bson:"spins" json:"spins"`
	Combined     bool `bson:"combined" json:"combined"`
	Misc         bool `bson:"misc" json:"misc"`
}

// PeriodInfo describes the open period and whether its predecessor closed.
type PeriodInfo struct {
	Period
	IsBoundaryDay  bool               `json:"is_boundary_day"`
	DaysRemaining  int                `json:"days_remaining"`
	PreviousPeriod PreviousPeriodInfo `json:"previous_period"`
}

type PreviousPeriodInfo struct {
	PeriodID   string `json:"period_id"`
	IsArchived bool   `json:"is_archived"`
}

// MigrationResult reports a legacy backfill run.
type MigrationResult struct {
	MigratedEntries int    `json:"migrated_entries"`
	PeriodsCreated  int    `json:"periods_created"`
	PeriodsFound    int    `json:"periods_found"`
	SkippedEntries  int    `json:"skipped_entries"`
	Message         string `json:"message"`
}
