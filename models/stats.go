// File: models/stats.go
package models

const (
	StatusOnTrack = "on_track"
	StatusWarning = "warning"
	StatusBehind  = "behind"
)

type MetricStat struct {
	Total           float64 `json:"total"`
	Goal            float64 `json:"goal"`
	ProgressPercent float64 `json:"progress_percent"`
	OnTrack         bool    `json:"on_track"`
	Status          string  `json:"status"`
}

type ConversionStat struct {
	Rate    float64 `json:"rate"`
	Goal    float64 `json:"goal"`
	OnTrack bool    `json:"on_track"`
	Status  string  `json:"status"`
}

type TimeStat struct {
	Average float64 `json:"average"`
	Goal    float64 `json:"goal"`
	OnTrack bool    `json:"on_track"`
	Status  string  `json:"status"`
}

type SpinAverages struct {
	Regular     float64 `json:"regular"`
	RegularGoal float64 `json:"regular_goal"`
	Mega        float64 `json:"mega"`
	MegaGoal    float64 `json:"mega_goal"`
}

type ReservationStat struct {
	MetricStat
	PrepaidCount          int `json:"prepaid_count"`
	RefundProtectionCount int `json:"refund_protection_count"`
}

type DailyStats struct {
	Date           string         `json:"date"`
	Calls          MetricStat     `json:"calls"`
	Reservations   MetricStat     `json:"reservations"`
	ConversionRate ConversionStat `json:"conversion_rate"`
	Profit         MetricStat     `json:"profit"`
	Spins          MetricStat     `json:"spins"`
	AvgTime        TimeStat       `json:"avg_time"`
}

type BiweeklyStats struct {
	Period         string          `json:"period"`
	PeriodID       string          `json:"period_id"`
	StartDate      string          `json:"start_date"`
	EndDate        string          `json:"end_date"`
	DaysTracked    int             `json:"days_tracked"`
	Calls          MetricStat      `json:"calls"`
	Reservations   ReservationStat `json:"reservations"`
	ConversionRate ConversionStat  `json:"conversion_rate"`
	Profit         MetricStat      `json:"profit"`
	Spins          MetricStat      `json:"spins"`
	Combined       MetricStat      `json:"combined"`
	Misc           MetricStat      `json:"misc"`
	AvgTime        TimeStat        `json:"avg_time"`
	SpinAverages   SpinAverages    `json:"spin_averages"`
}
