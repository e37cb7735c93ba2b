package entry

import (
	"context"

	"kpitracker/models"
)

// EntryService records daily activity. Writes go to the record of the
// given date and are refused once that date's period is archived.
type EntryService interface {
	Today(ctx context.Context) (*models.DailyRecord, error)
	GetByDate(ctx context.Context, date string) (*models.DailyRecord, error)
	List(ctx context.Context, filter models.RecordFilter) ([]models.DailyRecord, error)

	SetCalls(ctx context.Context, date string, calls int) (*models.DailyRecord, error)
	LogCall(ctx context.Context) (*models.DailyRecord, error)

	AddBooking(ctx context.Context, date string, in models.BookingInput) (*models.DailyRecord, error)
	DeleteBooking(ctx context.Context, date, bookingID string) (*models.DailyRecord, error)
	AddSpin(ctx context.Context, date string, in models.SpinInput) (*models.DailyRecord, error)
	DeleteSpin(ctx context.Context, date, spinID string) (*models.DailyRecord, error)
	AddMisc(ctx context.Context, date string, in models.MiscIncomeInput) (*models.DailyRecord, error)
	DeleteMisc(ctx context.Context, date, miscID string) (*models.DailyRecord, error)

	DeleteRecord(ctx context.Context, date string) error
}
