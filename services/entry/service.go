package entry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	recordsRepo "kpitracker/database/repository/records"
	"kpitracker/models"
	"kpitracker/services/period"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultEntryService implements EntryService.
type DefaultEntryService struct {
	Calendar  *period.Calendar
	Records   recordsRepo.DailyRecordRepository
	Archiver  period.ArchiveService
	SpinRules models.SpinRules
	Logger    *zap.Logger
}

func NewEntryService(cal *period.Calendar, records recordsRepo.DailyRecordRepository, archiver period.ArchiveService, rules models.SpinRules, logger *zap.Logger) *DefaultEntryService {
	if logger == nil {
		logger = zap.L()
	}
	return &DefaultEntryService{
		Calendar:  cal,
		Records:   records,
		Archiver:  archiver,
		SpinRules: rules,
		Logger:    logger.Named("entry"),
	}
}

func (s *DefaultEntryService) Today(ctx context.Context) (*models.DailyRecord, error) {
	s.closePrevious(ctx)
	return s.Records.Ensure(ctx, s.Calendar.TodayString(), s.Calendar.Current().ID)
}

func (s *DefaultEntryService) GetByDate(ctx context.Context, date string) (*models.DailyRecord, error) {
	if _, err := period.ParseDate(date); err != nil {
		return nil, invalid(err)
	}
	rec, err := s.Records.GetByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, date)
	}
	return rec, nil
}

func (s *DefaultEntryService) List(ctx context.Context, filter models.RecordFilter) ([]models.DailyRecord, error) {
	for _, d := range []string{filter.StartDate, filter.EndDate} {
		if d == "" {
			continue
		}
		if _, err := period.ParseDate(d); err != nil {
			return nil, invalid(err)
		}
	}
	return s.Records.List(ctx, filter)
}

func (s *DefaultEntryService) SetCalls(ctx context.Context, date string, calls int) (*models.DailyRecord, error) {
	if calls < 0 {
		return nil, fmt.Errorf("%w: calls_received must be >= 0", ErrInvalidInput)
	}
	periodID, err := s.writable(ctx, date)
	if err != nil {
		return nil, err
	}
	return s.Records.SetCalls(ctx, date, periodID, calls)
}

// LogCall adds one call to today's record.
func (s *DefaultEntryService) LogCall(ctx context.Context) (*models.DailyRecord, error) {
	s.closePrevious(ctx)
	return s.Records.IncrementCalls(ctx, s.Calendar.TodayString(), s.Calendar.Current().ID, 1)
}

func (s *DefaultEntryService) AddBooking(ctx context.Context, date string, in models.BookingInput) (*models.DailyRecord, error) {
	if in.Profit < 0 || in.TimeSinceLast < 0 {
		return nil, fmt.Errorf("%w: profit and time_since_last must be >= 0", ErrInvalidInput)
	}
	periodID, err := s.writable(ctx, date)
	if err != nil {
		return nil, err
	}
	return s.Records.PushBooking(ctx, date, periodID, models.Booking{
		ID:                  uuid.New().String(),
		Profit:              in.Profit,
		IsPrepaid:           in.IsPrepaid,
		HasRefundProtection: in.HasRefundProtection,
		TimeSinceLast:       in.TimeSinceLast,
		Timestamp:           s.stamp(),
	})
}

func (s *DefaultEntryService) DeleteBooking(ctx context.Context, date, bookingID string) (*models.DailyRecord, error) {
	if err := s.deletable(ctx, date, bookingID); err != nil {
		return nil, err
	}
	return s.Records.PullBooking(ctx, date, bookingID)
}

// AddSpin records a spin. When the caller does not say, the mega tier is
// derived from the booking number and the spin rules.
func (s *DefaultEntryService) AddSpin(ctx context.Context, date string, in models.SpinInput) (*models.DailyRecord, error) {
	if in.Amount < 0 || in.BookingNumber < 0 {
		return nil, fmt.Errorf("%w: amount and booking_number must be >= 0", ErrInvalidInput)
	}
	periodID, err := s.writable(ctx, date)
	if err != nil {
		return nil, err
	}
	isMega := s.SpinRules.IsMegaSpin(in.BookingNumber)
	if in.IsMega != nil {
		isMega = *in.IsMega
	}
	return s.Records.PushSpin(ctx, date, periodID, models.Spin{
		ID:            uuid.New().String(),
		Amount:        in.Amount,
		IsMega:        isMega,
		BookingNumber: in.BookingNumber,
		Timestamp:     s.stamp(),
	})
}

func (s *DefaultEntryService) DeleteSpin(ctx context.Context, date, spinID string) (*models.DailyRecord, error) {
	if err := s.deletable(ctx, date, spinID); err != nil {
		return nil, err
	}
	return s.Records.PullSpin(ctx, date, spinID)
}

func (s *DefaultEntryService) AddMisc(ctx context.Context, date string, in models.MiscIncomeInput) (*models.DailyRecord, error) {
	if in.Amount < 0 {
		return nil, fmt.Errorf("%w: amount must be >= 0", ErrInvalidInput)
	}
	periodID, err := s.writable(ctx, date)
	if err != nil {
		return nil, err
	}
	source := strings.TrimSpace(in.Source)
	if source == "" {
		source = models.DefaultMiscSource
	}
	return s.Records.PushMisc(ctx, date, periodID, models.MiscIncome{
		ID:          uuid.New().String(),
		Amount:      in.Amount,
		Source:      source,
		Description: in.Description,
		Timestamp:   s.stamp(),
	})
}

func (s *DefaultEntryService) DeleteMisc(ctx context.Context, date, miscID string) (*models.DailyRecord, error) {
	if err := s.deletable(ctx, date, miscID); err != nil {
		return nil, err
	}
	return s.Records.PullMisc(ctx, date, miscID)
}

// DeleteRecord removes a whole day, archived or not. Admin only.
func (s *DefaultEntryService) DeleteRecord(ctx context.Context, date string) error {
	if _, err := period.ParseDate(date); err != nil {
		return invalid(err)
	}
	if err := s.Records.DeleteByDate(ctx, date); err != nil {
		return err
	}
	s.Logger.Warn("Daily record deleted", zap.String("date", date))
	return nil
}

// writable closes the previous period if due, then returns the period id a
// new record for date should carry. Dates in an archived period are
// refused even if their record was never flagged.
func (s *DefaultEntryService) writable(ctx context.Context, date string) (string, error) {
	p, err := period.ResolveDate(date)
	if err != nil {
		return "", invalid(err)
	}
	s.closePrevious(ctx)
	if s.Calendar.IsClosed(p) {
		_, err := s.Archiver.Snapshot(ctx, p.ID)
		switch {
		case err == nil:
			return "", fmt.Errorf("%w: period %s is archived", ErrRecordArchived, p.ID)
		case !errors.Is(err, period.ErrSnapshotNotFound):
			return "", err
		}
	}
	return p.ID, nil
}

func (s *DefaultEntryService) deletable(ctx context.Context, date, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidInput)
	}
	_, err := s.writable(ctx, date)
	return err
}

// closePrevious is best effort; the scheduled trigger retries failures.
func (s *DefaultEntryService) closePrevious(ctx context.Context) {
	snapshot, err := s.Archiver.EnsurePreviousClosed(ctx)
	if err != nil {
		s.Logger.Warn("Lazy close of previous period failed", zap.Error(err))
		return
	}
	if snapshot != nil {
		s.Logger.Info("Previous period closed on first request", zap.String("periodID", snapshot.PeriodID))
	}
}

func (s *DefaultEntryService) stamp() time.Time {
	return s.Calendar.Now().UTC()
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}
