package recordsRepo

import (
	"time"

	"kpitracker/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// storedRecord is the on-disk shape, which may be partial for legacy data.
type storedRecord struct {
	ObjectID      primitive.ObjectID  `bson:"_id,omitempty"`
	ID            string              `bson:"id"`
	Date          string              `bson:"date"`
	PeriodID      string              `bson:"period_id"`
	Archived      bool                `bson:"archived"`
	CallsReceived int                 `bson:"calls_received,truncate"`
	Bookings      []models.Booking    `bson:"bookings"`
	Spins         []models.Spin       `bson:"spins"`
	Bonuses       []models.Spin       `bson:"bonuses,omitempty"` // pre-rename spins
	MiscIncome    []models.MiscIncome `bson:"misc_income"`
	CreatedAt     time.Time           `bson:"created_at"`
	UpdatedAt     time.Time           `bson:"updated_at"`
}

// normalize maps a stored document to a fully populated record.
func normalize(s storedRecord) models.DailyRecord {
	rec := models.DailyRecord{
		ObjectID:      s.ObjectID,
		ID:            s.ID,
		Date:          s.Date,
		PeriodID:      s.PeriodID,
		Archived:      s.Archived,
		CallsReceived: s.CallsReceived,
		Bookings:      s.Bookings,
		Spins:         append(append([]models.Spin{}, s.Spins...), s.Bonuses...),
		MiscIncome:    s.MiscIncome,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	if rec.ID == "" && !s.ObjectID.IsZero() {
		rec.ID = s.ObjectID.Hex()
	}
	if rec.CallsReceived < 0 {
		rec.CallsReceived = 0
	}
	if rec.Bookings == nil {
		rec.Bookings = []models.Booking{}
	}
	if rec.MiscIncome == nil {
		rec.MiscIncome = []models.MiscIncome{}
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = rec.UpdatedAt
	}
	return rec
}
