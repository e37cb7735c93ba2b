// File: models/records.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DailyRecord carries one calendar day of sales activity. Unique by Date.
type DailyRecord struct {
	ObjectID      primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ID            string             `bson:"id" json:"id"`
	Date          string             `bson:"date" json:"date"` // YYYY-MM-DD
	PeriodID      string             `bson:"period_id" json:"period_id"`
	Archived      bool               `bson:"archived" json:"archived"`
	CallsReceived int                `bson:"calls_received" json:"calls_received"`
	Bookings      []Booking          `bson:"bookings" json:"bookings"`
	Spins         []Spin             `bson:"spins" json:"spins"`
	MiscIncome    []MiscIncome       `bson:"misc_income" json:"misc_income"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

type Booking struct {
	ID                  string    `bson:"id" json:"id"`
	Profit              float64   `bson:"profit" json:"profit"`
	IsPrepaid           bool      `bson:"is_prepaid" json:"is_prepaid"`
	HasRefundProtection bool      `bson:"has_refund_protection" json:"has_refund_protection"`
	TimeSinceLast       int       `bson:"time_since_last,truncate" json:"time_since_last"` // minutes, 0 = not tracked
	Timestamp           time.Time `bson:"timestamp" json:"timestamp"`
}

type Spin struct {
	ID            string    `bson:"id" json:"id"`
	Amount        float64   `bson:"amount" json:"amount"`
	IsMega        bool      `bson:"is_mega" json:"is_mega"`
	BookingNumber int       `bson:"booking_number,truncate" json:"booking_number"`
	Timestamp     time.Time `bson:"timestamp" json:"timestamp"`
}

type MiscIncome struct {
	ID          string    `bson:"id" json:"id"`
	Amount      float64   `bson:"amount" json:"amount"`
	Source      string    `bson:"source" json:"source"`
	Description string    `bson:"description" json:"description"`
	Timestamp   time.Time `bson:"timestamp" json:"timestamp"`
}

const DefaultMiscSource = "request_lead"

type BookingInput struct {
	Profit              float64 `json:"profit"`
	IsPrepaid           bool    `json:"is_prepaid"`
	HasRefundProtection bool    `json:"has_refund_protection"`
	TimeSinceLast       int     `json:"time_since_last" binding:"gte=0"`
}

type SpinInput struct {
	Amount        float64 `json:"amount"`
	IsMega        *bool   `json:"is_mega"` // nil = derive from spin rules
	BookingNumber int     `json:"booking_number" binding:"gte=0"`
}

type MiscIncomeInput struct {
	Amount      float64 `json:"amount"`
	Source      string  `json:"source"`
	Description string  `json:"description"`
}

// RecordFilter narrows a record listing. Empty bounds are ignored.
type RecordFilter struct {
	StartDate string
	EndDate   string
	Archived  *bool
	Limit     int64
}
