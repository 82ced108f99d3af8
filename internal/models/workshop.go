package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Subject is the closed set of workshop categories.
type Subject string

const (
	SubjectDev       Subject = "Dev"
	SubjectUX        Subject = "UX"
	SubjectPO        Subject = "PO"
	SubjectResearch  Subject = "Research"
	SubjectPortfolio Subject = "Portfolio"
	SubjectMisc      Subject = "Misc"
)

// Subjects lists every valid subject in display order.
var Subjects = []Subject{SubjectDev, SubjectUX, SubjectPO, SubjectResearch, SubjectPortfolio, SubjectMisc}

// Valid reports whether s is one of the known subjects.
func (s Subject) Valid() bool {
	for _, known := range Subjects {
		if s == known {
			return true
		}
	}
	return false
}

// DateLayout is the calendar date format used on the wire and in storage.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time component.
type Date struct {
	time.Time
}

// ParseDate parses a YYYY-MM-DD string, rejecting anything that does not
// round-trip (e.g. 2024-02-30 or 2024-1-5).
func ParseDate(value string) (Date, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil || t.Format(DateLayout) != value {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// Before reports whether d is an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// MarshalJSON renders the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON parses a "YYYY-MM-DD" string.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (d *Date) scanString(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// GormDataType tells gorm which column type backs Date.
func (Date) GormDataType() string {
	return "date"
}

// Workshop is a scheduled session owned by a teacher.
type Workshop struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description" gorm:"not null"`
	Subject     Subject   `json:"subject" gorm:"type:varchar(16);not null"`
	Date        Date      `json:"date" gorm:"not null"`
	TeacherID   string    `json:"teacher_id" gorm:"type:uuid;not null;index"`
	Teacher     *User     `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for the Workshop model.
func (Workshop) TableName() string {
	return "workshops"
}

// WorkshopFilter narrows the public schedule listing.
type WorkshopFilter struct {
	Subject   Subject
	Date      *Date
	TeacherID string
}
