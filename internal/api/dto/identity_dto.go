package dto

import (
	"bytes"
	"encoding/json"
	"time"
)

// RegisterRequest payload for new applicants.
type RegisterRequest struct {
	Name        string `json:"name" validate:"required,max=64"`
	MobilePhone string `json:"mobilePhone" validate:"required,mobile"`
	District    int    `json:"district" validate:"min=1001,max=1075"`
	Thana       int    `json:"thana" validate:"min=10001,max=10626"`
	DateOfBirth Date   `json:"dateOfBirth"`
	Gender      string `json:"gender" validate:"required,oneof=F M O"`
	IDType      string `json:"idType" validate:"required,oneof=NID DL PP BR EID SID"`
	IDNumber    string `json:"idNumber" validate:"required,max=64"`
	Photo       string `json:"photo" validate:"required,url"`
}

// LoginRequest payload. DateOfBirth is ddMMyyyy.
type LoginRequest struct {
	MobilePhone string `json:"mobilePhone" validate:"required,mobile"`
	DateOfBirth string `json:"dateOfBirth" validate:"required,len=8,numeric"`
}

// ApplicantItem is the client view of an applicant.
type ApplicantItem struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	District      int       `json:"district"`
	Thana         int       `json:"thana"`
	DateOfBirth   Date      `json:"dateOfBirth"`
	Gender        string    `json:"gender"`
	IDType        string    `json:"idType"`
	IDNumber      string    `json:"idNumber"`
	Photo         string    `json:"photo"`
	CreatedAt     time.Time `json:"createdAt"`
	AppliedCount  int       `json:"appliedCount"`
	ApprovedCount int       `json:"approvedCount"`
	RejectedCount int       `json:"rejectedCount"`
}

const dateLayout = "2006-01-02"

// Date is a calendar date; it accepts "2006-01-02" or a full RFC 3339 timestamp.
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	d.Time = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(dateLayout))
}
