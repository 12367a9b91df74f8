package dto

import (
	"time"

	"github.com/movementpass/public-api/internal/pagination"
)

// ApplyRequest is the apply payload, both for POST /passes and for records
// on the apply stream. Token is only carried by stream records.
type ApplyRequest struct {
	FromLocation    string    `json:"fromLocation" validate:"required,max=64"`
	ToLocation      string    `json:"toLocation" validate:"required,max=64"`
	District        int       `json:"district" validate:"min=1001,max=1075"`
	Thana           int       `json:"thana" validate:"min=10001,max=10626"`
	DateTime        time.Time `json:"dateTime" validate:"required"`
	DurationInHour  int       `json:"durationInHour" validate:"min=1,max=72"`
	Type            string    `json:"type" validate:"required,oneof=R O"`
	Reason          string    `json:"reason" validate:"required,max=128"`
	IncludeVehicle  bool      `json:"includeVehicle"`
	VehicleNo       string    `json:"vehicleNo" validate:"max=32"`
	SelfDriven      bool      `json:"selfDriven"`
	DriverName      string    `json:"driverName" validate:"max=64"`
	DriverLicenseNo string    `json:"driverLicenseNo" validate:"max=32"`
	Token           string    `json:"token,omitempty"`
}

// IDResult is returned after a pass is created.
type IDResult struct {
	ID string `json:"id"`
}

// PassItem is the list and detail projection of a pass.
type PassItem struct {
	ID              string    `json:"id"`
	FromLocation    string    `json:"fromLocation"`
	ToLocation      string    `json:"toLocation"`
	District        int       `json:"district"`
	Thana           int       `json:"thana"`
	StartAt         time.Time `json:"startAt"`
	EndAt           time.Time `json:"endAt"`
	Type            string    `json:"type"`
	Reason          string    `json:"reason"`
	IncludeVehicle  bool      `json:"includeVehicle"`
	VehicleNo       *string   `json:"vehicleNo"`
	SelfDriven      bool      `json:"selfDriven"`
	DriverName      *string   `json:"driverName"`
	DriverLicenseNo *string   `json:"driverLicenseNo"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
}

// PassDetail adds the owning applicant to a pass.
type PassDetail struct {
	PassItem
	Applicant *ApplicantItem `json:"applicant"`
}

// PassListResult is one page of the caller's passes.
type PassListResult struct {
	Passes  []PassItem         `json:"passes"`
	NextKey *pagination.Cursor `json:"nextKey"`
}
