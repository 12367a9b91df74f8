package domain

import "time"

// PassStatus enumerates lifecycle states for passes.
type PassStatus string

const (
	PassStatusApplied  PassStatus = "APPLIED"
	PassStatusApproved PassStatus = "APPROVED"
	PassStatusRejected PassStatus = "REJECTED"
)

// Pass is a time-bounded movement authorization owned by one applicant.
type Pass struct {
	ID              string
	ApplicantID     string
	FromLocation    string
	ToLocation      string
	District        int
	Thana           int
	StartAt         time.Time
	EndAt           time.Time
	Type            string
	Reason          string
	IncludeVehicle  bool
	VehicleNo       *string
	SelfDriven      bool
	DriverName      *string
	DriverLicenseNo *string
	Status          PassStatus
	CreatedAt       time.Time
}

// ClearVehicleDetails enforces the vehicle and driver rules: without a
// vehicle nothing vehicle related survives, and a self-driven vehicle has no
// separate driver.
func (p *Pass) ClearVehicleDetails() {
	if !p.IncludeVehicle {
		p.VehicleNo = nil
		p.SelfDriven = false
		p.DriverName = nil
		p.DriverLicenseNo = nil
	}
	if p.SelfDriven {
		p.DriverName = nil
		p.DriverLicenseNo = nil
	}
}
