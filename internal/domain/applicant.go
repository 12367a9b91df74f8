package domain

import "time"

// Applicant is the registered identity that owns passes. ID is the verified
// mobile phone number.
type Applicant struct {
	ID            string
	Name          string
	DateOfBirth   time.Time
	District      int
	Thana         int
	Gender        string
	IDType        string
	IDNumber      string
	Photo         string
	CreatedAt     time.Time
	AppliedCount  int
	ApprovedCount int
	RejectedCount int
}

// BirthDateCredential formats the birth date the way login requests carry it.
func (a *Applicant) BirthDateCredential() string {
	return a.DateOfBirth.Format("02012006")
}
