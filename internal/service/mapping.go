package service

import (
	"time"

	"github.com/movementpass/public-api/internal/api/dto"
	"github.com/movementpass/public-api/internal/domain"
)

func toPassItem(p domain.Pass) dto.PassItem {
	return dto.PassItem{
		ID:              p.ID,
		FromLocation:    p.FromLocation,
		ToLocation:      p.ToLocation,
		District:        p.District,
		Thana:           p.Thana,
		StartAt:         p.StartAt,
		EndAt:           p.EndAt,
		Type:            p.Type,
		Reason:          p.Reason,
		IncludeVehicle:  p.IncludeVehicle,
		VehicleNo:       p.VehicleNo,
		SelfDriven:      p.SelfDriven,
		DriverName:      p.DriverName,
		DriverLicenseNo: p.DriverLicenseNo,
		Status:          string(p.Status),
		CreatedAt:       p.CreatedAt,
	}
}

func toApplicantItem(a *domain.Applicant) *dto.ApplicantItem {
	if a == nil {
		return nil
	}
	return &dto.ApplicantItem{
		ID:            a.ID,
		Name:          a.Name,
		District:      a.District,
		Thana:         a.Thana,
		DateOfBirth:   dto.Date{Time: a.DateOfBirth},
		Gender:        a.Gender,
		IDType:        a.IDType,
		IDNumber:      a.IDNumber,
		Photo:         a.Photo,
		CreatedAt:     a.CreatedAt,
		AppliedCount:  a.AppliedCount,
		ApprovedCount: a.ApprovedCount,
		RejectedCount: a.RejectedCount,
	}
}

// toApplicant keys the applicant by mobile phone; counters start at zero.
func toApplicant(req dto.RegisterRequest, createdAt time.Time) *domain.Applicant {
	dob := req.DateOfBirth.UTC()
	return &domain.Applicant{
		ID:          req.MobilePhone,
		Name:        req.Name,
		DateOfBirth: time.Date(dob.Year(), dob.Month(), dob.Day(), 0, 0, 0, 0, time.UTC),
		District:    req.District,
		Thana:       req.Thana,
		Gender:      req.Gender,
		IDType:      req.IDType,
		IDNumber:    req.IDNumber,
		Photo:       req.Photo,
		CreatedAt:   createdAt.UTC().Truncate(time.Microsecond),
	}
}
