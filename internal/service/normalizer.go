package service

import (
	"strings"
	"time"

	"github.com/movementpass/public-api/internal/api/dto"
	"github.com/movementpass/public-api/internal/clock"
	"github.com/movementpass/public-api/internal/domain"
)

// PassNormalizer turns a validated apply request into a canonical pass.
type PassNormalizer struct {
	clock clock.Clock
	ids   clock.IDSource
}

// NewPassNormalizer builds a normalizer.
func NewPassNormalizer(clk clock.Clock, ids clock.IDSource) *PassNormalizer {
	return &PassNormalizer{clock: clk, ids: ids}
}

// ToPass maps req onto a new pass owned by applicantID. The owner always
// comes from the authenticated identity, never from the payload.
func (n *PassNormalizer) ToPass(req dto.ApplyRequest, applicantID string) domain.Pass {
	startAt := req.DateTime.UTC().Truncate(time.Microsecond)

	pass := domain.Pass{
		ID:              n.ids.NewID(),
		ApplicantID:     applicantID,
		FromLocation:    strings.TrimSpace(req.FromLocation),
		ToLocation:      strings.TrimSpace(req.ToLocation),
		District:        req.District,
		Thana:           req.Thana,
		StartAt:         startAt,
		EndAt:           startAt.Add(time.Duration(req.DurationInHour) * time.Hour),
		Type:            req.Type,
		Reason:          strings.TrimSpace(req.Reason),
		IncludeVehicle:  req.IncludeVehicle,
		VehicleNo:       optional(req.VehicleNo),
		SelfDriven:      req.SelfDriven,
		DriverName:      optional(req.DriverName),
		DriverLicenseNo: optional(req.DriverLicenseNo),
		Status:          domain.PassStatusApplied,
		CreatedAt:       n.clock.Now().UTC().Truncate(time.Microsecond),
	}
	pass.ClearVehicleDetails()
	return pass
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
