package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movementpass/public-api/internal/api/dto"
	"github.com/movementpass/public-api/internal/clock"
	"github.com/movementpass/public-api/internal/domain"
)

var now = time.Date(2021, 4, 20, 10, 0, 0, 0, time.UTC)

func applyRequest() dto.ApplyRequest {
	return dto.ApplyRequest{
		FromLocation:    "Mirpur",
		ToLocation:      "Motijheel",
		District:        1047,
		Thana:           10234,
		DateTime:        now.Add(2 * time.Hour),
		DurationInHour:  6,
		Type:            "R",
		Reason:          "Hospital visit",
		IncludeVehicle:  true,
		VehicleNo:       "Dhaka Metro 1-23-4567",
		DriverName:      "Rahim",
		DriverLicenseNo: "DL-998877",
	}
}

func newNormalizer() *PassNormalizer {
	return NewPassNormalizer(clock.Fixed{At: now}, &clock.Sequence{})
}

func TestToPassDerivesFields(t *testing.T) {
	req := applyRequest()
	req.DateTime = time.Date(2021, 4, 20, 18, 30, 0, 123456789, time.FixedZone("BDT", 6*3600))

	pass := newNormalizer().ToPass(req, "01712345678")

	assert.Len(t, pass.ID, 32)
	assert.Equal(t, "01712345678", pass.ApplicantID)
	assert.Equal(t, time.Date(2021, 4, 20, 12, 30, 0, 123456000, time.UTC), pass.StartAt)
	assert.Equal(t, pass.StartAt.Add(6*time.Hour), pass.EndAt)
	assert.Equal(t, now, pass.CreatedAt)
	assert.Equal(t, domain.PassStatusApplied, pass.Status)
	require.NotNil(t, pass.DriverName)
	assert.Equal(t, "Rahim", *pass.DriverName)
}

func TestToPassIgnoresPayloadOwner(t *testing.T) {
	req := applyRequest()
	req.Token = "01899999999"

	pass := newNormalizer().ToPass(req, "01712345678")

	assert.Equal(t, "01712345678", pass.ApplicantID)
}

func TestToPassWithoutVehicleClearsEverything(t *testing.T) {
	n := newNormalizer()
	for _, selfDriven := range []bool{true, false} {
		req := applyRequest()
		req.IncludeVehicle = false
		req.SelfDriven = selfDriven

		pass := n.ToPass(req, "01712345678")

		assert.Nil(t, pass.VehicleNo)
		assert.False(t, pass.SelfDriven)
		assert.Nil(t, pass.DriverName)
		assert.Nil(t, pass.DriverLicenseNo)
	}
}

func TestToPassSelfDrivenClearsDriver(t *testing.T) {
	req := applyRequest()
	req.SelfDriven = true

	pass := newNormalizer().ToPass(req, "01712345678")

	require.NotNil(t, pass.VehicleNo)
	assert.Equal(t, "Dhaka Metro 1-23-4567", *pass.VehicleNo)
	assert.True(t, pass.SelfDriven)
	assert.Nil(t, pass.DriverName)
	assert.Nil(t, pass.DriverLicenseNo)
}

func TestToPassBlankOptionalsBecomeNil(t *testing.T) {
	req := applyRequest()
	req.DriverName = "   "

	pass := newNormalizer().ToPass(req, "01712345678")

	assert.Nil(t, pass.DriverName)
}
