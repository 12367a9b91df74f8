package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movementpass/public-api/internal/api/dto"
	"github.com/movementpass/public-api/internal/auth"
	"github.com/movementpass/public-api/internal/clock"
	"github.com/movementpass/public-api/internal/pagination"
	"github.com/movementpass/public-api/internal/repository"
	"github.com/movementpass/public-api/internal/validation"
	apperrors "github.com/movementpass/public-api/pkg/util"
)

type fixture struct {
	store    *repository.InMemory
	tokens   *auth.TokenManager
	register *RegisterHandler
	login    *LoginHandler
	apply    *ApplyHandler
	view     *ViewPassHandler
	list     *ViewPassesHandler
}

func newFixture() *fixture {
	clk := clock.Fixed{At: now}
	v := validation.New(clk)
	store := repository.NewInMemory()
	tokens := auth.NewTokenManager(auth.TokenOptions{Secret: "s3cr3t", Issuer: "movement-pass", Audience: "public", TTL: time.Hour}, clk)
	return &fixture{
		store:    store,
		tokens:   tokens,
		register: NewRegisterHandler(v, store, tokens, clk),
		login:    NewLoginHandler(v, store, tokens),
		apply:    NewApplyHandler(v, NewPassNormalizer(clk, &clock.Sequence{}), store),
		view:     NewViewPassHandler(store, store),
		list:     NewViewPassesHandler(store, 2),
	}
}

func registerRequest(mobile string) dto.RegisterRequest {
	return dto.RegisterRequest{
		Name:        "Karim",
		MobilePhone: mobile,
		District:    1047,
		Thana:       10234,
		DateOfBirth: dto.Date{Time: time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)},
		Gender:      "M",
		IDType:      "NID",
		IDNumber:    "1234567890",
		Photo:       "https://photos.example.com/karim.png",
	}
}

func (f *fixture) mustRegister(t *testing.T, mobile string) {
	t.Helper()
	res, err := f.register.Handle(context.Background(), registerRequest(mobile))
	require.NoError(t, err)
	require.NotNil(t, res)
}

func requireStatus(t *testing.T, err error, status int) *apperrors.DomainError {
	t.Helper()
	var de *apperrors.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %v", err)
	assert.Equal(t, status, de.HTTPStatus)
	return de
}

func TestRegisterIssuesToken(t *testing.T) {
	f := newFixture()

	res, err := f.register.Handle(context.Background(), registerRequest("01712345678"))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "Bearer", res.Type)

	id, err := f.tokens.Authenticate(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "01712345678", id)
}

func TestRegisterTwiceReturnsNil(t *testing.T) {
	f := newFixture()
	f.mustRegister(t, "01712345678")

	again := registerRequest("01712345678")
	again.Name = "Someone Else"
	res, err := f.register.Handle(context.Background(), again)
	require.NoError(t, err)
	assert.Nil(t, res)

	stored, err := f.store.FindByID(context.Background(), "01712345678")
	require.NoError(t, err)
	assert.Equal(t, "Karim", stored.Name)
}

func TestRegisterRejectsInvalidPayload(t *testing.T) {
	f := newFixture()
	req := registerRequest("0123")
	req.DateOfBirth = dto.Date{Time: now.AddDate(-10, 0, 0)}

	_, err := f.register.Handle(context.Background(), req)
	de := requireStatus(t, err, http.StatusBadRequest)
	assert.Contains(t, de.Details, "mobilePhone")
	assert.Contains(t, de.Details, "dateOfBirth")
}

func TestLogin(t *testing.T) {
	f := newFixture()
	f.mustRegister(t, "01712345678")
	ctx := context.Background()

	res, err := f.login.Handle(ctx, dto.LoginRequest{MobilePhone: "01712345678", DateOfBirth: "17051990"})
	require.NoError(t, err)
	require.NotNil(t, res)

	res, err = f.login.Handle(ctx, dto.LoginRequest{MobilePhone: "01712345678", DateOfBirth: "18051990"})
	require.NoError(t, err)
	assert.Nil(t, res)

	res, err = f.login.Handle(ctx, dto.LoginRequest{MobilePhone: "01812345678", DateOfBirth: "17051990"})
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestApplyStoresPassAndCountsIt(t *testing.T) {
	f := newFixture()
	f.mustRegister(t, "01712345678")
	ctx := context.Background()

	res, err := f.apply.Handle(ctx, "01712345678", applyRequest())
	require.NoError(t, err)
	assert.Len(t, res.ID, 32)

	applicant, err := f.store.FindByID(ctx, "01712345678")
	require.NoError(t, err)
	assert.Equal(t, 1, applicant.AppliedCount)

	detail, err := f.view.Handle(ctx, "01712345678", res.ID)
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Equal(t, "APPLIED", detail.Status)
	require.NotNil(t, detail.Applicant)
	assert.Equal(t, 1, detail.Applicant.AppliedCount)
}

func TestApplyRejectsInvalidPayload(t *testing.T) {
	f := newFixture()
	f.mustRegister(t, "01712345678")
	req := applyRequest()
	req.DriverName = ""

	_, err := f.apply.Handle(context.Background(), "01712345678", req)
	de := requireStatus(t, err, http.StatusBadRequest)
	assert.Contains(t, de.Details, "driverName")
}

func TestApplyForUnknownApplicant(t *testing.T) {
	f := newFixture()

	_, err := f.apply.Handle(context.Background(), "01712345678", applyRequest())
	requireStatus(t, err, http.StatusUnauthorized)
}

func TestViewPassHidesOtherOwners(t *testing.T) {
	f := newFixture()
	f.mustRegister(t, "01712345678")
	f.mustRegister(t, "01812345678")
	ctx := context.Background()

	res, err := f.apply.Handle(ctx, "01712345678", applyRequest())
	require.NoError(t, err)

	foreign, err := f.view.Handle(ctx, "01812345678", res.ID)
	require.NoError(t, err)
	assert.Nil(t, foreign)

	missing, err := f.view.Handle(ctx, "01812345678", "00000000000000000000000000000999")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestViewPassesPages(t *testing.T) {
	f := newFixture()
	f.mustRegister(t, "01712345678")
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		req := applyRequest()
		req.DurationInHour = i
		_, err := f.apply.Handle(ctx, "01712345678", req)
		require.NoError(t, err)
	}

	first, err := f.list.Handle(ctx, "01712345678", nil)
	require.NoError(t, err)
	require.Len(t, first.Passes, 2)
	require.NotNil(t, first.NextKey)
	assert.True(t, first.Passes[0].EndAt.After(first.Passes[1].EndAt))

	second, err := f.list.Handle(ctx, "01712345678", first.NextKey)
	require.NoError(t, err)
	require.Len(t, second.Passes, 1)
	assert.Nil(t, second.NextKey)

	empty, err := f.list.Handle(ctx, "01812345678", nil)
	require.NoError(t, err)
	assert.NotNil(t, empty.Passes)
	assert.Empty(t, empty.Passes)
}

func TestViewPassesHonoursCancellation(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.list.Handle(ctx, "01712345678", &pagination.Cursor{})
	require.ErrorIs(t, err, context.Canceled)
}
