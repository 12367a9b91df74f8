package ingest

import (
	"context"

	"github.com/movementpass/public-api/internal/api/dto"
	"github.com/movementpass/public-api/internal/auth"
	"github.com/movementpass/public-api/internal/domain"
	"github.com/movementpass/public-api/internal/service"
	"github.com/movementpass/public-api/internal/validation"
)

// Reducer stage names, as reported to the drop recorder.
const (
	StageValidate     = "validate"
	StageAuthenticate = "authenticate"
)

// DropRecorder is told about every record a stage discards.
type DropRecorder interface {
	RecordDropped(stage string)
}

// Reducer runs decode, validate, authenticate and normalize over a batch.
// Validation runs before authentication.
type Reducer struct {
	codec      RecordCodec
	validator  *validation.Validator
	tokens     auth.Authenticator
	normalizer *service.PassNormalizer
	drops      DropRecorder
}

// NewReducer builds a reducer. drops may be nil.
func NewReducer(v *validation.Validator, tokens auth.Authenticator, n *service.PassNormalizer, drops DropRecorder) *Reducer {
	return &Reducer{validator: v, tokens: tokens, normalizer: n, drops: drops}
}

type candidate struct {
	req         dto.ApplyRequest
	applicantID string
}

// Reduce returns the canonical passes for records, in input order. A record
// that fails to decode fails the whole call with no output. Records that
// fail validation or authentication are dropped without being reported.
func (r *Reducer) Reduce(ctx context.Context, records []RawRecord) ([]domain.Pass, error) {
	decoded, err := r.decode(ctx, records)
	if err != nil {
		return nil, err
	}
	valid, err := r.validate(ctx, decoded)
	if err != nil {
		return nil, err
	}
	authed, err := r.authenticate(ctx, valid)
	if err != nil {
		return nil, err
	}
	return r.normalize(ctx, authed)
}

func (r *Reducer) decode(ctx context.Context, records []RawRecord) ([]candidate, error) {
	out := make([]candidate, 0, len(records))
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		req, err := r.codec.Decode(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, candidate{req: req})
	}
	return out, nil
}

func (r *Reducer) validate(ctx context.Context, in []candidate) ([]candidate, error) {
	out := in[:0]
	for _, c := range in {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := r.validator.Struct(c.req); err != nil {
			r.dropped(StageValidate)
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *Reducer) authenticate(ctx context.Context, in []candidate) ([]candidate, error) {
	out := in[:0]
	for _, c := range in {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, err := r.tokens.Authenticate(c.req.Token)
		if err != nil {
			r.dropped(StageAuthenticate)
			continue
		}
		c.applicantID = id
		out = append(out, c)
	}
	return out, nil
}

func (r *Reducer) normalize(ctx context.Context, in []candidate) ([]domain.Pass, error) {
	out := make([]domain.Pass, 0, len(in))
	for _, c := range in {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, r.normalizer.ToPass(c.req, c.applicantID))
	}
	return out, nil
}

func (r *Reducer) dropped(stage string) {
	if r.drops != nil {
		r.drops.RecordDropped(stage)
	}
}
