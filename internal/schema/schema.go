package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/iyhunko/product-catalog/internal/apperror"
	"github.com/iyhunko/product-catalog/internal/model"
)

const (
	// MinimalExpiration is how far in the future a supplied expiration date must be.
	MinimalExpiration = 30 * 24 * time.Hour
	// ExpirationTolerance absorbs the delay between the client computing a date and the check.
	ExpirationTolerance = 5 * time.Second
)

// Create is a validated create payload. Every required field is present.
type Create struct {
	Name           string
	Rating         float64
	Featured       *bool
	ReceiptDate    *time.Time
	ExpirationDate *time.Time
	BrandID        int64
	CategoryIDs    []int64
	ItemsInStock   int

	set []model.Field
}

// Fields lists the supplied fields in payload order.
func (c Create) Fields() []model.Field {
	return c.set
}

// Update is a validated partial payload. Only fields listed by Fields were supplied;
// a supplied null leaves the matching pointer nil.
type Update struct {
	Name           *string
	Rating         *float64
	Featured       *bool
	ReceiptDate    *time.Time
	ExpirationDate *time.Time
	BrandID        *int64
	CategoryIDs    []int64
	ItemsInStock   *int

	set []model.Field
}

// Fields lists the supplied fields in payload order.
func (u Update) Fields() []model.Field {
	return u.set
}

// Has reports whether the field was supplied.
func (u Update) Has(f model.Field) bool {
	for _, s := range u.set {
		if s == f {
			return true
		}
	}
	return false
}

// Validator checks product payloads. It performs no I/O.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock overrides the time source used by the expiration rule.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		v.now = now
	}
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{
		validate: validator.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateCreate validates a create payload. Failures are returned as *apperror.ValidationError
// holding every violated constraint.
func (v *Validator) ValidateCreate(body []byte) (Create, error) {
	u, err := v.run(body, false)
	if err != nil {
		return Create{}, err
	}

	return Create{
		Name:           *u.Name,
		Rating:         *u.Rating,
		Featured:       u.Featured,
		ReceiptDate:    u.ReceiptDate,
		ExpirationDate: u.ExpirationDate,
		BrandID:        *u.BrandID,
		CategoryIDs:    u.CategoryIDs,
		ItemsInStock:   *u.ItemsInStock,
		set:            u.set,
	}, nil
}

// ValidateUpdate validates a partial payload. Only supplied fields are checked.
func (v *Validator) ValidateUpdate(body []byte) (Update, error) {
	return v.run(body, true)
}

func (v *Validator) run(body []byte, partial bool) (Update, error) {
	payload, err := decodeBody(body)
	if err != nil {
		return Update{}, err
	}

	var out Update
	errs := &apperror.ValidationError{}
	for _, r := range rules {
		raw, ok := payload[string(r.field)]
		if !ok {
			if r.required && !partial {
				errs.Add("field required", "value_error.missing", string(r.field))
			}
			continue
		}

		if isNull(raw) {
			if !r.nullable {
				errs.Add("none is not an allowed value", "type_error.none.not_allowed", string(r.field))
				continue
			}
			out.set = append(out.set, r.field)
			continue
		}

		if r.parse(v, raw, &out, errs) {
			out.set = append(out.set, r.field)
		}
	}

	if !errs.Empty() {
		return Update{}, errs
	}
	return out, nil
}

func decodeBody(body []byte) (map[string]json.RawMessage, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, bodyError("value is not a valid dict", "type_error.dict")
		}
		return nil, bodyError("invalid JSON body", "value_error.jsondecode")
	}
	return payload, nil
}

func bodyError(msg, errType string) *apperror.ValidationError {
	errs := &apperror.ValidationError{}
	errs.Add(msg, errType, "body")
	return errs
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
