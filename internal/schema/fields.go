package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/mail"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/iyhunko/product-catalog/internal/apperror"
	"github.com/iyhunko/product-catalog/internal/model"
)

// rule is one row of the field-constraint table shared by create and update.
// parse reports whether the value was accepted and stores it into out.
type rule struct {
	field    model.Field
	required bool
	nullable bool
	parse    func(v *Validator, raw json.RawMessage, out *Update, errs *apperror.ValidationError) bool
}

// itemsInStockTag bounds the stock to the range of the 32-bit column storing it.
var itemsInStockTag = fmt.Sprintf("gt=0,lte=%d", math.MaxInt32)

var rules = []rule{
	{field: model.FieldName, required: true, parse: parseName},
	{field: model.FieldRating, required: true, parse: parseRating},
	{field: model.FieldFeatured, nullable: true, parse: parseFeatured},
	{field: model.FieldReceiptDate, nullable: true, parse: parseReceiptDate},
	{field: model.FieldExpirationDate, nullable: true, parse: parseExpirationDate},
	{field: model.FieldBrand, required: true, parse: parseBrand},
	{field: model.FieldCategories, required: true, parse: parseCategories},
	{field: model.FieldItemsInStock, required: true, parse: parseItemsInStock},
}

func parseName(v *Validator, raw json.RawMessage, out *Update, errs *apperror.ValidationError) bool {
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		errs.Add("str type expected", "type_error.str", string(model.FieldName))
		return false
	}
	if !v.check(errs, name, "max=50", string(model.FieldName)) {
		return false
	}
	out.Name = &name
	return true
}

func parseRating(v *Validator, raw json.RawMessage, out *Update, errs *apperror.ValidationError) bool {
	rating, ok := decodeFloat(raw)
	if !ok {
		errs.Add("value is not a valid float", "type_error.float", string(model.FieldRating))
		return false
	}
	if !v.check(errs, rating, "gte=0,lte=10", string(model.FieldRating)) {
		return false
	}
	out.Rating = &rating
	return true
}

func parseFeatured(_ *Validator, raw json.RawMessage, out *Update, errs *apperror.ValidationError) bool {
	featured, ok := decodeBool(raw)
	if !ok {
		errs.Add("value could not be parsed to a boolean", "type_error.bool", string(model.FieldFeatured))
		return false
	}
	out.Featured = &featured
	return true
}

func parseReceiptDate(_ *Validator, raw json.RawMessage, out *Update, errs *apperror.ValidationError) bool {
	date, ok := decodeDate(raw)
	if !ok {
		errs.Add("invalid datetime format", "value_error.datetime", string(model.FieldReceiptDate))
		return false
	}
	out.ReceiptDate = &date
	return true
}

func parseExpirationDate(v *Validator, raw json.RawMessage, out *Update, errs *apperror.ValidationError) bool {
	date, ok := decodeDate(raw)
	if !ok {
		errs.Add("invalid datetime format", "value_error.datetime", string(model.FieldExpirationDate))
		return false
	}
	if date.Sub(v.now()) < MinimalExpiration-ExpirationTolerance {
		errs.Add(
			fmt.Sprintf("can't set expiration in less than %d days", int(MinimalExpiration.Hours()/24)),
			"value_error",
			string(model.FieldExpirationDate),
		)
		return false
	}
	out.ExpirationDate = &date
	return true
}

func parseBrand(_ *Validator, raw json.RawMessage, out *Update, errs *apperror.ValidationError) bool {
	id, ok := decodeInt(raw)
	if !ok {
		errs.Add("value is not a valid integer", "type_error.integer", string(model.FieldBrand))
		return false
	}
	out.BrandID = &id
	return true
}

// parseCategories treats the list as a set: duplicates collapse before the size check.
func parseCategories(v *Validator, raw json.RawMessage, out *Update, errs *apperror.ValidationError) bool {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		errs.Add("value is not a valid set", "type_error.set", string(model.FieldCategories))
		return false
	}

	ids := make([]int64, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	valid := true
	for i, item := range items {
		id, ok := decodeInt(item)
		if !ok {
			errs.Add("value is not a valid integer", "type_error.integer", string(model.FieldCategories), strconv.Itoa(i))
			valid = false
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if !valid {
		return false
	}

	if !v.check(errs, ids, "min=1,max=5", string(model.FieldCategories)) {
		return false
	}
	out.CategoryIDs = ids
	return true
}

func parseItemsInStock(v *Validator, raw json.RawMessage, out *Update, errs *apperror.ValidationError) bool {
	n, ok := decodeInt(raw)
	if !ok {
		errs.Add("value is not a valid integer", "type_error.integer", string(model.FieldItemsInStock))
		return false
	}
	if !v.check(errs, n, itemsInStockTag, string(model.FieldItemsInStock)) {
		return false
	}
	items := int(n)
	out.ItemsInStock = &items
	return true
}

// check runs a validator tag against value and records the first failure at loc.
func (v *Validator) check(errs *apperror.ValidationError, value any, tag string, loc ...string) bool {
	err := v.validate.Var(value, tag)
	if err == nil {
		return true
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		errs.Add(err.Error(), "value_error", loc...)
		return false
	}

	msg, errType := describe(fieldErrs[0])
	errs.Add(msg, errType, loc...)
	return false
}

func describe(fe validator.FieldError) (string, string) {
	switch fe.Kind() {
	case reflect.String:
		if fe.Tag() == "max" {
			return fmt.Sprintf("ensure this value has at most %s characters", fe.Param()), "value_error.any_str.max_length"
		}
	case reflect.Slice:
		switch fe.Tag() {
		case "min":
			return fmt.Sprintf("ensure this value has at least %s items", fe.Param()), "value_error.set.min_items"
		case "max":
			return fmt.Sprintf("ensure this value has at most %s items", fe.Param()), "value_error.set.max_items"
		}
	default:
		switch fe.Tag() {
		case "gte":
			return fmt.Sprintf("ensure this value is greater than or equal to %s", fe.Param()), "value_error.number.not_ge"
		case "lte":
			return fmt.Sprintf("ensure this value is less than or equal to %s", fe.Param()), "value_error.number.not_le"
		case "gt":
			return fmt.Sprintf("ensure this value is greater than %s", fe.Param()), "value_error.number.not_gt"
		}
	}
	return fe.Error(), "value_error"
}

func decodeNumber(raw json.RawMessage) (json.Number, bool) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", false
	}
	return n, true
}

func decodeFloat(raw json.RawMessage) (float64, bool) {
	n, ok := decodeNumber(raw)
	if !ok {
		return 0, false
	}
	f, err := n.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// decodeInt accepts integral numbers, including forms like 3.0 and "3".
func decodeInt(raw json.RawMessage) (int64, bool) {
	n, ok := decodeNumber(raw)
	if !ok {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return i, true
	}
	f, err := n.Float64()
	// float64(math.MaxInt64) rounds up to 2^63, which no longer fits
	if err != nil || f != math.Trunc(f) || math.Abs(f) >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func decodeBool(raw json.RawMessage) (bool, bool) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "1", "on", "t", "true", "y", "yes":
			return true, true
		case "0", "off", "f", "false", "n", "no":
			return false, true
		}
		return false, false
	}

	if n, ok := decodeInt(raw); ok && (n == 0 || n == 1) {
		return n == 1, true
	}
	return false, false
}

// decodeDate tries RFC-1123 style strings first, then RFC-3339 strings and Unix timestamps.
func decodeDate(raw json.RawMessage) (time.Time, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if t, err := mail.ParseDate(s); err == nil {
			return t.UTC(), true
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t.UTC(), true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return fromUnix(f), true
		}
		return time.Time{}, false
	}

	f, ok := decodeFloat(raw)
	if !ok {
		return time.Time{}, false
	}
	return fromUnix(f), true
}

// fromUnix reads values beyond 2e10 as milliseconds.
func fromUnix(f float64) time.Time {
	if math.Abs(f) > 2e10 {
		f /= 1000
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}
