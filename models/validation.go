package models

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Column limits shared by the gorm tags and the validators.
const (
	CategoryNameMax        = 235
	SlugMax                = 255
	ProductNameMax         = 235
	PIDMax                 = 10
	SKUMax                 = 10
	NameMax                = 100
	AlternativeTextMax     = 100
	AttributeValueMax      = 100
	PriceMaxDigits         = 5
	PriceDecimalPlaces     = 2
	msgDuplicateOrder      = "Duplicate value."
	msgDuplicateAttribute  = "Duplicate attribute exists."
	msgRequired            = "This field cannot be blank."
	msgNegative            = "Ensure this value is greater than or equal to 0."
	msgMaxLengthFormat     = "Ensure this value has at most %d characters (it has %d)."
	msgMaxDigitsFormat     = "Ensure that there are no more than %d digits in total."
	msgDecimalPlacesFormat = "Ensure that there are no more than %d decimal places."
	msgWholeDigitsFormat   = "Ensure that there are no more than %d digits before the decimal point."
	msgDoesNotExistFormat  = "%s instance with id %d does not exist."
)

// validator accumulates field errors for one validation pass.
type validator struct {
	errs []FieldError
}

func (v *validator) add(field, msg string) {
	v.errs = append(v.errs, FieldError{Field: field, Message: msg})
}

func (v *validator) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(field, msgRequired)
	}
}

func (v *validator) maxLength(field, value string, max int) {
	if n := utf8.RuneCountInString(value); n > max {
		v.add(field, fmt.Sprintf(msgMaxLengthFormat, max, n))
	}
}

func (v *validator) nonNegative(field string, value int) {
	if value < 0 {
		v.add(field, msgNegative)
	}
}

// decimal checks digits and decimal places the way a numeric(maxDigits, places)
// column would, without normalizing trailing zeros.
func (v *validator) decimal(field string, d decimal.Decimal, maxDigits, places int) {
	coef := d.Coefficient()
	coef.Abs(coef)
	exp := int(d.Exponent())

	n := len(coef.String())
	var digits, decimals int
	if exp >= 0 {
		digits = n
		if coef.Sign() != 0 {
			digits += exp
		}
	} else if -exp > n {
		digits, decimals = -exp, -exp
	} else {
		digits, decimals = n, -exp
	}
	whole := digits - decimals

	switch {
	case digits > maxDigits:
		v.add(field, fmt.Sprintf(msgMaxDigitsFormat, maxDigits))
	case decimals > places:
		v.add(field, fmt.Sprintf(msgDecimalPlacesFormat, places))
	case whole > maxDigits-places:
		v.add(field, fmt.Sprintf(msgWholeDigitsFormat, maxDigits-places))
	}
}

// MissingFields reports each field as required.
func MissingFields(fields ...string) error {
	var v validator
	for _, f := range fields {
		v.add(f, msgRequired)
	}
	return v.err()
}

func (v *validator) err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errs}
}
