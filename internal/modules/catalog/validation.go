package catalog

import (
	"bytes"
	"encoding/json"
	"math/big"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	maxNameLength = 200
	priceDigits   = 10
	pricePlaces   = 2
)

// Field error messages.
const (
	msgRequired       = "This field is required."
	msgNull           = "This field may not be null."
	msgBlank          = "This field may not be blank."
	msgNotString      = "Not a valid string."
	msgNameTooLong    = "Ensure this field has no more than 200 characters."
	msgInvalidNumber  = "A valid number is required."
	msgPriceTooLow    = "Must be above $0.00"
	msgTooManyDigits  = "Ensure that there are no more than 10 digits in total."
	msgTooManyPlaces  = "Ensure that there are no more than 2 decimal places."
	msgTooManyWhole   = "Ensure that there are no more than 8 digits before the decimal point."
	msgInvalidInteger = "Enter a whole number."
	msgBadDatetime    = "Datetime has wrong format. Use one of these formats instead: YYYY-MM-DDThh:mm[:ss[.uuuuuu]][+HH:MM|-HH:MM|Z]."
)

// ProductInput is a decoded request payload keyed by field name. Only keys
// the client sent are present; unknown keys and "id" are ignored.
type ProductInput map[string]json.RawMessage

// productChanges holds the validated fields of a ProductInput.
type productChanges struct {
	name      *string
	desc      *string
	price     *decimal.Decimal
	saleStart **time.Time
	saleEnd   **time.Time
}

func (c productChanges) applyTo(p *Product) {
	if c.name != nil {
		p.ProductName = *c.name
	}
	if c.desc != nil {
		p.Description = *c.desc
	}
	if c.price != nil {
		p.Price = *c.price
	}
	if c.saleStart != nil {
		p.SaleStart = *c.saleStart
	}
	if c.saleEnd != nil {
		p.SaleEnd = *c.saleEnd
	}
}

// checkCreatePrice runs before any other validation on create: a supplied
// price must be a number above zero.
func checkCreatePrice(in ProductInput) error {
	raw, ok := in["price"]
	if !ok || isNull(raw) {
		return nil
	}
	d, ok := parseNumber(raw)
	if !ok {
		return fieldError("price", msgInvalidNumber)
	}
	if !d.IsPositive() {
		return fieldError("price", msgPriceTooLow)
	}
	return nil
}

// validate checks every known field. With partial set, required fields may
// be omitted.
func (in ProductInput) validate(partial bool) (productChanges, error) {
	var c productChanges
	errs := map[string]string{}

	if raw, ok := in["product_name"]; ok {
		switch s, msg := parseString(raw, false); {
		case msg != "":
			errs["product_name"] = msg
		case utf8.RuneCountInString(s) > maxNameLength:
			errs["product_name"] = msgNameTooLong
		default:
			c.name = &s
		}
	} else if !partial {
		errs["product_name"] = msgRequired
	}

	if raw, ok := in["description"]; ok {
		if isNull(raw) {
			empty := ""
			c.desc = &empty
		} else if s, msg := parseString(raw, true); msg != "" {
			errs["description"] = msg
		} else {
			c.desc = &s
		}
	}

	if raw, ok := in["price"]; ok {
		if isNull(raw) {
			errs["price"] = msgNull
		} else if d, ok := parseNumber(raw); !ok {
			errs["price"] = msgInvalidNumber
		} else if msg := checkPrecision(d); msg != "" {
			errs["price"] = msg
		} else {
			d = d.Round(pricePlaces)
			c.price = &d
		}
	} else if !partial {
		errs["price"] = msgRequired
	}

	for field, dst := range map[string]***time.Time{"sale_start": &c.saleStart, "sale_end": &c.saleEnd} {
		raw, ok := in[field]
		if !ok {
			continue
		}
		t, msg := parseTime(raw)
		if msg != "" {
			errs[field] = msg
			continue
		}
		*dst = &t
	}

	if len(errs) > 0 {
		return productChanges{}, &ValidationError{Fields: errs}
	}
	return c, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func parseString(raw json.RawMessage, allowBlank bool) (string, string) {
	if isNull(raw) {
		return "", msgNull
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", msgNotString
	}
	if !allowBlank && strings.TrimSpace(s) == "" {
		return "", msgBlank
	}
	return s, ""
}

// parseNumber accepts a JSON number or a string holding one.
func parseNumber(raw json.RawMessage) (decimal.Decimal, bool) {
	raw = bytes.TrimSpace(raw)
	text := string(raw)
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return decimal.Decimal{}, false
		}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// checkPrecision enforces NUMERIC(10, 2) on the literal as written, so
// "1.230" is rejected for having three decimal places.
func checkPrecision(d decimal.Decimal) string {
	exp := int(d.Exponent())
	digits := len(new(big.Int).Abs(d.Coefficient()).String())

	var total, places int
	switch {
	case exp >= 0:
		total = digits + exp
	case -exp > digits:
		total, places = -exp, -exp
	default:
		total, places = digits, -exp
	}

	switch {
	case total > priceDigits:
		return msgTooManyDigits
	case places > pricePlaces:
		return msgTooManyPlaces
	case total-places > priceDigits-pricePlaces:
		return msgTooManyWhole
	}
	return ""
}

// parseTime returns a nil time for JSON null or an empty string.
func parseTime(raw json.RawMessage) (*time.Time, string) {
	if isNull(raw) {
		return nil, ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, msgBadDatetime
	}
	if strings.TrimSpace(s) == "" {
		return nil, ""
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04Z07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, ""
		}
	}
	return nil, msgBadDatetime
}
