package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FieldErrors maps a form field to the message shown next to it.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	fields := make([]string, 0, len(f))
	for k := range f {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, k := range fields {
		parts = append(parts, k+": "+f[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// CardInput is the raw card form as typed by the customer.
type CardInput struct {
	CardholderName string `json:"cardholder_name"`
	CardNumber     string `json:"card_number"`
	Expiry         string `json:"expiry"`
	CVV            string `json:"cvv"`
}

// CardData is a validated card. It can only be built by ParseCard.
type CardData struct {
	holder      string
	number      string
	expiryMonth int
	expiryYear  int
	cvv         string
}

func (c CardData) Holder() string   { return c.holder }
func (c CardData) Number() string   { return c.number }
func (c CardData) ExpiryMonth() int { return c.expiryMonth }
func (c CardData) ExpiryYear() int  { return c.expiryYear }
func (c CardData) CVV() string      { return c.cvv }

// Last4 returns the last four digits of the card number.
func (c CardData) Last4() string {
	if len(c.number) < 4 {
		return c.number
	}
	return c.number[len(c.number)-4:]
}

// String never prints the full number or the CVV.
func (c CardData) String() string {
	return "card ****" + c.Last4()
}

// Input renders the card back into the form shape, e.g. for a backend call.
func (c CardData) Input() CardInput {
	return CardInput{
		CardholderName: c.holder,
		CardNumber:     c.number,
		Expiry:         fmt.Sprintf("%02d/%02d", c.expiryMonth, c.expiryYear%100),
		CVV:            c.cvv,
	}
}

// ParseCard validates a card form and returns the value object.
func ParseCard(in CardInput) (CardData, error) {
	errs := FieldErrors{}

	holder := strings.TrimSpace(in.CardholderName)
	if holder == "" {
		errs["cardholder_name"] = "Cardholder name is required"
	}

	number := strings.NewReplacer(" ", "", "-", "").Replace(in.CardNumber)
	switch {
	case number == "":
		errs["card_number"] = "Card number is required"
	case len(number) != 16 || !isDigits(number):
		errs["card_number"] = "Please enter a valid 16-digit card number"
	}

	month, year, ok := parseExpiry(strings.TrimSpace(in.Expiry))
	switch {
	case strings.TrimSpace(in.Expiry) == "":
		errs["expiry"] = "Expiry date is required"
	case !ok:
		errs["expiry"] = "Please enter a valid expiry date in MM/YY format"
	}

	cvv := strings.TrimSpace(in.CVV)
	switch {
	case cvv == "":
		errs["cvv"] = "CVV is required"
	case len(cvv) < 3 || len(cvv) > 4 || !isDigits(cvv):
		errs["cvv"] = "Please enter a valid CVV (3-4 digits)"
	}

	if len(errs) > 0 {
		return CardData{}, errs
	}
	return CardData{
		holder:      holder,
		number:      number,
		expiryMonth: month,
		expiryYear:  year,
		cvv:         cvv,
	}, nil
}

func parseExpiry(v string) (month, year int, ok bool) {
	mm, yy, found := strings.Cut(v, "/")
	if !found || len(mm) != 2 || len(yy) != 2 || !isDigits(mm) || !isDigits(yy) {
		return 0, 0, false
	}
	month, _ = strconv.Atoi(mm)
	year, _ = strconv.Atoi(yy)
	if month < 1 || month > 12 {
		return 0, 0, false
	}
	return month, 2000 + year, true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
