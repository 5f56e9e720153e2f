package delivery

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/aims/storefront/domain"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks the shipping form. It returns nil or a domain.FieldErrors.
func Validate(info domain.DeliveryInfo) error {
	errs := domain.FieldErrors{}

	name := strings.TrimSpace(info.FullName)
	switch {
	case name == "":
		errs["full_name"] = "Full name is required"
	case utf8.RuneCountInString(name) < 2:
		errs["full_name"] = "Full name must be at least 2 characters"
	}

	phone := strings.ReplaceAll(strings.TrimSpace(info.PhoneNumber), " ", "")
	switch {
	case phone == "":
		errs["phone_number"] = "Phone number is required"
	case len(phone) < 10 || len(phone) > 11 || !allDigits(phone):
		errs["phone_number"] = "Phone number must be 10-11 digits"
	}

	email := strings.TrimSpace(info.Email)
	switch {
	case email == "":
		errs["email"] = "Email is required"
	case !emailPattern.MatchString(email):
		errs["email"] = "Please enter a valid email address"
	}

	address := strings.TrimSpace(info.Address)
	switch {
	case address == "":
		errs["address"] = "Address is required"
	case utf8.RuneCountInString(address) < 10:
		errs["address"] = "Please enter a complete address"
	}

	if strings.TrimSpace(info.Province) == "" {
		errs["province"] = "Province is required"
	}
	if strings.TrimSpace(info.DeliveryMethod) == "" {
		errs["delivery_method"] = "Delivery method is required"
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
