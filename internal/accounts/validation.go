package accounts

import (
	"regexp"
	"strings"

	pkgerrors "github.com/ANANDHURAI/Amart-Marketplace/pkg/errors"
)

var (
	nameRe     = regexp.MustCompile(`^[A-Za-z]+(?:[\s-][A-Za-z]+)*$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	digitRe    = regexp.MustCompile(`\d`)
	mobileRe   = regexp.MustCompile(`^[6-9]\d{9}$`)
	pincodeRe  = regexp.MustCompile(`^[1-9]\d{5}$`)
	districtRe = regexp.MustCompile(`^[A-Za-z ]+$`)
)

var indianStates = map[string]struct{}{
	"Andhra Pradesh": {}, "Arunachal Pradesh": {}, "Assam": {}, "Bihar": {},
	"Chhattisgarh": {}, "Goa": {}, "Gujarat": {}, "Haryana": {},
	"Himachal Pradesh": {}, "Jharkhand": {}, "Karnataka": {}, "Kerala": {},
	"Madhya Pradesh": {}, "Maharashtra": {}, "Manipur": {}, "Meghalaya": {},
	"Mizoram": {}, "Nagaland": {}, "Odisha": {}, "Punjab": {},
	"Rajasthan": {}, "Sikkim": {}, "Tamil Nadu": {}, "Telangana": {},
	"Tripura": {}, "Uttar Pradesh": {}, "Uttarakhand": {}, "West Bengal": {},
}

func validateRegistration(req RegisterRequest) error {
	if req.FirstName == "" || req.LastName == "" || req.Email == "" ||
		req.Password == "" || req.ConfirmPassword == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "all fields are required")
	}
	if !nameRe.MatchString(req.FirstName) {
		return pkgerrors.New(pkgerrors.CodeValidation, "first name should contain only letters")
	}
	if !nameRe.MatchString(req.LastName) {
		return pkgerrors.New(pkgerrors.CodeValidation, "last name should contain only letters")
	}
	if !emailRe.MatchString(req.Email) {
		return pkgerrors.New(pkgerrors.CodeValidation, "enter a valid email address")
	}
	if req.Password != req.ConfirmPassword {
		return pkgerrors.New(pkgerrors.CodeValidation, "passwords do not match")
	}
	if len(req.Password) < 8 || !digitRe.MatchString(req.Password) {
		return pkgerrors.New(pkgerrors.CodeValidation,
			"password must be at least 8 characters and contain a number")
	}
	return nil
}

func validateAddress(req AddressRequest) error {
	if !nameRe.MatchString(strings.TrimSpace(req.Name)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid full name")
	}
	if !mobileRe.MatchString(strings.TrimSpace(req.Mobile)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid mobile number")
	}
	if !pincodeRe.MatchString(strings.TrimSpace(req.Pincode)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid pincode")
	}
	if len(strings.TrimSpace(req.House)) < 3 {
		return pkgerrors.New(pkgerrors.CodeValidation, "building name is too short")
	}
	if len(strings.TrimSpace(req.Street)) < 3 {
		return pkgerrors.New(pkgerrors.CodeValidation, "street name is too short")
	}
	if !districtRe.MatchString(strings.TrimSpace(req.District)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid district name")
	}
	if _, ok := indianStates[strings.TrimSpace(req.State)]; !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid state selected")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
