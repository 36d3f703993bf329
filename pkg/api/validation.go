package api

import (
	"regexp"
	"strings"
)

const (
	reasonRequired = "required"
)

var (
	// reMobile accepts an optional leading + followed by 8 to 15 digits.
	reMobile = regexp.MustCompile(`^\+?[0-9]{8,15}$`)

	// reEmail is deliberately loose; deliverability is proven by the OTP
	// mail, not by the pattern.
	reEmail = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

	reOTPCode = regexp.MustCompile(`^[0-9]{6}$`)
)

func validateName(errs map[string]string, name string) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		errs["name"] = reasonRequired
	case len(name) > 100:
		errs["name"] = "too long (max 100)"
	}
}

func validateMobile(errs map[string]string, mobile string) {
	switch {
	case mobile == "":
		errs["mobile"] = reasonRequired
	case !reMobile.MatchString(mobile):
		errs["mobile"] = "must be 8-15 digits with an optional leading +"
	}
}

func validateEmail(errs map[string]string, email string, required bool) {
	switch {
	case email == "":
		if required {
			errs["email"] = reasonRequired
		}
	case len(email) > 254, !reEmail.MatchString(email):
		errs["email"] = "must be a valid email address"
	}
}

func validatePassword(errs map[string]string, password string, required bool) {
	switch {
	case password == "":
		if required {
			errs["password"] = reasonRequired
		}
	case len(password) < 8:
		errs["password"] = "too short (min 8)"
	case len(password) > 128:
		errs["password"] = "too long (max 128)"
	}
}

// Validate returns a map of field names to error messages, or nil if the
// request is well formed.
func (r SignupRequest) Validate() map[string]string {
	errs := make(map[string]string)
	validateName(errs, r.Name)
	validateMobile(errs, r.Mobile)
	validateEmail(errs, r.Email, false)
	validatePassword(errs, r.Password, true)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (r LoginRequest) Validate() map[string]string {
	errs := make(map[string]string)
	validateEmail(errs, r.Email, true)
	validatePassword(errs, r.Password, true)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (r VerifyOTPRequest) Validate() map[string]string {
	errs := make(map[string]string)
	validateMobile(errs, r.Mobile)
	if !reOTPCode.MatchString(r.Code) {
		errs["code"] = "must be a 6-digit code"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (r BootstrapRequest) Validate() map[string]string {
	errs := make(map[string]string)
	validateName(errs, r.Name)
	validateMobile(errs, r.Mobile)
	validateEmail(errs, r.Email, false)
	validatePassword(errs, r.Password, true)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (r CreateUserRequest) Validate() map[string]string {
	errs := make(map[string]string)
	validateName(errs, r.Name)
	validateMobile(errs, r.Mobile)
	validateEmail(errs, r.Email, false)
	validatePassword(errs, r.Password, false)
	if r.Role == "" {
		errs["role"] = reasonRequired
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (r UpdateUserRequest) Validate() map[string]string {
	errs := make(map[string]string)
	validateName(errs, r.Name)
	validateEmail(errs, r.Email, false)
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func (r UpdateRoleRequest) Validate() map[string]string {
	errs := make(map[string]string)
	if r.Role == "" {
		errs["role"] = reasonRequired
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
