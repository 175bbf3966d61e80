package http

import (
	"net/mail"
	"net/url"
	"unicode"
)

func validEmail(email string) bool {
	if email == "" || len(email) > 100 {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// passwordPolicyError reports the first policy violation, or "" when the
// password is acceptable. A password needs at least 8 characters with an
// upper case letter, a lower case letter, a digit and a symbol.
func passwordPolicyError(password string) string {
	if len(password) < 8 {
		return "must be at least 8 characters"
	}
	if len(password) > 100 {
		return "must be at most 100 characters"
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	if !upper {
		return "must contain an upper case letter"
	}
	if !lower {
		return "must contain a lower case letter"
	}
	if !digit {
		return "must contain a digit"
	}
	if !symbol {
		return "must contain a symbol"
	}
	return ""
}

func validateRegister(req registerRequest) map[string]string {
	fields := map[string]string{}
	if len(req.Name) < 3 || len(req.Name) > 50 {
		fields["name"] = "must be between 3 and 50 characters"
	}
	if !validEmail(req.Email) {
		fields["email"] = "must be a valid email address"
	}
	if msg := passwordPolicyError(req.Password); msg != "" {
		fields["password"] = msg
	}
	return fields
}

func validateChangePassword(req changePasswordRequest) map[string]string {
	fields := map[string]string{}
	if req.CurrentPassword == "" {
		fields["currentPassword"] = "is required"
	}
	if msg := passwordPolicyError(req.NewPassword); msg != "" {
		fields["newPassword"] = msg
	}
	if req.ConfirmPassword != req.NewPassword {
		fields["confirmPassword"] = "must match the new password"
	}
	return fields
}

func validateApplication(req applicationRequest) map[string]string {
	fields := map[string]string{}
	if req.InstitutionName == "" || len(req.InstitutionName) > 100 {
		fields["institutionName"] = "must be between 1 and 100 characters"
	}
	if req.Description == "" || len(req.Description) > 500 {
		fields["description"] = "must be between 1 and 500 characters"
	}
	if !validEmail(req.ContactEmail) {
		fields["contactEmail"] = "must be a valid email address"
	}
	if req.Website != "" && !validWebsite(req.Website) {
		fields["website"] = "must be an http or https URL"
	}
	if req.ContactPhone != "" && !validPhone(req.ContactPhone) {
		fields["contactPhone"] = "must contain 6 to 20 digits"
	}
	if req.FoundingYear != "" && !validYear(req.FoundingYear) {
		fields["foundingYear"] = "must be a four digit year"
	}
	return fields
}

func validWebsite(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func validPhone(raw string) bool {
	if len(raw) < 6 || len(raw) > 20 {
		return false
	}
	for _, r := range raw {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func validYear(raw string) bool {
	if len(raw) != 4 {
		return false
	}
	for _, r := range raw {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
