package visitors

import (
	"net/url"
	"strings"
)

// RegisterRequest is the body for POST /api/register. Accepts JSON or form encoding.
type RegisterRequest struct {
	FirstName    string `json:"firstname" form:"firstname" binding:"required"`
	LastName     string `json:"lastname" form:"lastname" binding:"required"`
	Email        string `json:"email" form:"email" binding:"required,email"`
	Phone        string `json:"contact" form:"contact" binding:"required"`
	Age          int    `json:"age" form:"age" binding:"required"`
	Organization string `json:"organization" form:"organization" binding:"required"`
	Industry     string `json:"industry" form:"industry" binding:"required"`
	ProfileURL   string `json:"profileUrl" form:"profileUrl"`
}

// Validate normalizes the request and returns itemized field errors.
// Registration is never attempted while any field error remains.
func (r *RegisterRequest) Validate() map[string]string {
	errs := make(map[string]string)

	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.Organization = strings.TrimSpace(r.Organization)
	r.Industry = strings.TrimSpace(r.Industry)
	r.ProfileURL = strings.TrimSpace(r.ProfileURL)

	if r.FirstName == "" {
		errs["firstname"] = "first name is required"
	}
	if r.LastName == "" {
		errs["lastname"] = "last name is required"
	}
	if msg := validatePhone(r.Phone); msg != "" {
		errs["contact"] = msg
	}
	if r.Age < 10 || r.Age > 120 {
		errs["age"] = "age must be between 10 and 120"
	}
	if r.ProfileURL != "" {
		u, err := url.Parse(r.ProfileURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs["profileUrl"] = "profile URL must be a valid http(s) link"
		}
	}
	return errs
}

// validatePhone enforces a 10-digit Indian mobile number and rejects weak
// patterns: all-same-digit, full ascending/descending runs, and numbers
// starting with 0 or 1.
func validatePhone(phone string) string {
	if len(phone) != 10 {
		return "contact number must be exactly 10 digits"
	}
	for _, c := range phone {
		if c < '0' || c > '9' {
			return "contact number must contain only digits"
		}
	}
	if phone[0] == '0' || phone[0] == '1' {
		return "contact number cannot start with 0 or 1"
	}
	allSame, ascending, descending := true, true, true
	for i := 1; i < len(phone); i++ {
		if phone[i] != phone[0] {
			allSame = false
		}
		if phone[i] != phone[i-1]+1 {
			ascending = false
		}
		if phone[i] != phone[i-1]-1 {
			descending = false
		}
	}
	if allSame || ascending || descending {
		return "please enter a valid, non-repetitive contact number"
	}
	return ""
}
