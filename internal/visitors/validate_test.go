package visitors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validRequest() RegisterRequest {
	return RegisterRequest{
		FirstName:    "Asha",
		LastName:     "Rao",
		Email:        "Asha.Rao@Example.com",
		Phone:        "9845012367",
		Age:          24,
		Organization: "Orion Institute",
		Industry:     "Education",
		ProfileURL:   "https://linkedin.com/in/asharao",
	}
}

func TestValidateAcceptsAndNormalizes(t *testing.T) {
	req := validRequest()
	req.FirstName = "  Asha "
	req.Email = " Asha.Rao@Example.com "

	errs := req.Validate()
	assert.Empty(t, errs)
	assert.Equal(t, "Asha", req.FirstName)
	assert.Equal(t, "asha.rao@example.com", req.Email)
}

func TestValidateRequiredNames(t *testing.T) {
	req := validRequest()
	req.FirstName = "   "
	req.LastName = ""

	errs := req.Validate()
	assert.Contains(t, errs, "firstname")
	assert.Contains(t, errs, "lastname")
}

func TestValidatePhonePatterns(t *testing.T) {
	cases := []struct {
		phone string
		ok    bool
	}{
		{"9845012367", true},
		{"2345678901", true}, // wraps past 9, not a full ascending run
		{"987654321", false}, // too short
		{"98450123678", false},
		{"98450a2367", false},
		{"0845012367", false}, // leading 0
		{"1845012367", false}, // leading 1
		{"9999999999", false}, // all same
		{"2345678910", true},
		{"3456789012", true},
		{"9876543210", false}, // descending run
	}
	for _, tc := range cases {
		req := validRequest()
		req.Phone = tc.phone
		errs := req.Validate()
		if tc.ok {
			assert.NotContains(t, errs, "contact", "phone %s should pass", tc.phone)
		} else {
			assert.Contains(t, errs, "contact", "phone %s should fail", tc.phone)
		}
	}
}

func TestValidateAgeBounds(t *testing.T) {
	for age, ok := range map[int]bool{9: false, 10: true, 24: true, 120: true, 121: false, -3: false} {
		req := validRequest()
		req.Age = age
		errs := req.Validate()
		if ok {
			assert.NotContains(t, errs, "age", "age %d should pass", age)
		} else {
			assert.Contains(t, errs, "age", "age %d should fail", age)
		}
	}
}

func TestValidateProfileURL(t *testing.T) {
	cases := []struct {
		url string
		ok  bool
	}{
		{"", true}, // optional
		{"https://linkedin.com/in/asharao", true},
		{"http://example.com", true},
		{"notaurl", false},
		{"ftp://example.com/x", false},
		{"https://", false},
	}
	for _, tc := range cases {
		req := validRequest()
		req.ProfileURL = tc.url
		errs := req.Validate()
		if tc.ok {
			assert.NotContains(t, errs, "profileUrl", "url %q should pass", tc.url)
		} else {
			assert.Contains(t, errs, "profileUrl", "url %q should fail", tc.url)
		}
	}
}
