package domain

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// LoginRequest is what the login form collects.
type LoginRequest struct {
	Instance string
	Username string
	Password string
}

var errInstanceHost = errors.New("must be a host such as lemmy.ml, without a path")

// Validate checks the form before any network call is made.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Instance, validation.Required, validation.By(instanceHost)),
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// NormalizedInstance strips an optional scheme and trailing slash.
func (r LoginRequest) NormalizedInstance() string {
	s := strings.TrimSpace(r.Instance)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	return strings.ToLower(strings.TrimRight(s, "/"))
}

func instanceHost(value any) error {
	s, _ := value.(string)
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimRight(s, "/")
	if s == "" {
		return nil
	}
	if strings.ContainsAny(s, "/ ?#@") {
		return errInstanceHost
	}
	return nil
}
