// Package validation builds the shared request validator.
package validation

import (
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	loginPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]*$`)
	likeStatuses = map[string]struct{}{"None": {}, "Like": {}, "Dislike": {}}
)

// New returns a validator reporting JSON field names and knowing the
// blog platform specific tags: login, blogurl and likestatus.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("login", func(fl validator.FieldLevel) bool {
		return loginPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("blogurl", func(fl validator.FieldLevel) bool {
		return isHTTPSURL(fl.Field().String())
	})
	_ = v.RegisterValidation("likestatus", func(fl validator.FieldLevel) bool {
		_, ok := likeStatuses[fl.Field().String()]
		return ok
	})
	return v
}

func isHTTPSURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return false
	}
	return strings.Contains(u.Host, ".")
}
