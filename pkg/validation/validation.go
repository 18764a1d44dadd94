// Package validation configures gin's request binding and turns binding
// failures into messages clients can act on.
package validation

import (
	"errors"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Configure(v)
	}
}

// Configure registers the json field naming and the notblank rule on v.
func Configure(v *validator.Validate) {
	v.RegisterTagNameFunc(jsonFieldName)
	_ = v.RegisterValidation("notblank", validators.NotBlank)
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

// Message describes a ShouldBindJSON error. Missing fields are listed together;
// malformed JSON and type mismatches get a generic message.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request body"
	}
	var missing, invalid []string
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "notblank":
			missing = appendUnique(missing, fe.Field())
		default:
			invalid = appendUnique(invalid, fe.Field())
		}
	}
	sort.Strings(missing)
	sort.Strings(invalid)
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing required fields: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		parts = append(parts, "invalid fields: "+strings.Join(invalid, ", "))
	}
	return strings.Join(parts, "; ")
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

// ErrInvalidID is returned by ParseID for non-numeric or non-positive ids.
var ErrInvalidID = errors.New("invalid id")

// ParseID parses a path or query id. Ids are positive integers.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
