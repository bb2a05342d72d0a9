package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrorResponse describes a single failed field, shaped for the
// errors[] array of API error bodies.
type ErrorResponse struct {
	FailedField string
	Tag         string
	Param       string
}

func (e *ErrorResponse) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("field '%s' failed on '%s=%s'", e.FailedField, e.Tag, e.Param)
	}
	return fmt.Sprintf("field '%s' failed on '%s'", e.FailedField, e.Tag)
}

var validate = validator.New()

// ValidateStruct runs tag validation and returns one entry per failed
// field, nil when the struct is valid.
func ValidateStruct(data interface{}) []*ErrorResponse {
	var errs []*ErrorResponse
	if err := validate.Struct(data); err != nil {
		for _, fe := range err.(validator.ValidationErrors) {
			errs = append(errs, &ErrorResponse{
				FailedField: fe.StructNamespace(),
				Tag:         fe.Tag(),
				Param:       fe.Param(),
			})
		}
	}
	return errs
}

// Messages flattens validation failures into human-readable strings.
func Messages(errs []*ErrorResponse) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}
