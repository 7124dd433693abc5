package models

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/abdullah0325/crud-neon/apperrors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// studentPayload tracks which fields the caller actually sent. A nil
// pointer is an absent (or null) field.
type studentPayload struct {
	Name          *string `json:"name" validate:"required"`
	StudentClass  *string `json:"student_class" validate:"required"`
	Section       *string `json:"section" validate:"required"`
	Gender        *string `json:"gender" validate:"required"`
	Contact       *string `json:"contact" validate:"required"`
	AdmissionDate *string `json:"admission_date" validate:"required,datetime=2006-01-02"`
	Status        *bool   `json:"status" validate:"required"`
}

// fields lists the payload's JSON keys with their decode targets, in
// declaration order.
func (p *studentPayload) fields() []struct {
	key    string
	target interface{}
} {
	return []struct {
		key    string
		target interface{}
	}{
		{"name", &p.Name},
		{"student_class", &p.StudentClass},
		{"section", &p.Section},
		{"gender", &p.Gender},
		{"contact", &p.Contact},
		{"admission_date", &p.AdmissionDate},
		{"status", &p.Status},
	}
}

// ParseStudentInput decodes and validates a create or update body. Every
// field is required and keys match exactly. On failure it returns
// *apperrors.ValidationError listing each offending field.
func ParseStudentInput(body []byte) (StudentInput, error) {
	verr := &apperrors.ValidationError{}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return StudentInput{}, verr.Add([]string{"body"}, "value is not a valid dict", "type_error.dict")
		}
		return StudentInput{}, verr.Add([]string{"body"}, "invalid JSON body", "value_error.jsondecode")
	}
	if raw == nil {
		return StudentInput{}, verr.Add([]string{"body"}, "value is not a valid dict", "type_error.dict")
	}

	// Each field is decoded on its own so every type mismatch is reported.
	var p studentPayload
	for _, f := range p.fields() {
		value, ok := raw[f.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(value, f.target); err != nil {
			var typeErr *json.UnmarshalTypeError
			kind := "value"
			if errors.As(err, &typeErr) {
				kind = typeName(typeErr.Type)
			}
			verr.Add([]string{"body", f.key}, kind+" type expected", "type_error."+kind)
		}
	}

	if err := validate.Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return StudentInput{}, err
		}
		for _, fe := range fieldErrs {
			if verr.Has(fe.Field()) {
				continue
			}
			switch fe.Tag() {
			case "required":
				verr.Add([]string{"body", fe.Field()}, "field required", "value_error.missing")
			case "datetime":
				verr.Add([]string{"body", fe.Field()}, "invalid date format", "value_error.date")
			default:
				verr.Add([]string{"body", fe.Field()}, "failed on "+fe.Tag(), "value_error")
			}
		}
	}

	if len(verr.Fields) > 0 {
		return StudentInput{}, verr
	}

	admitted, err := ParseDate(*p.AdmissionDate)
	if err != nil {
		return StudentInput{}, verr.Add([]string{"body", "admission_date"}, "invalid date format", "value_error.date")
	}

	return StudentInput{
		Name:          *p.Name,
		StudentClass:  *p.StudentClass,
		Section:       *p.Section,
		Gender:        *p.Gender,
		Contact:       *p.Contact,
		AdmissionDate: admitted,
		Status:        *p.Status,
	}, nil
}

func typeName(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil {
		return "value"
	}
	switch t.Kind() {
	case reflect.String:
		return "str"
	case reflect.Bool:
		return "bool"
	default:
		return t.Kind().String()
	}
}
