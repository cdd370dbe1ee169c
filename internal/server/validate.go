package server

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// ValidationErrorResponse is returned when a request body fails validation.
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	en_translations.RegisterDefaultTranslations(v, trans)

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v, trans: trans}
}

// decode reads a JSON body into req and validates it. On failure it writes
// the error response and returns false.
func (v *Validator) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := readJSON(r, req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}

	err := v.validate.Struct(req)
	if err == nil {
		return true
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}

	fields := make(map[string]string, len(errs))
	for _, e := range errs {
		fields[e.Field()] = e.Translate(v.trans)
	}
	writeJSON(w, http.StatusBadRequest, ValidationErrorResponse{
		Error:  "validation failed",
		Fields: fields,
	})
	return false
}
