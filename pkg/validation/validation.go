// Package validation configures go-playground/validator for request payloads:
// JSON field names in errors, English messages and domain tags.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/noah-isme/bus-fleet-api/internal/ledger"
	appErrors "github.com/noah-isme/bus-fleet-api/pkg/errors"
)

const academicYearTag = "academic_year"

var (
	once       sync.Once
	shared     *validator.Validate
	translator ut.Translator
)

// New returns the shared validator with every domain rule registered.
// Translations are bound to the translator they were registered with, so
// every caller gets the same instance.
func New() *validator.Validate {
	once.Do(func() {
		v, trans, err := build()
		if err != nil {
			panic(fmt.Sprintf("validation: %v", err))
		}
		shared, translator = v, trans
	})
	return shared
}

func build() (*validator.Validate, ut.Translator, error) {
	trans, _ := ut.New(en.New()).GetTranslator("en")
	v := validator.New()

	if err := enTranslations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, nil, fmt.Errorf("register default translations: %w", err)
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation(academicYearTag, func(fl validator.FieldLevel) bool {
		return ledger.ValidAcademicYear(fl.Field().String())
	}); err != nil {
		return nil, nil, fmt.Errorf("register %s: %w", academicYearTag, err)
	}
	if err := registerMessage(v, trans, academicYearTag, "{0} must use the YYYY-YY format"); err != nil {
		return nil, nil, err
	}
	return v, trans, nil
}

func registerMessage(v *validator.Validate, trans ut.Translator, tag, text string) error {
	err := v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field())
			return msg
		},
	)
	if err != nil {
		return fmt.Errorf("register %s message: %w", tag, err)
	}
	return nil
}

// Details flattens validator errors into field -> message.
func Details(err error) map[string]string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}
	New()
	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[fe.Field()] = fe.Translate(translator)
	}
	return out
}

// AsAppError converts a validation failure into the API's VALIDATION_ERROR.
func AsAppError(err error, message string) *appErrors.Error {
	appErr := appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	if details := Details(err); len(details) > 0 {
		appErr.Details = details
	}
	return appErr
}
