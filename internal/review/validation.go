package review

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// FieldViolation describes one invalid field by its JSON name.
type FieldViolation struct {
	Field       string
	Description string
}

// ValidationError is returned when a correction or preference fails validation.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		messages = append(messages, v.Description)
	}
	return "invalid review data: " + strings.Join(messages, ", ")
}

type structValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func newStructValidator() (*structValidator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &structValidator{validate: validate, translator: trans}, nil
}

func (v *structValidator) check(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	result := &ValidationError{}
	for _, e := range validationErrors {
		result.Violations = append(result.Violations, FieldViolation{
			Field:       e.Field(),
			Description: e.Translate(v.translator),
		})
	}
	return result
}
