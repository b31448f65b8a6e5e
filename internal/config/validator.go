package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// fieldMessages override the default translations so that errors name the
// config key (storage.driver) instead of the Go field.
var fieldMessages = map[string]string{
	"file":  "{0} must be an existing and readable file",
	"dir":   "{0} must be an existing directory",
	"url":   "{0} must be an absolute URL such as http://localhost:5000",
	"oneof": "{0} must be one of [{1}]",
	"gte":   "{0} must be {1} or greater",
	"lte":   "{0} must be {1} or less",
}

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("file", isFileReadable); err != nil {
		return nil, nil, fmt.Errorf("failed to register file validation: %w", err)
	}

	for tag, message := range fieldMessages {
		if err := validate.RegisterTranslation(tag, trans, func(ut ut.Translator) error {
			return ut.Add(tag, message, true)
		}, translateField); err != nil {
			return nil, nil, fmt.Errorf("failed to register %s translation: %w", tag, err)
		}
	}
	return validate, trans, nil
}

func translateField(ut ut.Translator, fe validator.FieldError) string {
	key := strings.TrimPrefix(fe.Namespace(), "Config.")
	t, err := ut.T(fe.Tag(), key, fe.Param())
	if err != nil {
		return fe.Error()
	}
	return t
}

func isFileReadable(fl validator.FieldLevel) bool {
	path := fl.Field().String()
	if path == "" {
		return false
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	// owner read bit
	return info.Mode().Perm()&0o400 != 0
}
