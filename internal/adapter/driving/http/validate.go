package httphandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/ericfisherdev/shadowstats/internal/domain/model"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// validation bundles the validator with its English translator.
type validation struct {
	validate   *validator.Validate
	translator ut.Translator
}

var (
	validationOnce sync.Once
	validationSvc  *validation
)

// getValidation returns the package validator, building it on first use.
// Field names in messages come from json tags, falling back to the Go name.
func getValidation() *validation {
	validationOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		_ = v.RegisterValidation("github_login", func(fl validator.FieldLevel) bool {
			return model.IsValidLogin(fl.Field().String())
		})
		_ = v.RegisterTranslation("github_login", trans,
			func(ut ut.Translator) error {
				return ut.Add("github_login", "{0} must be a valid GitHub username", true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				msg, _ := ut.T("github_login", fe.Field())
				return msg
			},
		)

		validationSvc = &validation{validate: v, translator: trans}
	})
	return validationSvc
}

// validateStruct validates v and returns the first translated message.
func validateStruct(v any) error {
	svc := getValidation()
	err := svc.validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return errors.New(verrs[0].Translate(svc.translator))
	}
	return err
}

// firstInvalidField returns the json name of the first failing field, or "".
func firstInvalidField(v any) string {
	var verrs validator.ValidationErrors
	if errors.As(getValidation().validate.Struct(v), &verrs) && len(verrs) > 0 {
		return verrs[0].Field()
	}
	return ""
}

// decodeJSON reads a single JSON object into T, rejecting unknown fields and
// trailing data, then validates it.
func decodeJSON[T any](r *http.Request) (T, error) {
	var zero, dst T

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&dst); err != nil {
		if errors.Is(err, io.EOF) {
			return zero, errors.New("empty body")
		}
		return zero, fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return zero, errors.New("unexpected trailing data")
	}

	if err := validateStruct(dst); err != nil {
		return zero, err
	}

	return dst, nil
}
