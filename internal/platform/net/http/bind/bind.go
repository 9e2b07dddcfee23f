// Package bind validates request DTOs filled from query and path params
package bind

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	perr "potluck/internal/platform/errors"
	"potluck/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"
)

var (
	once  sync.Once
	valid *validator.Validate
	trans ut.Translator
)

// engine builds the shared validator on first use: json tag names in messages,
// english translations, short min and max wording
func engine() (*validator.Validate, ut.Translator) {
	once.Do(func() {
		loc := en.New()
		trans, _ = ut.New(loc, loc).GetTranslator("en")

		valid = validator.New(validator.WithRequiredStructEnabled())
		valid.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		_ = entrans.RegisterDefaultTranslations(valid, trans)
		short(valid, "min", "{0} must be at least {1}")
		short(valid, "max", "{0} must be at most {1}")
	})
	return valid, trans
}

func short(v *validator.Validate, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}

// Validate checks v's validate tags; the first failure becomes a
// validation error naming its field
func Validate(v any) error {
	val, tr := engine()
	err := val.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return perr.WithField(perr.New(perr.ErrorCodeValidation, fe.Translate(tr)), fe.Field())
	}
	logger.Named("bind").Error().Err(err).Msg("validator misuse")
	return perr.New(perr.ErrorCodeValidation, "validation error")
}
