package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/radieske/pick-control/internal/shared/errs"
)

// New cria um validator que reporta o nome JSON do campo
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Messages dá o texto de tags próprias registradas por cada serviço
type Messages map[string]string

// Translate converte o primeiro erro do validator em errs.ValidationError
func Translate(err error, custom Messages) error {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return errs.Invalid("", err.Error())
	}
	fe := verrs[0]
	if msg, ok := custom[fe.Tag()]; ok {
		return errs.Invalid(fe.Field(), msg)
	}
	switch fe.Tag() {
	case "required":
		return errs.Invalid(fe.Field(), "required")
	case "email":
		return errs.Invalid(fe.Field(), "invalid email")
	case "min":
		return errs.Invalid(fe.Field(), "too short (min "+fe.Param()+")")
	case "max":
		return errs.Invalid(fe.Field(), "too long (max "+fe.Param()+")")
	default:
		return errs.Invalid(fe.Field(), "invalid value")
	}
}
