// Package validation checks request data against declarative schemas.
//
// A schema is a plain struct whose fields carry go-playground/validator
// rules in the `validate` tag and optional custom messages in the `msg`
// tag.  The msg tag holds either a single message used for every rule of
// the field, or rule=message pairs separated by semicolons:
//
//	type LoginRequest struct {
//	    Email string `json:"email" validate:"required,email" msg:"required=El correo es obligatorio;email=Correo electrónico inválido"`
//	}
//
// Failures come back as []FieldError in field declaration order, with the
// field path written as dot-joined JSON names ("contacto.email").
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/production-manager/internal/model"
)

// FieldError is one violated constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// rfcPattern matches Mexican tax ids: 3 letters for companies or 4 for
// people, a YYMMDD date and a 3-character checksum.
var rfcPattern = regexp.MustCompile(`(?i)^[A-ZÑ&]{3,4}[0-9]{6}[A-Z0-9]{3}$`)

// GetValidator returns the shared validator.  It caches struct metadata
// and is safe for concurrent use.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(fieldName)
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = v.RegisterValidation("rfc", func(fl validator.FieldLevel) bool {
			return rfcPattern.MatchString(strings.TrimSpace(fl.Field().String()))
		})
		_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			_, ok := model.ParseRole(fl.Field().String())
			return ok
		})
		validate = v
	})
	return validate
}

// fieldName reports the wire name of a struct field: its json, query or
// param tag, in that order.
func fieldName(fld reflect.StructField) string {
	for _, key := range []string{"json", "query", "param"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return ""
}

// ValidateStruct validates v, which must be a struct or a pointer to one.
// It never returns nil: a valid value yields an empty slice.
func ValidateStruct(v any) []FieldError {
	return FormatErrors(GetValidator().Struct(v), v)
}

// FormatErrors converts a validator error into field errors.  schema, when
// given, is the validated value and is used to look up msg tags.  A nil
// err produces an empty, non-nil slice.
func FormatErrors(err error, schema any) []FieldError {
	out := []FieldError{}
	if err == nil {
		return out
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return append(out, FieldError{Field: "", Message: err.Error()})
	}
	var root reflect.Type
	if schema != nil {
		root = reflect.TypeOf(schema)
	}
	for _, fe := range verrs {
		msg := customMessage(root, fe)
		if msg == "" {
			msg = defaultMessage(fe)
		}
		out = append(out, FieldError{Field: fieldPath(fe.Namespace()), Message: msg})
	}
	return out
}

var indexPattern = regexp.MustCompile(`\[([^\]]*)\]`)

// fieldPath turns "ClientRequest.contacto.email" into "contacto.email" and
// "Order.items[2].qty" into "items.2.qty".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		namespace = namespace[i+1:]
	}
	return indexPattern.ReplaceAllString(namespace, ".$1")
}

// customMessage walks the schema type along the failing field's struct
// namespace and returns the msg tag entry for the failed rule.
func customMessage(root reflect.Type, fe validator.FieldError) string {
	if root == nil {
		return ""
	}
	segs := strings.Split(fe.StructNamespace(), ".")
	if len(segs) < 2 {
		return ""
	}
	t := root
	for i, seg := range segs[1:] {
		name, indexes := seg, 0
		if j := strings.IndexByte(seg, '['); j >= 0 {
			name, indexes = seg[:j], strings.Count(seg, "[")
		}
		t = deref(t)
		if t.Kind() != reflect.Struct {
			return ""
		}
		f, ok := t.FieldByName(name)
		if !ok {
			return ""
		}
		if i == len(segs)-2 {
			return pickMessage(f.Tag.Get("msg"), fe.Tag())
		}
		t = f.Type
		for ; indexes > 0; indexes-- {
			t = deref(t)
			switch t.Kind() {
			case reflect.Slice, reflect.Array, reflect.Map:
				t = t.Elem()
			default:
				return ""
			}
		}
	}
	return ""
}

func deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// pickMessage parses a msg tag.  "*" is the catch-all key.
func pickMessage(tag, rule string) string {
	if tag == "" {
		return ""
	}
	if !strings.Contains(tag, "=") {
		return tag
	}
	var fallback string
	for _, part := range strings.Split(tag, ";") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		switch strings.TrimSpace(k) {
		case rule:
			return strings.TrimSpace(v)
		case "*":
			fallback = strings.TrimSpace(v)
		}
	}
	return fallback
}

var defaultMessages = map[string]string{
	"required": "Campo requerido",
	"notblank": "No puede estar vacío",
	"email":    "Correo electrónico inválido",
	"url":      "URL inválida",
	"numeric":  "Debe ser numérico",
	"rfc":      "RFC inválido",
	"role":     "Rol inválido",
	"uuid":     "Identificador inválido",
}

var defaultMessagesWithParam = map[string]string{
	"oneof": "Debe ser uno de: %s",
	"gte":   "Debe ser mayor o igual a %s",
	"lte":   "Debe ser menor o igual a %s",
	"gt":    "Debe ser mayor que %s",
	"lt":    "Debe ser menor que %s",
}

func defaultMessage(fe validator.FieldError) string {
	if m, ok := defaultMessages[fe.Tag()]; ok {
		return m
	}
	if m, ok := defaultMessagesWithParam[fe.Tag()]; ok {
		return fmt.Sprintf(m, fe.Param())
	}
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "min":
		if isString {
			return fmt.Sprintf("Debe tener al menos %s caracteres", fe.Param())
		}
		return fmt.Sprintf("Debe ser al menos %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("Debe tener como máximo %s caracteres", fe.Param())
		}
		return fmt.Sprintf("Debe ser como máximo %s", fe.Param())
	case "len":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("Debe tener exactamente %s caracteres", fe.Param())
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("Debe tener exactamente %s elementos", fe.Param())
		}
		return fmt.Sprintf("Debe ser igual a %s", fe.Param())
	}
	return fmt.Sprintf("Valor inválido (%s)", fe.Tag())
}
