package validation

import (
	"bytes"
	stdjson "encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/production-manager/internal/metrics"
)

// Request enumerates the sections of a request to validate.  Each non-nil
// field must be a pointer to a schema struct; it is filled from the request
// and validated.  Body is decoded from JSON, Query uses `query` tags and
// Params uses `param` tags.
type Request struct {
	Body     any
	Query    any
	Params   any
	Sanitize bool
}

// Result is the outcome of ValidateRequest.  Errors is never nil.
type Result struct {
	Errors []FieldError
}

// Valid reports whether no field failed.
func (r Result) Valid() bool { return len(r.Errors) == 0 }

// ErrorResponse is the 400 body for validation failures.
type ErrorResponse struct {
	Error            string       `json:"error"`
	ValidationErrors []FieldError `json:"validation_errors,omitempty"`
}

// InvalidDataMessage is the top-level message of a validation failure.
const InvalidDataMessage = "Datos de entrada inválidos"

// ValidateRequest fills and validates every section named in req.  The
// returned error is reserved for requests that cannot be read at all
// (malformed JSON, unsupported media type); field problems are reported in
// Result.  Sections are checked body, query, params, and all their errors
// are returned together.
func ValidateRequest(c echo.Context, req Request) (Result, error) {
	res := Result{Errors: []FieldError{}}

	if req.Body != nil {
		errs, err := bindBody(c, req.Body)
		if err != nil {
			return res, err
		}
		res.Errors = append(res.Errors, section("body", errs, req.Body)...)
	}
	if req.Query != nil {
		errs := bindValues(req.Query, "query", func(name string) (string, bool) {
			vals, ok := c.QueryParams()[name]
			if !ok || len(vals) == 0 {
				return "", false
			}
			return vals[0], true
		})
		res.Errors = append(res.Errors, section("query", errs, req.Query)...)
	}
	if req.Params != nil {
		errs := bindValues(req.Params, "param", func(name string) (string, bool) {
			for i, n := range c.ParamNames() {
				if n == name && i < len(c.ParamValues()) {
					return c.ParamValues()[i], true
				}
			}
			return "", false
		})
		res.Errors = append(res.Errors, section("params", errs, req.Params)...)
	}

	if res.Valid() && req.Sanitize {
		for _, v := range []any{req.Body, req.Query, req.Params} {
			if v != nil {
				Sanitize(v)
			}
		}
	}
	return res, nil
}

// section validates a bound schema unless binding already failed.
func section(name string, bindErrs []FieldError, schema any) []FieldError {
	errs := bindErrs
	if len(errs) == 0 {
		errs = ValidateStruct(schema)
	}
	if len(errs) > 0 {
		metrics.RecordValidationFailure(name)
	}
	return errs
}

// Body is ValidateRequest for a body-only schema of type T.
func Body[T any](c echo.Context, sanitize bool) (T, Result, error) {
	var body T
	res, err := ValidateRequest(c, Request{Body: &body, Sanitize: sanitize})
	return body, res, err
}

// Respond writes the standard 400 validation response.
func Respond(c echo.Context, res Result) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:            InvalidDataMessage,
		ValidationErrors: res.Errors,
	})
}

// bindBody decodes the JSON body into dst.  Type mismatches on a known
// field become field errors; anything else unreadable is returned as err.
func bindBody(c echo.Context, dst any) ([]FieldError, error) {
	req := c.Request()
	var raw []byte
	if req.Body != nil && req.ContentLength != 0 {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, echo.NewHTTPError(http.StatusBadRequest, "JSON inválido").SetInternal(err)
		}
		raw = b
		req.Body = io.NopCloser(bytes.NewReader(raw))
	}

	err := (&echo.DefaultBinder{}).BindBody(c, dst)
	if err == nil {
		return nil, nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []FieldError{typeMismatch(mismatchPath(raw, dst, typeErr.Field), typeErr.Type)}, nil
	}
	var stdTypeErr *stdjson.UnmarshalTypeError
	if errors.As(err, &stdTypeErr) {
		return []FieldError{typeMismatch(stdTypeErr.Field, stdTypeErr.Type)}, nil
	}
	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code == http.StatusBadRequest {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "JSON inválido").SetInternal(err)
	}
	return nil, err
}

// mismatchPath returns the dotted JSON path of a type mismatch.  goccy only
// reports the Go name of the innermost field, so the body is decoded again
// with encoding/json, whose error carries the full path of JSON keys.
func mismatchPath(raw []byte, dst any, fallback string) string {
	t := reflect.TypeOf(dst)
	if len(raw) == 0 || t == nil || t.Kind() != reflect.Pointer {
		return fallback
	}
	var stdErr *stdjson.UnmarshalTypeError
	err := stdjson.Unmarshal(raw, reflect.New(t.Elem()).Interface())
	if errors.As(err, &stdErr) && stdErr.Field != "" {
		return stdErr.Field
	}
	return fallback
}

func typeMismatch(field string, t reflect.Type) FieldError {
	return FieldError{Field: field, Message: "Tipo de dato inválido, se esperaba " + jsonKind(t)}
}

func jsonKind(t reflect.Type) string {
	if t == nil {
		return "otro tipo"
	}
	switch deref(t).Kind() {
	case reflect.String:
		return "texto"
	case reflect.Bool:
		return "booleano"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "número"
	case reflect.Slice, reflect.Array:
		return "arreglo"
	default:
		return "objeto"
	}
}

// bindValues fills the top-level fields of dst tagged with tag from lookup.
// Conversion failures are reported per field instead of aborting.
func bindValues(dst any, tag string, lookup func(name string) (string, bool)) []FieldError {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return []FieldError{{Field: tag, Message: "esquema inválido"}}
	}
	rv = rv.Elem()
	rt := rv.Type()

	var errs []FieldError
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "" || name == "-" || !f.IsExported() {
			continue
		}
		raw, ok := lookup(name)
		if !ok {
			continue
		}
		if msg := setScalar(rv.Field(i), raw); msg != "" {
			errs = append(errs, FieldError{Field: name, Message: msg})
		}
	}
	return errs
}

// setScalar parses raw into fv and returns a message on failure.
func setScalar(fv reflect.Value, raw string) string {
	if fv.Kind() == reflect.Pointer {
		ptr := reflect.New(fv.Type().Elem())
		if msg := setScalar(ptr.Elem(), raw); msg != "" {
			return msg
		}
		fv.Set(ptr)
		return ""
	}
	raw = strings.TrimSpace(raw)
	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return "Debe ser verdadero o falso"
		}
		fv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, fv.Type().Bits())
		if err != nil {
			return "Debe ser un número entero"
		}
		fv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(raw, 10, fv.Type().Bits())
		if err != nil {
			return "Debe ser un número entero positivo"
		}
		fv.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(raw, fv.Type().Bits())
		if err != nil {
			return "Debe ser un número"
		}
		fv.SetFloat(n)
	default:
		return "Tipo de parámetro no soportado"
	}
	return ""
}
