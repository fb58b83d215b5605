package book

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

type propertyType string

const (
	typeString  propertyType = "string"
	typeInteger propertyType = "integer"
)

type property struct {
	name string
	kind propertyType
}

// bookSchema is the declared property order; violations are reported in it.
var bookSchema = []property{
	{name: "isbn", kind: typeString},
	{name: "amazon_url", kind: typeString},
	{name: "author", kind: typeString},
	{name: "language", kind: typeString},
	{name: "pages", kind: typeInteger},
	{name: "publisher", kind: typeString},
	{name: "title", kind: typeString},
	{name: "year", kind: typeInteger},
}

// payload mirrors bookSchema. Pointer fields let `required` check presence
// rather than a non-zero value.
type payload struct {
	ISBN      *string `json:"isbn" validate:"required"`
	AmazonURL *string `json:"amazon_url" validate:"required"`
	Author    *string `json:"author" validate:"required"`
	Language  *string `json:"language" validate:"required"`
	Pages     *int    `json:"pages" validate:"required"`
	Publisher *string `json:"publisher" validate:"required"`
	Title     *string `json:"title" validate:"required"`
	Year      *int    `json:"year" validate:"required"`
}

func (p payload) book() Book {
	return Book{
		ISBN:      *p.ISBN,
		AmazonURL: *p.AmazonURL,
		Author:    *p.Author,
		Language:  *p.Language,
		Pages:     *p.Pages,
		Publisher: *p.Publisher,
		Title:     *p.Title,
		Year:      *p.Year,
	}
}

const notAnObject = "instance is not of a type(s) object"

// Validate checks a request body against the book schema and decodes it.
// On schema violations it returns a *ValidationError listing one message per
// offending property. Property names match exactly; any other key, including
// a differently cased schema name, is ignored.
func Validate(body []byte) (Book, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return Book{}, &ValidationError{Messages: []string{notAnObject}}
	}

	violations := make(map[string]string)
	known := make(map[string]any, len(bookSchema))
	for _, prop := range bookSchema {
		raw, ok := fields[prop.name]
		if !ok {
			continue
		}
		v, problem := prop.decode(raw)
		if problem != "" {
			violations[prop.name] = fmt.Sprintf("instance.%s %s", prop.name, problem)
			continue
		}
		known[prop.name] = v
	}

	filtered, err := json.Marshal(known)
	if err != nil {
		return Book{}, fmt.Errorf("re-encode book payload: %w", err)
	}
	var p payload
	if err := json.Unmarshal(filtered, &p); err != nil {
		return Book{}, fmt.Errorf("decode book payload: %w", err)
	}

	if err := validate.Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return Book{}, fmt.Errorf("validate book payload: %w", err)
		}
		for _, fe := range fieldErrs {
			// a type violation already explains why the field is unusable
			if _, seen := violations[fe.Field()]; seen {
				continue
			}
			violations[fe.Field()] = fieldMessage(fe)
		}
	}

	if len(violations) == 0 {
		return p.book(), nil
	}

	messages := make([]string, 0, len(violations))
	for _, prop := range bookSchema {
		if msg, ok := violations[prop.name]; ok {
			messages = append(messages, msg)
		}
	}
	return Book{}, &ValidationError{Messages: messages}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("instance requires property %q", fe.Field())
	default:
		return fmt.Sprintf("instance.%s is invalid", fe.Field())
	}
}

// decode returns the Go value held by raw, or a description of why raw does
// not satisfy the property. null is never accepted.
func (p property) decode(raw json.RawMessage) (any, string) {
	notType := fmt.Sprintf("is not of a type(s) %s", p.kind)

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, notType
	}
	switch p.kind {
	case typeString:
		if raw[0] != '"' {
			return nil, notType
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, notType
		}
		return s, ""
	case typeInteger:
		if raw[0] != '-' && (raw[0] < '0' || raw[0] > '9') {
			return nil, notType
		}
		return decodeInteger(raw, notType)
	}
	return nil, notType
}

// decodeInteger accepts any JSON number with a whole value, so 1.0 and 2e3
// count as integers. Values must fit the INTEGER column of the books table.
func decodeInteger(raw json.RawMessage, notType string) (any, string) {
	outOfRange := fmt.Sprintf("must be between %d and %d", math.MinInt32, math.MaxInt32)

	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return nil, notType
	}
	// raw is valid JSON here, so a parse failure means the exponent overflowed
	f, _, err := big.ParseFloat(num.String(), 10, 256, big.ToNearestEven)
	if err != nil || f.IsInf() {
		return nil, outOfRange
	}
	if !f.IsInt() {
		return nil, notType
	}
	n, acc := f.Int64()
	if acc != big.Exact || n < math.MinInt32 || n > math.MaxInt32 {
		return nil, outOfRange
	}
	return n, ""
}
