package viewstate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind tells the coercion step how to read a raw form value.
type Kind int

const (
	KindText Kind = iota
	KindNumber
)

// Field describes one input of a draft.
type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool
}

// Group is a set of fields that is opened, validated and saved together.
type Group struct {
	Name   string
	Label  string
	Fields []Field
}

// Field looks a field up by name.
func (g Group) Field(name string) (Field, bool) {
	for _, f := range g.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Blank returns an empty raw value for every field of the group.
func (g Group) Blank() map[string]string {
	values := make(map[string]string, len(g.Fields))
	for _, f := range g.Fields {
		values[f.Name] = ""
	}
	return values
}

// ValidationError lists the fields that failed presence or number checks. It is
// returned before any request is issued.
type ValidationError struct {
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, 2)
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "not a number: "+strings.Join(e.Invalid, ", "))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Values are the coerced values of a submitted draft.
type Values struct {
	text    map[string]string
	numbers map[string]float64
}

// Text returns a trimmed text value.
func (v Values) Text(name string) string {
	return v.text[name]
}

// Number returns a coerced number; optional empty numbers read as zero.
func (v Values) Number(name string) float64 {
	return v.numbers[name]
}

// Coerce reads raw text values according to the group's descriptors. Only
// presence of required fields and number syntax are checked.
func Coerce(g Group, raw map[string]string) (Values, error) {
	values := Values{
		text:    make(map[string]string, len(g.Fields)),
		numbers: make(map[string]float64, len(g.Fields)),
	}
	verr := &ValidationError{}

	for _, f := range g.Fields {
		value := strings.TrimSpace(raw[f.Name])
		if value == "" {
			if f.Required {
				verr.Missing = append(verr.Missing, f.label())
			}
			values.text[f.Name] = ""
			continue
		}

		values.text[f.Name] = value
		if f.Kind != KindNumber {
			continue
		}

		n, err := ParseNumber(value)
		if err != nil {
			verr.Invalid = append(verr.Invalid, f.label())
			continue
		}
		values.numbers[f.Name] = n
	}

	if len(verr.Missing) > 0 || len(verr.Invalid) > 0 {
		sort.Strings(verr.Missing)
		sort.Strings(verr.Invalid)
		return Values{}, verr
	}
	return values, nil
}

func (f Field) label() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

var banglaDigits = strings.NewReplacer(
	"০", "0", "১", "1", "২", "2", "৩", "3", "৪", "4",
	"৫", "5", "৬", "6", "৭", "7", "৮", "8", "৯", "9",
)

// ParseNumber reads free-form numeric text, accepting Bangla digits and
// thousands separators.
func ParseNumber(value string) (float64, error) {
	normalized := banglaDigits.Replace(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, ",", "")
	normalized = strings.TrimPrefix(normalized, "৳")
	normalized = strings.TrimSpace(normalized)

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return 0, fmt.Errorf("parse number %q: %w", value, err)
	}
	return d.InexactFloat64(), nil
}

// FormatNumber renders a number the way it is typed back into a form.
func FormatNumber(n float64) string {
	return decimal.NewFromFloat(n).String()
}
