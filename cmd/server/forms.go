package main

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/Simplici0/cotizador3d/internal/apiclient"
	"github.com/Simplici0/cotizador3d/internal/money"
)

// formReader collects parse errors while reading posted values so the page
// can list every problem at once.
type formReader struct {
	values url.Values
	errs   []string
}

func newFormReader(values url.Values) *formReader {
	return &formReader{values: values}
}

func (f *formReader) text(key string) string {
	return strings.TrimSpace(f.values.Get(key))
}

// number parses a decimal accepting either "." or "," as separator. An empty
// value reads as zero.
func (f *formReader) number(key, label string) float64 {
	v := f.optNumber(key, label)
	if v == nil {
		return 0
	}
	return *v
}

func (f *formReader) optNumber(key, label string) *float64 {
	raw := f.text(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		f.errs = append(f.errs, label+" debe ser numérico")
		return nil
	}
	return &v
}

func (f *formReader) integer(key, label string) int {
	raw := f.text(key)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		f.errs = append(f.errs, label+" debe ser un número entero")
		return 0
	}
	return v
}

func (f *formReader) id(key string) int64 {
	v, err := strconv.ParseInt(f.text(key), 10, 64)
	if err != nil || v <= 0 {
		return 0
	}
	return v
}

// ids reads every value of a multi-select, skipping blanks and duplicates.
func (f *formReader) ids(key string) []int64 {
	out := make([]int64, 0)
	seen := map[int64]bool{}
	for _, raw := range f.values[key] {
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil || v <= 0 || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func (f *formReader) checkbox(key string) bool {
	switch f.text(key) {
	case "1", "on", "true":
		return true
	default:
		return false
	}
}

func (f *formReader) currency(key string) money.Currency {
	c, err := money.ParseCurrency(f.text(key))
	if err != nil {
		return money.USD
	}
	return c
}

func (f *formReader) fail(message string) {
	f.errs = append(f.errs, message)
}

// check returns the parse errors, if any, and otherwise the struct
// validation result for form.
func (f *formReader) check(form any) error {
	if len(f.errs) > 0 {
		return &apiclient.ValidationError{Message: "Revisa los datos del formulario", Details: f.errs}
	}
	if form == nil {
		return nil
	}
	return apiclient.Validate(form)
}

func optionalText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
