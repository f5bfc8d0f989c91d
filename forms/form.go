// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package forms provides helpers for form-encoded requests against
// resource listings: searches that persist across requests, batch
// actions on selected items, forms that can raise ignorable warnings,
// and a key=value argument splitter.
package forms

import (
	"errors"
	"net/url"
	"strings"
)

// IgnoreWarningsField is the form field that, when set, lets a form
// with warnings validate.
const IgnoreWarningsField = "ignore_warnings"

// ErrRequired is the message recorded for missing required fields.
const ErrRequired = "This field is required."

var errUnknownField = errors.New("unknown field in persisted search")

// Form is a set of posted values under an optional prefix.  All
// values read through it have surrounding whitespace stripped.  A
// form collects validation errors, which make it invalid, and
// warnings, which make it invalid unless the user chose to ignore
// them.
type Form struct {
	// Prefix is prepended, with a "-", to every field name.
	Prefix string

	// Data holds the raw posted values.
	Data url.Values

	// Errors maps field names (without prefix) to messages.
	Errors map[string][]string

	// Warnings lists warning messages.
	Warnings []string
}

// NewForm creates a form over posted data.
func NewForm(prefix string, data url.Values) *Form {
	if data == nil {
		data = url.Values{}
	}
	return &Form{
		Prefix: prefix,
		Data:   data,
		Errors: map[string][]string{},
	}
}

// Key returns the posted name of a field.
func (f *Form) Key(name string) string {
	if f.Prefix == "" {
		return name
	}
	return f.Prefix + "-" + name
}

// Value returns the stripped value of a field, or "" if absent.
func (f *Form) Value(name string) string {
	return strings.TrimSpace(f.Data.Get(f.Key(name)))
}

// Values returns the stripped, non-empty values of a field.
func (f *Form) Values(name string) []string {
	var result []string
	for _, v := range f.Data[f.Key(name)] {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}

// Bool reads a checkbox.  Absent, empty, "0", and "false" (in any
// case) are false; anything else is true.
func (f *Form) Bool(name string) bool {
	switch strings.ToLower(f.Value(name)) {
	case "", "0", "false":
		return false
	default:
		return true
	}
}

// Require returns the value of a field, recording an error if it is
// empty.
func (f *Form) Require(name string) string {
	v := f.Value(name)
	if v == "" {
		f.AddError(name, ErrRequired)
	}
	return v
}

// AddError records a validation error against a field.
func (f *Form) AddError(name, message string) {
	f.Errors[name] = append(f.Errors[name], message)
}

// AddWarning records a warning.
func (f *Form) AddWarning(message string) {
	f.Warnings = append(f.Warnings, message)
}

// IgnoreWarnings returns true if the user chose to ignore warnings.
func (f *Form) IgnoreWarnings() bool {
	return f.Bool(IgnoreWarningsField)
}

// Valid returns true if there are no errors, and either there are no
// warnings or they are ignored.
func (f *Form) Valid() bool {
	if len(f.Errors) > 0 {
		return false
	}
	return len(f.Warnings) == 0 || f.IgnoreWarnings()
}
