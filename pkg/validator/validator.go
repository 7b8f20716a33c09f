// Package validator provides a Validator type for accumulating field-level
// validation errors, and the rules a candidate book must satisfy before
// the inventory will store it.
package validator

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Length limits for text fields.
const (
	MaxTextLength        = 255
	MaxDescriptionLength = 2000
	MinPublicationYear   = 1000
)

// Messages reported per field.
const (
	MsgTitle           = "Title is required and must be between 1-255 characters"
	MsgAuthor          = "Author is required and must be between 1-255 characters"
	MsgPublisher       = "Publisher is required and must be between 1-255 characters"
	MsgPublicationYear = "Publication year must be a valid year (1000-current year)"
	MsgPages           = "Pages must be a positive integer"
	MsgISBN            = "ISBN must be 10 or 13 digits"
	MsgDescription     = "Description must not exceed 2000 characters"
)

// ISBNRX matches a cleaned ISBN-10 or ISBN-13.
var ISBNRX = regexp.MustCompile(`^(\d{10}|\d{13})$`)

// isbnSeparatorRX matches the hyphens and whitespace stripped before
// checking an ISBN.
var isbnSeparatorRX = regexp.MustCompile(`[-\s]`)

// Validator holds a map of field names to their validation error messages.
// A Validator with an empty Errors map is considered valid.
type Validator struct {
	Errors types.ValidationErrors
}

// New creates and returns a fresh, empty Validator.
func New() *Validator {
	return &Validator{Errors: make(types.ValidationErrors)}
}

// Valid returns true if the Errors map contains no entries.
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError records key as failing with the given message.
// If key already has an error it is not overwritten, so the first
// failure for a field is always the one that is reported.
func (v *Validator) AddError(key, message string) {
	if _, exists := v.Errors[key]; !exists {
		v.Errors[key] = message
	}
}

// Check adds an error for key with message only when ok is false.
//
//	v.Check(LengthBetween(title, 1, 255), "title", MsgTitle)
func (v *Validator) Check(ok bool, key, message string) {
	if !ok {
		v.AddError(key, message)
	}
}

// LengthBetween reports whether the trimmed value has between min and max
// characters inclusive.
func LengthBetween(value string, min, max int) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	return n >= min && n <= max
}

// YearInRange reports whether year lies in [MinPublicationYear, currentYear].
func YearInRange(year, currentYear int) bool {
	return year >= MinPublicationYear && year <= currentYear
}

// CleanISBN strips hyphens and whitespace.
func CleanISBN(isbn string) string {
	return isbnSeparatorRX.ReplaceAllString(isbn, "")
}

// ValidISBN reports whether isbn reduces to exactly 10 or 13 digits.
func ValidISBN(isbn string) bool {
	return ISBNRX.MatchString(CleanISBN(isbn))
}

// ValidateBook runs every field check against b and records failures in v.
// Checks are independent: one failing field never hides another.
func ValidateBook(v *Validator, b *types.Book, currentYear int) {
	v.Check(LengthBetween(b.Title, 1, MaxTextLength), types.FieldTitle, MsgTitle)
	v.Check(LengthBetween(b.Author, 1, MaxTextLength), types.FieldAuthor, MsgAuthor)
	v.Check(LengthBetween(b.Publisher, 1, MaxTextLength), types.FieldPublisher, MsgPublisher)

	switch {
	case b.PublicationYear != nil:
		v.Check(YearInRange(*b.PublicationYear, currentYear), types.FieldPublicationYear, MsgPublicationYear)
	case b.HasRaw(types.FieldPublicationYear):
		v.AddError(types.FieldPublicationYear, MsgPublicationYear)
	}

	v.Check(b.Pages > 0, types.FieldPages, MsgPages)

	switch {
	case b.ISBN != "":
		v.Check(ValidISBN(b.ISBN), types.FieldISBN, MsgISBN)
	case b.HasRaw(types.FieldISBN):
		v.AddError(types.FieldISBN, MsgISBN)
	}

	switch {
	case b.Description != "":
		v.Check(LengthBetween(b.Description, 0, MaxDescriptionLength), types.FieldDescription, MsgDescription)
	case b.HasRaw(types.FieldDescription):
		v.AddError(types.FieldDescription, MsgDescription)
	}
}

// BookAt validates b against the calendar year of now.
func BookAt(b *types.Book, now time.Time) types.ValidationErrors {
	v := New()
	ValidateBook(v, b, now.Year())
	return v.Errors
}

// Book validates b against the current calendar year.
func Book(b *types.Book) types.ValidationErrors {
	return BookAt(b, time.Now())
}
