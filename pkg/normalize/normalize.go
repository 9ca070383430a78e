// Package normalize holds every field-level parsing and cleanup rule applied
// to raw feed values before reconciliation. All functions are pure; feeds
// reshape input and this package interprets it.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/Ramsey-B/fern/pkg/models"
)

const (
	// NameUnknown fills a name component that could not be derived.
	NameUnknown = "-"

	birthDateLayout = "02.01.2006"
	timestampLayout = "2006-01-02 15:04:05"
)

var (
	phonePattern      = regexp.MustCompile(`[^0-9]`)
	hobbyTokenPattern = regexp.MustCompile(`(.*?)%(\d+)%`)
)

// SplitNameSimple parses the tabular feed's "Last, First" column. Without a
// comma the whole value is treated as a last name.
func SplitNameSimple(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return NameUnknown, NameUnknown
	}
	before, after, found := strings.Cut(name, ",")
	if !found {
		return NameUnknown, name
	}
	return strings.TrimSpace(after), strings.TrimSpace(before)
}

// SplitName parses a "Last, First" value, falling back to the email local
// part when the value carries no comma. Both components are capitalized. A
// comma-less name with no usable email becomes the last name on its own.
func SplitName(fullName, email string) (first, last string) {
	fullName = strings.TrimSpace(fullName)
	if strings.Contains(fullName, ",") {
		before, after, _ := strings.Cut(fullName, ",")
		return Capitalize(strings.TrimSpace(after)), Capitalize(strings.TrimSpace(before))
	}
	if email != "" && strings.Contains(email, "@") {
		first, last = SplitNameFromEmail(email)
		return Capitalize(first), Capitalize(last)
	}
	if fullName == "" {
		return NameUnknown, NameUnknown
	}
	return NameUnknown, Capitalize(fullName)
}

// SplitNameFromEmail derives (first, last) from the local part of an email
// address, split at the first dot. "ellen.wickern@x.test" yields
// ("ellen", "wickern").
func SplitNameFromEmail(email string) (first, last string) {
	if email == "" || !strings.Contains(email, "@") {
		return NameUnknown, NameUnknown
	}
	local, _, _ := strings.Cut(email, "@")
	before, after, found := strings.Cut(local, ".")
	if !found {
		return NameUnknown, local
	}
	return before, after
}

// Capitalize uppercases the first rune and lowercases the rest.
func Capitalize(s string) string {
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// ScrubPhone strips every character except digits, keeping a '+' only when it
// leads the number.
func ScrubPhone(phone string) string {
	phone = strings.TrimSpace(phone)
	scrubbed := phonePattern.ReplaceAllString(phone, "")
	if strings.HasPrefix(phone, "+") {
		return "+" + scrubbed
	}
	return scrubbed
}

// SplitAddress parses the tabular feed's "Street No, Zip, City" column into
// an address key. A value with fewer than three comma parts yields an empty
// key; the street segment is split on its last space to separate the house
// number.
func SplitAddress(addr string) models.AddressKey {
	parts := strings.Split(addr, ",")
	if len(parts) < 3 {
		return models.AddressKey{}
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	key := models.AddressKey{
		ZipCode: stringPtr(parts[1]),
		City:    stringPtr(parts[2]),
	}

	if idx := strings.LastIndex(parts[0], " "); idx >= 0 {
		key.Street = stringPtr(strings.TrimSpace(parts[0][:idx]))
		key.HouseNo = stringPtr(parts[0][idx+1:])
	} else {
		key.Street = stringPtr(parts[0])
	}
	return key
}

// ParseBirthDate parses a "07.03.1959" style date. An empty value is not an
// error; it simply yields no date.
func ParseBirthDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(birthDateLayout, value)
	if err != nil {
		return nil, &models.ParseError{Field: "birth_date", Value: value, Err: err}
	}
	return &t, nil
}

// ParseTimestamp parses a "2024-03-17 07:39:29" style timestamp. An empty
// value yields no timestamp.
func ParseTimestamp(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(timestampLayout, value)
	if err != nil {
		return nil, &models.ParseError{Field: field, Value: value, Err: err}
	}
	return &t, nil
}

// ParseHobbyToken parses a "Kochen %80%" token into its name and priority. A
// token without a priority suffix keeps its full text as name with priority 0.
func ParseHobbyToken(token string) (name string, priority int, err error) {
	token = strings.TrimSpace(token)
	match := hobbyTokenPattern.FindStringSubmatch(token)
	if match == nil {
		return token, 0, nil
	}

	priority, err = strconv.Atoi(match[2])
	if err != nil {
		return "", 0, &models.ParseError{Field: "hobby", Value: token, Err: err}
	}
	if priority < 0 || priority > 100 {
		return "", 0, &models.ParseError{
			Field: "hobby",
			Value: token,
			Err:   fmt.Errorf("priority %d out of range", priority),
		}
	}
	return strings.TrimSpace(match[1]), priority, nil
}

// SplitHobbyList splits a ";"-separated hobby column into trimmed tokens,
// dropping empty entries.
func SplitHobbyList(raw string) []string {
	var tokens []string
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part != "" {
			tokens = append(tokens, part)
		}
	}
	return tokens
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
