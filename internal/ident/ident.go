// Package ident generates the human-readable business ids stamped on
// leads and orders: {prefix}/{MMYY}/{cityCode}/{userCode}-{seq}. Staff
// read these ids over the phone, so every component is short and derived
// from something they already know (month, city, creator, running count).
package ident

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

var ErrInvalidInput = errors.New("ident: invalid input")

const (
	PrefixLead  = "L"
	PrefixOrder = "O"
)

// Creator identifies who is creating the record. Name drives the user
// code; ID is the fallback when the name is empty.
type Creator struct {
	ID   string
	Name string
}

// cityCodes maps the cities the business operates in to their fixed
// codes. Cities outside the table fall back to the first three letters.
var cityCodes = map[string]string{
	"mumbai":    "MUM",
	"delhi":     "DEL",
	"new delhi": "DEL",
	"pune":      "PUN",
	"bengaluru": "BLR",
	"bangalore": "BLR",
	"hyderabad": "HYD",
	"chennai":   "CHE",
	"kolkata":   "KOL",
	"ahmedabad": "AMD",
	"surat":     "SUR",
	"jaipur":    "JAI",
	"nagpur":    "NAG",
	"indore":    "IDR",
	"lucknow":   "LKO",
}

// Generate builds a business id from the record's creation time, city,
// creator and the number of records of the same type already in that
// city. The sequence number is existingCountForCity+1, zero-padded to at
// least two digits. Pure: no I/O, identical inputs yield identical ids.
func Generate(prefix string, at time.Time, city string, creator Creator, existingCountForCity int) (string, error) {
	if strings.TrimSpace(prefix) == "" {
		return "", fmt.Errorf("%w: empty prefix", ErrInvalidInput)
	}
	if strings.TrimSpace(city) == "" {
		return "", fmt.Errorf("%w: empty city", ErrInvalidInput)
	}
	if strings.TrimSpace(creator.ID) == "" && strings.TrimSpace(creator.Name) == "" {
		return "", fmt.Errorf("%w: creator has neither id nor name", ErrInvalidInput)
	}
	if existingCountForCity < 0 {
		return "", fmt.Errorf("%w: negative count %d", ErrInvalidInput, existingCountForCity)
	}

	seq := existingCountForCity + 1
	return fmt.Sprintf("%s/%s/%s/%s-%02d",
		prefix,
		at.Format("0106"),
		CityCode(city),
		UserCode(creator),
		seq,
	), nil
}

// CityCode returns the fixed code for a known city, or the first three
// letters of the name uppercased. Deterministic for any input.
func CityCode(city string) string {
	normalized := strings.ToLower(strings.TrimSpace(city))
	if code, ok := cityCodes[normalized]; ok {
		return code
	}

	var letters []rune
	for _, r := range normalized {
		if unicode.IsLetter(r) {
			letters = append(letters, unicode.ToUpper(r))
			if len(letters) == 3 {
				break
			}
		}
	}
	if len(letters) == 0 {
		return "XXX"
	}
	return string(letters)
}

// UserCode derives a short code from the creator's display name: the
// first letter of up to three name parts, uppercased. A creator without
// a usable name falls back to the leading characters of the id.
func UserCode(creator Creator) string {
	var initials []rune
	for _, part := range strings.Fields(creator.Name) {
		for _, r := range part {
			if unicode.IsLetter(r) {
				initials = append(initials, unicode.ToUpper(r))
			}
			break
		}
		if len(initials) == 3 {
			break
		}
	}
	if len(initials) > 0 {
		return string(initials)
	}

	id := strings.TrimSpace(creator.ID)
	if len(id) > 2 {
		id = id[:2]
	}
	return strings.ToUpper(id)
}
