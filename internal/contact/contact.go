// Package contact holds the read-only contact records the pipeline consumes.
// Contact extraction itself (address book decoding) happens upstream; the
// pipeline only reads the roster produced there.
package contact

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Contact is the per-person context handed to the pipeline. The pipeline
// never mutates it.
type Contact struct {
	Name         string   `yaml:"name"`
	Phones       []string `yaml:"phones"`
	Emails       []string `yaml:"emails,omitempty"`
	Organization string   `yaml:"organization,omitempty"`
	Title        string   `yaml:"title,omitempty"`
	Addresses    []string `yaml:"addresses,omitempty"`
}

// Roster is the full contact list for a run.
type Roster struct {
	Contacts []Contact `yaml:"contacts"`
}

// LoadRoster reads a roster file written by the contact-extraction step.
// Phone numbers are normalized on load so file probing and anonymization see
// one canonical form.
func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}

	var r Roster
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}

	for i := range r.Contacts {
		for j, p := range r.Contacts[i].Phones {
			r.Contacts[i].Phones[j] = NormalizePhone(p)
		}
	}
	return &r, nil
}

var nonDigitRe = regexp.MustCompile(`[^\d]`)

// NormalizePhone converts a phone number to the +<digits> form the message
// exporter uses for filenames (US numbers get a country code).
func NormalizePhone(phone string) string {
	digits := nonDigitRe.ReplaceAllString(phone, "")
	switch {
	case digits == "":
		return ""
	case len(digits) == 10:
		return "+1" + digits
	case len(digits) >= 11 && strings.HasPrefix(digits, "1"):
		return "+" + digits
	case strings.HasPrefix(strings.TrimSpace(phone), "+"):
		return "+" + digits
	default:
		return "+" + digits
	}
}

var unsafeNameRe = regexp.MustCompile(`[\\/*?:"<>|]`)

// SafeName makes a contact or group name usable as a directory name.
func SafeName(name string) string {
	return unsafeNameRe.ReplaceAllString(name, "_")
}

var (
	groupSuffixRe = regexp.MustCompile(` - \d+$`)
	bareNumberRe  = regexp.MustCompile(`^\+?\d+$`)
	singlePhoneRe = regexp.MustCompile(`^\+?\d{10,15}$`)
	singleEmailRe = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)
	shortCodeRe   = regexp.MustCompile(`^\d{3,6}$`)
)

// IsGroupChatFilename classifies an export filename as a group chat rather
// than an individual conversation. Uncertain names default to group.
func IsGroupChatFilename(filename string) bool {
	name := strings.TrimSuffix(filename, ".txt")

	if groupSuffixRe.MatchString(name) {
		return true
	}
	if strings.Contains(name, ",") {
		return true
	}
	if strings.Contains(name, " ") && !bareNumberRe.MatchString(name) && !strings.Contains(name, "@") {
		return true
	}

	if singlePhoneRe.MatchString(name) {
		return false
	}
	if singleEmailRe.MatchString(name) {
		return false
	}
	if shortCodeRe.MatchString(name) {
		return false
	}
	return true
}

// FirstName returns the contact's bare first name, or "" when the display
// name is a single token (no separate first-name substitution needed then).
func FirstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) < 2 {
		return ""
	}
	if len(fields[0]) < 2 {
		return ""
	}
	return fields[0]
}
