package privacy

import (
	"fmt"
	"regexp"
	"strings"
)

// Mapping is the per-contact restoration record written alongside each
// anonymized conversation file. Every placeholder the session emitted maps
// back to its original value, except credentials: those map to a redaction
// note and the secret itself is gone for good.
type Mapping struct {
	Name              string            `json:"name"`
	PersonID          int               `json:"person_id"`
	PersonPlaceholder string            `json:"person_placeholder"`
	Phones            map[string]string `json:"phones"`
	Emails            map[string]string `json:"emails"`
	Organizations     map[string]string `json:"organizations"`
	SocialMedia       map[string]string `json:"social_media"`
	Addresses         map[string]string `json:"addresses"`
	Credentials       map[string]string `json:"credentials"`
}

// Session anonymizes one contact's output against a shared run registry.
// Phone and email placeholders are indexed per contact in first-seen order;
// person, organization, social and address ids come from the registry so
// they stay stable run-wide.
type Session struct {
	reg      *Registry
	name     string
	personID int
	mapping  *Mapping

	nameRe      *regexp.Regexp
	firstNameRe *regexp.Regexp

	// Insertion-ordered views of the mapping tables. Redact walks these,
	// not the maps, so replacement order is deterministic when one known
	// value is a substring of another.
	orgOrder   []replacement
	phoneOrder []replacement
	emailOrder []replacement
}

type replacement struct {
	placeholder string
	value       string
}

// NewSession registers the contact and prepares the name-substitution
// patterns. The full name matches case-insensitively anywhere; the first
// name only as a whole word, and only when it is a real token of its own
// (multi-word name, at least two characters).
func NewSession(reg *Registry, contactName string) *Session {
	id := reg.LookupOrCreate(KindPerson, contactName)
	s := &Session{
		reg:      reg,
		name:     contactName,
		personID: id,
		mapping: &Mapping{
			Name:              contactName,
			PersonID:          id,
			PersonPlaceholder: PersonPlaceholder(id),
			Phones:            make(map[string]string),
			Emails:            make(map[string]string),
			Organizations:     make(map[string]string),
			SocialMedia:       make(map[string]string),
			Addresses:         make(map[string]string),
			Credentials:       make(map[string]string),
		},
	}
	if fields := strings.Fields(contactName); len(fields) > 0 {
		s.nameRe = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(contactName))
		first := fields[0]
		if first != contactName && len(first) > 1 {
			s.firstNameRe = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(first) + `\b`)
		}
	}
	return s
}

// PersonID returns the run-wide id assigned to this contact.
func (s *Session) PersonID() int { return s.personID }

// Placeholder returns the contact's person placeholder.
func (s *Session) Placeholder() string { return PersonPlaceholder(s.personID) }

// Mapping returns the restoration record accumulated so far.
func (s *Session) Mapping() *Mapping { return s.mapping }

// PhoneFor returns the placeholder for a phone number, minting the next
// index the first time the number is seen in this session.
func (s *Session) PhoneFor(phone string) string {
	for _, r := range s.phoneOrder {
		if r.value == phone {
			return r.placeholder
		}
	}
	placeholder := PhonePlaceholder(s.personID, len(s.phoneOrder)+1)
	s.mapping.Phones[placeholder] = phone
	s.phoneOrder = append(s.phoneOrder, replacement{placeholder, phone})
	return placeholder
}

// EmailFor returns the placeholder for an email address, minting the next
// index on first sight.
func (s *Session) EmailFor(email string) string {
	for _, r := range s.emailOrder {
		if r.value == email {
			return r.placeholder
		}
	}
	placeholder := EmailPlaceholder(s.personID, len(s.emailOrder)+1)
	s.mapping.Emails[placeholder] = email
	s.emailOrder = append(s.emailOrder, replacement{placeholder, email})
	return placeholder
}

// OrganizationFor returns the run-wide placeholder for an organization name,
// recording it in this contact's mapping. Empty names pass through.
func (s *Session) OrganizationFor(org string) string {
	if org == "" {
		return ""
	}
	placeholder := OrganizationPlaceholder(s.reg.LookupOrCreate(KindOrganization, org))
	if _, seen := s.mapping.Organizations[placeholder]; !seen {
		s.orgOrder = append(s.orgOrder, replacement{placeholder, org})
	}
	s.mapping.Organizations[placeholder] = org
	return placeholder
}

// AddressFor records a physical address in the mapping and returns its
// placeholder. Callers drop addresses from the anonymized output entirely;
// the placeholder only anchors the mapping entry.
func (s *Session) AddressFor(addr string) string {
	if addr == "" {
		return ""
	}
	placeholder := AddressPlaceholder(s.reg.LookupOrCreate(KindAddress, addr))
	s.mapping.Addresses[placeholder] = addr
	return placeholder
}

func (s *Session) socialFor(handle string) string {
	return SocialPlaceholder(s.reg.LookupOrCreate(KindSocial, handle))
}

// Redact rewrites one message body. Known values first (contact name, first
// name, organizations, phones, emails already in the mapping), then the
// pattern scan for anything the contact card didn't list. New phones and
// emails found here extend the mapping with the next free index, so the
// mapping round-trips everything except credentials.
func (s *Session) Redact(content string) string {
	if s.nameRe != nil {
		content = s.nameRe.ReplaceAllString(content, s.Placeholder())
	}
	if s.firstNameRe != nil {
		content = s.firstNameRe.ReplaceAllString(content, s.Placeholder())
	}

	for _, r := range s.orgOrder {
		if len(r.value) > 2 {
			content = strings.ReplaceAll(content, r.value, r.placeholder)
		}
	}
	for _, r := range s.phoneOrder {
		content = strings.ReplaceAll(content, r.value, r.placeholder)
	}
	for _, r := range s.emailOrder {
		content = strings.ReplaceAll(content, r.value, r.placeholder)
	}

	// Emails go before phones so an address with a digit-run local part is
	// mapped whole instead of being shredded into a phone match.
	for _, match := range emailRe.FindAllString(content, -1) {
		content = strings.ReplaceAll(content, match, s.EmailFor(match))
	}

	// Partial emails like user@gmail with the TLD cut off. Skip anything
	// contained in an email already mapped above.
	for _, match := range partialEmailRe.FindAllString(content, -1) {
		if s.knownEmailSubstring(match) {
			continue
		}
		content = strings.ReplaceAll(content, match, s.EmailFor(match))
	}

	// Phones the mapping doesn't know about yet. A match that is a
	// substring of a known number (bare digits of a +1 number, say) is
	// already covered and must not mint a second placeholder.
	for _, match := range phoneRe.FindAllString(content, -1) {
		if s.knownPhoneSubstring(match) {
			continue
		}
		content = strings.ReplaceAll(content, match, s.PhoneFor(match))
	}

	for _, re := range socialPatterns {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			fullText, handle := m[0], m[1]
			placeholder := s.socialFor(handle)
			s.mapping.SocialMedia[placeholder] = fullText
			content = strings.ReplaceAll(content, fullText, placeholder)
		}
	}

	for _, re := range usernameContextPatterns {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			fullText, username := m[0], m[1]
			if username == "" {
				continue
			}
			placeholder := s.socialFor(username)
			s.mapping.SocialMedia[placeholder] = username
			rewritten := strings.Replace(fullText, username, placeholder, 1)
			content = strings.ReplaceAll(content, fullText, rewritten)
		}
	}

	for _, re := range passwordPatterns {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			secret := m[1]
			key := fmt.Sprintf("%s_%d", CredentialPlaceholder, len(s.mapping.Credentials)+1)
			s.mapping.Credentials[key] = "Password redacted for security"
			content = strings.ReplaceAll(content, secret, CredentialPlaceholder)
		}
	}

	return content
}

func (s *Session) knownPhoneSubstring(match string) bool {
	for _, phone := range s.mapping.Phones {
		if strings.Contains(phone, match) {
			return true
		}
	}
	return false
}

func (s *Session) knownEmailSubstring(match string) bool {
	for _, email := range s.mapping.Emails {
		if strings.Contains(email, match) {
			return true
		}
	}
	return false
}

// GlobalMappings is the run-level view of the shared registry, written once
// into the master privacy mapping artifact.
type GlobalMappings struct {
	Persons       map[string]int `json:"global_person_mapping"`
	Organizations map[string]int `json:"global_organization_mapping"`
	SocialMedia   map[string]int `json:"global_social_media_mapping"`
	Addresses     map[string]int `json:"global_address_mapping"`
}

// GlobalMappings snapshots every run-wide table.
func (r *Registry) GlobalMappings() GlobalMappings {
	return GlobalMappings{
		Persons:       r.Snapshot(KindPerson),
		Organizations: r.Snapshot(KindOrganization),
		SocialMedia:   r.Snapshot(KindSocial),
		Addresses:     r.Snapshot(KindAddress),
	}
}
