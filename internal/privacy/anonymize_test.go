package privacy

import (
	"reflect"
	"strings"
	"testing"
)

func TestRegistry_StableIDs(t *testing.T) {
	reg := NewRegistry()

	a := reg.LookupOrCreate(KindPerson, "Alex Chen")
	b := reg.LookupOrCreate(KindPerson, "Sam Lee")
	again := reg.LookupOrCreate(KindPerson, "Alex Chen")

	if a != 1 || b != 2 {
		t.Fatalf("ids a=%d b=%d", a, b)
	}
	if again != a {
		t.Fatalf("repeat lookup changed id: %d != %d", again, a)
	}

	// Counters are per kind: the first organization is 1, not 3.
	if got := reg.LookupOrCreate(KindOrganization, "Acme Corp"); got != 1 {
		t.Fatalf("first organization id=%d", got)
	}
}

func TestRegistry_SharedAcrossSessions(t *testing.T) {
	reg := NewRegistry()
	s1 := NewSession(reg, "Alex Chen")
	s2 := NewSession(reg, "Sam Lee")

	org1 := s1.OrganizationFor("Acme Corp")
	org2 := s2.OrganizationFor("Acme Corp")

	if org1 != org2 {
		t.Fatalf("same organization got different placeholders: %q vs %q", org1, org2)
	}
	if s1.Placeholder() == s2.Placeholder() {
		t.Fatal("distinct contacts share a person placeholder")
	}
}

func TestSession_PhoneAndEmailIndexing(t *testing.T) {
	reg := NewRegistry()
	s := NewSession(reg, "Alex Chen")

	p1 := s.PhoneFor("+15551234567")
	p2 := s.PhoneFor("+15559876543")
	p1again := s.PhoneFor("+15551234567")

	if p1 != "[[PHONE_1_1]]" || p2 != "[[PHONE_1_2]]" {
		t.Fatalf("p1=%q p2=%q", p1, p2)
	}
	if p1again != p1 {
		t.Fatalf("repeat phone got new placeholder: %q", p1again)
	}

	e1 := s.EmailFor("alex@example.com")
	if e1 != "[[EMAIL_1_1]]" {
		t.Fatalf("e1=%q", e1)
	}

	m := s.Mapping()
	if m.Phones[p1] != "+15551234567" || m.Emails[e1] != "alex@example.com" {
		t.Fatalf("mapping round trip broken: %+v", m)
	}
}

func TestRedact_ContactAndFirstName(t *testing.T) {
	reg := NewRegistry()
	s := NewSession(reg, "Alex Chen")

	got := s.Redact("told alex chen about it, then Alex agreed")
	want := s.Placeholder()
	if strings.Contains(strings.ToLower(got), "alex") {
		t.Fatalf("name leaked: %q", got)
	}
	if !strings.Contains(got, want) {
		t.Fatalf("placeholder missing: %q", got)
	}
}

func TestRedact_FirstNameNotSubstring(t *testing.T) {
	reg := NewRegistry()
	s := NewSession(reg, "Sam Lee")

	// "Sam" must only match as a whole word.
	got := s.Redact("the samples arrived today")
	if got != "the samples arrived today" {
		t.Fatalf("got %q", got)
	}
}

func TestRedact_DetectsNewPhoneAndEmail(t *testing.T) {
	reg := NewRegistry()
	s := NewSession(reg, "Alex Chen")

	got := s.Redact("call me at 555-123-4567 or mail sam@example.com")
	if strings.Contains(got, "555-123-4567") || strings.Contains(got, "sam@example.com") {
		t.Fatalf("sensitive values leaked: %q", got)
	}
	if !strings.Contains(got, "[[PHONE_1_1]]") || !strings.Contains(got, "[[EMAIL_1_1]]") {
		t.Fatalf("placeholders missing: %q", got)
	}

	m := s.Mapping()
	if m.Phones["[[PHONE_1_1]]"] != "555-123-4567" {
		t.Fatalf("phone mapping=%v", m.Phones)
	}
	if m.Emails["[[EMAIL_1_1]]"] != "sam@example.com" {
		t.Fatalf("email mapping=%v", m.Emails)
	}
}

func TestRedact_KnownPhoneSubstringNotRemapped(t *testing.T) {
	reg := NewRegistry()
	s := NewSession(reg, "Alex Chen")
	known := s.PhoneFor("+15551234567")

	got := s.Redact("my number is +15551234567 remember")
	if !strings.Contains(got, known) {
		t.Fatalf("known phone not replaced with existing placeholder: %q", got)
	}
	if len(s.Mapping().Phones) != 1 {
		t.Fatalf("extra phone placeholder minted: %v", s.Mapping().Phones)
	}
}

func TestRedact_PartialEmail(t *testing.T) {
	reg := NewRegistry()
	s := NewSession(reg, "Alex Chen")

	got := s.Redact("reach me on chen99@gmail sometime")
	if strings.Contains(got, "chen99@gmail") {
		t.Fatalf("partial email leaked: %q", got)
	}
	if !strings.Contains(got, "[[EMAIL_1_1]]") {
		t.Fatalf("placeholder missing: %q", got)
	}
}

func TestRedact_SocialProfiles(t *testing.T) {
	reg := NewRegistry()
	s := NewSession(reg, "Alex Chen")

	got := s.Redact("find me at github.com/octocat ok")
	if strings.Contains(got, "octocat") {
		t.Fatalf("handle leaked: %q", got)
	}
	if !strings.Contains(got, "[[SOCIAL_MEDIA_1]]") {
		t.Fatalf("placeholder missing: %q", got)
	}
	if s.Mapping().SocialMedia["[[SOCIAL_MEDIA_1]]"] != "github.com/octocat" {
		t.Fatalf("mapping=%v", s.Mapping().SocialMedia)
	}
}

func TestRedact_UsernameContextKeepsSentence(t *testing.T) {
	reg := NewRegistry()
	s := NewSession(reg, "Alex Chen")

	got := s.Redact("btw my github username is octocat if you need it")
	if strings.Contains(got, "octocat") {
		t.Fatalf("username leaked: %q", got)
	}
	if !strings.Contains(got, "github username is [[SOCIAL_MEDIA_1]]") {
		t.Fatalf("context not preserved: %q", got)
	}
}

func TestRedact_CredentialsNeverStored(t *testing.T) {
	reg := NewRegistry()
	s := NewSession(reg, "Alex Chen")

	got := s.Redact("the wifi password is Sesame123 ok")
	if strings.Contains(got, "Sesame123") {
		t.Fatalf("secret leaked: %q", got)
	}
	if !strings.Contains(got, CredentialPlaceholder) {
		t.Fatalf("placeholder missing: %q", got)
	}

	m := s.Mapping()
	if len(m.Credentials) != 1 {
		t.Fatalf("credentials entries=%d", len(m.Credentials))
	}
	for _, v := range m.Credentials {
		if strings.Contains(v, "Sesame123") {
			t.Fatalf("secret stored in mapping: %q", v)
		}
	}
}

func TestRedact_SameOrgSameID(t *testing.T) {
	reg := NewRegistry()
	s1 := NewSession(reg, "Alex Chen")
	s2 := NewSession(reg, "Sam Lee")

	s1.OrganizationFor("Acme Corp")
	s2.OrganizationFor("Acme Corp")

	got1 := s1.Redact("started at Acme Corp last week")
	got2 := s2.Redact("Acme Corp hired someone new")
	if !strings.Contains(got1, "[[ORGANIZATION_1]]") || !strings.Contains(got2, "[[ORGANIZATION_1]]") {
		t.Fatalf("org placeholder mismatch: %q / %q", got1, got2)
	}
}

func TestGlobalMappings(t *testing.T) {
	reg := NewRegistry()
	NewSession(reg, "Alex Chen")
	NewSession(reg, "Sam Lee")
	reg.LookupOrCreate(KindOrganization, "Acme Corp")

	g := reg.GlobalMappings()
	if g.Persons["Alex Chen"] != 1 || g.Persons["Sam Lee"] != 2 {
		t.Fatalf("persons=%v", g.Persons)
	}
	if g.Organizations["Acme Corp"] != 1 {
		t.Fatalf("organizations=%v", g.Organizations)
	}
}

func TestRedact_NumericEmailNotShredded(t *testing.T) {
	reg := NewRegistry()
	s := NewSession(reg, "Alex Chen")

	got := s.Redact("reach me at 5551234567@example.com please")
	if got != "reach me at [[EMAIL_1_1]] please" {
		t.Fatalf("got %q", got)
	}

	m := s.Mapping()
	if m.Emails["[[EMAIL_1_1]]"] != "5551234567@example.com" {
		t.Fatalf("email mapping=%v", m.Emails)
	}
	if len(m.Phones) != 0 {
		t.Errorf("numeric local part minted a phone placeholder: %v", m.Phones)
	}
	if len(m.SocialMedia) != 0 {
		t.Errorf("email remnant hit a social rule: %v", m.SocialMedia)
	}
}

func TestNewSession_BlankNameDoesNotPanic(t *testing.T) {
	reg := NewRegistry()
	s := NewSession(reg, "   ")

	if got := s.Redact("hello there friend"); got != "hello there friend" {
		t.Fatalf("got %q", got)
	}
	if s.PersonID() != 1 {
		t.Errorf("PersonID=%d", s.PersonID())
	}
}

func TestRedact_KnownValueOrderStable(t *testing.T) {
	// One known value is a substring of another; replacement must follow
	// first-seen order, not map order.
	reg := NewRegistry()
	s := NewSession(reg, "Alex Chen")
	s.OrganizationFor("Initech")
	s.OrganizationFor("Init")
	s.PhoneFor("+15551234567")

	got := s.Redact("Initech merged with Init, call +15551234567 or 555-987-6543, mail sam@example.com")
	want := "[[ORGANIZATION_1]] merged with [[ORGANIZATION_2]], call [[PHONE_1_1]] or [[PHONE_1_2]], mail [[EMAIL_1_1]]"
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestRedact_DeterministicAcrossRegistries(t *testing.T) {
	run := func() (string, *Mapping) {
		reg := NewRegistry()
		s := NewSession(reg, "Alex Chen")
		s.OrganizationFor("Initech")
		s.PhoneFor("+15551234567")
		s.EmailFor("chen@example.com")
		out := s.Redact("Alex from Initech, +15551234567 and chen@example.com, also 555-987-6543 and sam@gmail.com")
		return out, s.Mapping()
	}

	firstOut, firstMap := run()
	for i := 0; i < 5; i++ {
		out, m := run()
		if out != firstOut {
			t.Fatalf("output differs between runs: %q vs %q", out, firstOut)
		}
		if !reflect.DeepEqual(m, firstMap) {
			t.Fatalf("mapping differs between runs: %+v vs %+v", m, firstMap)
		}
	}
}
