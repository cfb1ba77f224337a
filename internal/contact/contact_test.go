package contact

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"":                     "",
		"  +1 (707) 287-4936 ": "+17072874936",
		"7072874936":           "+17072874936",
		"+17079276461":         "+17079276461",
		"17079276461":          "+17079276461",
		"+447911123456":        "+447911123456",
	}
	for in, want := range cases {
		got := NormalizePhone(in)
		if got != want {
			t.Fatalf("NormalizePhone(%q)=%q want %q", in, got, want)
		}
	}
}

func TestSafeName(t *testing.T) {
	cases := map[string]string{
		"Alex Chen":       "Alex Chen",
		`A/B: "C"?`:       "A_B_ _C__",
		"Trip <Planning>": "Trip _Planning_",
	}
	for in, want := range cases {
		if got := SafeName(in); got != want {
			t.Fatalf("SafeName(%q)=%q want %q", in, got, want)
		}
	}
}

func TestIsGroupChatFilename(t *testing.T) {
	cases := map[string]bool{
		"+15551234567.txt":     false,
		"15551234567.txt":      false,
		"alex@example.com.txt": false,
		"86753.txt":            false, // short code
		"Family Chat - 3.txt":  true,
		"Alex, Sam.txt":        true,
		"Trip Planning.txt":    true,
		"RandomName.txt":       true, // uncertain defaults to group
	}
	for in, want := range cases {
		if got := IsGroupChatFilename(in); got != want {
			t.Fatalf("IsGroupChatFilename(%q)=%v want %v", in, got, want)
		}
	}
}

func TestFirstName(t *testing.T) {
	cases := map[string]string{
		"Alex Chen":   "Alex",
		"Alex":        "",
		"J Smith":     "",
		"Mary Jo Kim": "Mary",
		"":            "",
	}
	for in, want := range cases {
		if got := FirstName(in); got != want {
			t.Fatalf("FirstName(%q)=%q want %q", in, got, want)
		}
	}
}

func TestLoadRoster(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "contacts.yaml")
	yaml := `contacts:
  - name: Alex Chen
    phones:
      - "(555) 123-4567"
      - "+15559876543"
    emails:
      - alex@example.com
    organization: Acme Corp
  - name: Sam
    phones:
      - "5551112222"
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("write roster: %v", err)
	}

	r, err := LoadRoster(path)
	if err != nil {
		t.Fatalf("LoadRoster: %v", err)
	}
	if len(r.Contacts) != 2 {
		t.Fatalf("got %d contacts, want 2", len(r.Contacts))
	}
	if r.Contacts[0].Phones[0] != "+15551234567" {
		t.Errorf("phone not normalized: %q", r.Contacts[0].Phones[0])
	}
	if r.Contacts[0].Organization != "Acme Corp" {
		t.Errorf("organization=%q", r.Contacts[0].Organization)
	}
}

func TestLoadRoster_Missing(t *testing.T) {
	if _, err := LoadRoster(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing roster")
	}
}
