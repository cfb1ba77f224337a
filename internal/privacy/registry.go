// Package privacy replaces identifying values in pipeline output with
// stable, re-identifiable placeholders and records the mapping needed to
// reverse them (credentials excepted, which are redacted for good).
package privacy

import "fmt"

// Kind partitions the identity registry. Person, organization, social and
// address ids are shared run-wide; phone and email placeholders are
// namespaced under the owning contact's person id instead (see Session).
type Kind string

const (
	KindPerson       Kind = "person"
	KindOrganization Kind = "organization"
	KindSocial       Kind = "social_media"
	KindAddress      Kind = "address"
)

// Registry assigns stable ids to natural keys for the lifetime of one run.
// The mapping is append-only: a key keeps its id forever, distinct keys never
// collide. One registry is shared across every contact in a run so the same
// organization referenced from two contacts' files gets one id.
//
// Not safe for concurrent use; the pipeline processes contacts sequentially.
// Guard LookupOrCreate externally before parallelizing.
type Registry struct {
	counters map[Kind]int
	ids      map[Kind]map[string]int
}

// NewRegistry returns an empty registry. A run creates exactly one, at start;
// there is no implicit reset.
func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[Kind]int),
		ids:      make(map[Kind]map[string]int),
	}
}

// LookupOrCreate returns the stable id for a natural key, assigning the next
// id on first sight. This is the registry's only mutating operation.
func (r *Registry) LookupOrCreate(kind Kind, naturalKey string) int {
	byKey := r.ids[kind]
	if byKey == nil {
		byKey = make(map[string]int)
		r.ids[kind] = byKey
	}
	if id, ok := byKey[naturalKey]; ok {
		return id
	}
	r.counters[kind]++
	id := r.counters[kind]
	byKey[naturalKey] = id
	return id
}

// Snapshot returns a copy of one kind's natural-key→id table for the
// run-level mapping artifact.
func (r *Registry) Snapshot(kind Kind) map[string]int {
	out := make(map[string]int, len(r.ids[kind]))
	for k, v := range r.ids[kind] {
		out[k] = v
	}
	return out
}

// Placeholder formats. The double-bracket shape survives LLM tokenization
// well and cannot occur in real message text by accident.
const CredentialPlaceholder = "[[CREDENTIALS]]"

func PersonPlaceholder(id int) string       { return fmt.Sprintf("[[PERSON_%d]]", id) }
func OrganizationPlaceholder(id int) string { return fmt.Sprintf("[[ORGANIZATION_%d]]", id) }
func SocialPlaceholder(id int) string       { return fmt.Sprintf("[[SOCIAL_MEDIA_%d]]", id) }
func AddressPlaceholder(id int) string      { return fmt.Sprintf("[[ADDRESS_%d]]", id) }

// PhonePlaceholder and EmailPlaceholder are hierarchical: scoped to the
// owning contact's person id with a first-seen position index, because the
// same raw number can mean different things in different relationships.
func PhonePlaceholder(personID, index int) string {
	return fmt.Sprintf("[[PHONE_%d_%d]]", personID, index)
}

func EmailPlaceholder(personID, index int) string {
	return fmt.Sprintf("[[EMAIL_%d_%d]]", personID, index)
}
