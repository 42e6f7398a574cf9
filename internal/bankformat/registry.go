package bankformat

import (
	"strings"
)

// GenericID is the id of the fallback profile.
const GenericID = "generic"

// Registry holds profiles in registration order. Order is the only
// tie-break during detection, so register specific layouts first.
type Registry struct {
	profiles []Profile
	byID     map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[string]int)}
}

// Register appends p. Panics on duplicate id.
func (r *Registry) Register(p Profile) {
	key := strings.ToLower(p.ID)
	if _, ok := r.byID[key]; ok {
		panic("duplicate bank format: " + key)
	}
	r.byID[key] = len(r.profiles)
	r.profiles = append(r.profiles, p)
}

// Get returns the profile with the given id. The generic profile is always
// available.
func (r *Registry) Get(id string) (Profile, bool) {
	key := strings.ToLower(strings.TrimSpace(id))
	if i, ok := r.byID[key]; ok {
		return r.profiles[i], true
	}
	if key == GenericID {
		return Generic(), true
	}
	return Profile{}, false
}

// Profiles returns the registered profiles in detection order.
func (r *Registry) Profiles() []Profile {
	return append([]Profile(nil), r.profiles...)
}

// Detect returns the first profile matching headers, or the generic
// profile when none does.
func (r *Registry) Detect(headers []string) Profile {
	hs := NewHeaderSet(headers)
	for _, p := range r.profiles {
		if p.Matches(hs) {
			return p
		}
	}
	return Generic()
}

// Default returns a registry with all built-in profiles.
func Default() *Registry {
	r := NewRegistry()
	for _, p := range builtinProfiles() {
		r.Register(p)
	}
	return r
}
