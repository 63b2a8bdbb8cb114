package banks

// Registry holds all registered bank profiles
type Registry struct {
	profiles []*BankProfile
}

// New creates a registry with all built-in bank profiles
func New() *Registry {
	return &Registry{
		profiles: []*BankProfile{
			BML(),
			MIB(),
		},
	}
}

// Register adds a custom bank profile (for extensibility). Profiles are
// tried in registration order, so registration position matters.
func (r *Registry) Register(p *BankProfile) {
	r.profiles = append(r.profiles, p)
}

// Identify returns the first profile whose identification rule matches the
// text, together with the selected template variant. The first matching
// profile wins regardless of how specific a later profile's match would be.
func (r *Registry) Identify(text string) (*BankProfile, *Variant, bool) {
	for _, p := range r.profiles {
		if p.Matches(text) {
			return p, p.SelectVariant(text), true
		}
	}
	return nil, nil, false
}

// ListProfiles returns the names of all registered bank profiles
func (r *Registry) ListProfiles() []string {
	names := make([]string, len(r.profiles))
	for i, p := range r.profiles {
		names[i] = p.Name
	}
	return names
}
