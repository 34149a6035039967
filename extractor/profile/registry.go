package profile

import "strings"

type rule struct {
	tokens  []string
	profile string
}

// Registry is the set of profiles a pipeline may use, together with the
// ordered detection rules that pick one. A Registry is read-only once built;
// With returns an extended copy.
type Registry struct {
	profiles map[string]Profile
	rules    []rule
}

// Default returns the built-in bank profiles and their detection rules.
func Default() *Registry {
	r := &Registry{profiles: map[string]Profile{Generic: GenericProfile()}}
	r.add(NewBank("chase"), "chase", "jpmorgan")
	r.add(NewBank("bank_of_america"), "bank of america", "bofa")
	r.add(NewBank("wells_fargo"), "wells fargo")
	r.add(NewBank("citibank"), "citibank", "citi")
	r.add(NewBank("hsbc_bermuda"), "hsbc")
	r.add(NewBank("butterfield_bermuda"), "butterfield")
	return r
}

func (r *Registry) add(p Profile, tokens ...string) {
	r.profiles[p.Name] = p
	lowered := make([]string, len(tokens))
	for i, t := range tokens {
		lowered[i] = strings.ToLower(t)
	}
	r.rules = append(r.rules, rule{tokens: lowered, profile: p.Name})
}

// With returns a copy of r that also knows p. Its detection tokens are
// checked after every existing rule.
func (r *Registry) With(p Profile, tokens ...string) *Registry {
	c := &Registry{
		profiles: make(map[string]Profile, len(r.profiles)+1),
		rules:    append([]rule(nil), r.rules...),
	}
	for name, existing := range r.profiles {
		c.profiles[name] = existing
	}
	c.add(p, tokens...)
	return c
}

// Detect names the profile whose tokens first appear in text, checking rules
// in registration order. It returns Generic when nothing matches.
func (r *Registry) Detect(text string) string {
	lower := strings.ToLower(text)
	for _, rl := range r.rules {
		for _, token := range rl.tokens {
			if token != "" && strings.Contains(lower, token) {
				return rl.profile
			}
		}
	}
	return Generic
}

// Lookup returns the named profile, or the generic profile when the name is
// unknown.
func (r *Registry) Lookup(name string) Profile {
	if p, ok := r.profiles[name]; ok {
		return p
	}
	return r.profiles[Generic]
}

// Names lists detectable profiles in priority order, followed by Generic.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.rules)+1)
	for _, rl := range r.rules {
		names = append(names, rl.profile)
	}
	return append(names, Generic)
}
