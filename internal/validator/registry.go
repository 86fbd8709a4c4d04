package validator

// Registry maps rule keys to Validator implementations.
type Registry struct {
	validators map[string]Validator
	ordered    []Validator
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{validators: make(map[string]Validator)}
}

// Register adds a validator. Registering the same key twice replaces the
// earlier validator but keeps its position.
func (r *Registry) Register(v Validator) {
	if _, exists := r.validators[v.RuleKey()]; !exists {
		r.ordered = append(r.ordered, v)
	} else {
		for i, existing := range r.ordered {
			if existing.RuleKey() == v.RuleKey() {
				r.ordered[i] = v
				break
			}
		}
	}
	r.validators[v.RuleKey()] = v
}

// Get returns the validator for a rule key, or nil.
func (r *Registry) Get(key string) Validator {
	return r.validators[key]
}

// All returns registered validators in registration order.
func (r *Registry) All() []Validator {
	return r.ordered
}
