package verify

// Scope is an immutable binding environment for quantifier variables.
// Bind returns a child scope; the parent is never modified, so sibling
// quantifier iterations cannot observe each other's bindings by
// construction. A nil *Scope is the empty scope.
type Scope struct {
	name   string
	value  any
	parent *Scope
}

// Bind returns a child scope with one additional binding, shadowing any
// outer binding of the same name
func (s *Scope) Bind(name string, value any) *Scope {
	return &Scope{name: name, value: value, parent: s}
}

// Lookup resolves a name through the scope chain, innermost first
func (s *Scope) Lookup(name string) (any, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.name == name {
			return cur.value, true
		}
	}
	return nil, false
}
