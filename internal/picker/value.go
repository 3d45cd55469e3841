package picker

// AllValue is the domain value callers use for "no specific selection"
const AllValue = "all"

// Value is the selection held by a picker: either nothing or one id
type Value struct {
	id  string
	set bool
}

// None returns the empty selection
func None() Value {
	return Value{}
}

// Selected returns a selection of id. An empty id or the literal AllValue
// yields None so the two representations can never diverge
func Selected(id string) Value {
	if id == "" || id == AllValue {
		return None()
	}
	return Value{id: id, set: true}
}

// ParseDomain converts a consumer's domain string into a Value
func ParseDomain(s string) Value {
	return Selected(s)
}

// IsSet reports whether a real id is selected
func (v Value) IsSet() bool {
	return v.set
}

// ID returns the selected id, or "" when nothing is selected
func (v Value) ID() string {
	return v.id
}

// Domain returns the consumer-facing string: the id, or AllValue
func (v Value) Domain() string {
	if !v.set {
		return AllValue
	}
	return v.id
}

// Equal compares two selections
func (v Value) Equal(other Value) bool {
	return v.set == other.set && v.id == other.id
}

func (v Value) String() string {
	if !v.set {
		return "None"
	}
	return "Selected(" + v.id + ")"
}
