package types

// Attribute is a string-typed identifier referencing an attribute slot.
// Names are case-sensitive; insertion order carries no meaning (spec.md §3).
type Attribute string

func NewAttribute(name string) Attribute { return Attribute(name) }

func (a Attribute) String() string { return string(a) }
