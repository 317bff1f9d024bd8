package spawnguard

// Identity is the read-only view of a live object used for matching.
// It is derived from the object at evaluation time and never cached.
type Identity struct {
	// ShortName is the host-assigned abbreviated template name; empty when the host has none
	ShortName string `json:"shortName" yaml:"short-name"`
	// TypeName is the concrete runtime category of the object
	TypeName string `json:"typeName" yaml:"type"`
}

func (i Identity) String() string {
	if i.ShortName == "" {
		return i.TypeName
	}
	return i.ShortName + " (" + i.TypeName + ")"
}

// Object is a live world object as exposed by the host
type Object interface {
	Identity() Identity
}

// Host is the set of services the filter needs from the simulation host.
type Host interface {
	// LiveObjects returns an ordered snapshot of every object currently alive
	LiveObjects() []Object
	// Destroy removes the object from the world; destroying an object that is already gone does nothing
	Destroy(Object)
}
