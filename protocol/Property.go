package protocol

// Property is a structure defining a custom property on an element.
type Property struct {
	// Name is the name, or key, of the property.
	Name string `json:"name"`
	// Type describes how the data value should be interpreted.
	Type string `json:"type"`
	// Data is the value of the property.
	Data string `json:"data"`
	// Inheritable indicates whether descendants see this property.
	Inheritable bool `json:"inheritable"`
	// Inherited is true when the property comes from an ancestor rather than
	// the element itself.
	Inherited bool `json:"inherited"`
}
