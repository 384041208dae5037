package models

// Fridge represents a household. Members share the cost of the purchases
// logged against it.
type Fridge struct {
	// ID is the unique identifier for the fridge (UUID format).
	ID string

	// Name is the display name of the fridge (e.g., "Apartment 4B").
	Name string

	// CreatedAt is the Unix timestamp when the fridge was created.
	CreatedAt int64
}
