package models

// User represents a registered user account.
//
// The authentication collaborator produces a *User for every request; nothing
// downstream has to guess whether it received a partial identity.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique).
	Email string

	// FirstName and LastName are optional display fields.
	FirstName string
	LastName  string

	// ActiveFridgeID is the fridge the user currently works in.
	// Empty when the user has not joined or selected a fridge.
	ActiveFridgeID string

	// CreatedAt is the Unix timestamp when the user account was created.
	CreatedAt int64
}

// DisplayName returns "First Last" when available, falling back to the email.
func (u *User) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}
