package directorybus

import "time"

// Person represents a directory entry as returned by the identity
// provider. Optional profile attributes are pointers.
type Person struct {
	ID          string
	Login       string
	Email       string
	FirstName   string
	LastName    string
	DisplayName string
	Title       *string
	Department  *string
	MobilePhone *string
	Status      string
	UpdatedAt   time.Time
}
