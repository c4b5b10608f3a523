package directoryapp

import (
	"encoding/json"
	"time"

	"github.com/intradir/intradir/business/domain/directorybus"
)

// Person represents a directory entry returned to the client.
type Person struct {
	ID          string  `json:"id"`
	Login       string  `json:"login"`
	Email       string  `json:"email"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	DisplayName string  `json:"displayName"`
	Title       *string `json:"title,omitempty"`
	Department  *string `json:"department,omitempty"`
	MobilePhone *string `json:"mobilePhone,omitempty"`
	Status      string  `json:"status"`
	DateUpdated string  `json:"dateUpdated"`
}

// Encode implements the web.Encoder interface.
func (p Person) Encode() ([]byte, string, error) {
	data, err := json.Marshal(p)
	return data, "application/json", err
}

func toAppPerson(bus directorybus.Person) Person {
	return Person{
		ID:          bus.ID,
		Login:       bus.Login,
		Email:       bus.Email,
		FirstName:   bus.FirstName,
		LastName:    bus.LastName,
		DisplayName: bus.DisplayName,
		Title:       bus.Title,
		Department:  bus.Department,
		MobilePhone: bus.MobilePhone,
		Status:      bus.Status,
		DateUpdated: bus.UpdatedAt.Format(time.RFC3339),
	}
}

// People is an encodable list of directory entries.
type People []Person

// Encode implements the web.Encoder interface.
func (p People) Encode() ([]byte, string, error) {
	data, err := json.Marshal(p)
	return data, "application/json", err
}

func toAppPeople(people []directorybus.Person) People {
	app := make(People, len(people))
	for i, p := range people {
		app[i] = toAppPerson(p)
	}
	return app
}
