package customer

import (
	"github.com/openHPI/customers/pkg/storage"
)

// Customer is a customer record held by the Service.
// Its id is unset until the customer is saved for the first time.
type Customer struct {
	id    storage.ID
	Name  string
	Email string
}

// New creates a customer that has not been saved yet.
func New(name, email string) *Customer {
	return &Customer{Name: name, Email: email}
}

func (c *Customer) ID() storage.ID {
	return c.id
}

func (c *Customer) SetID(id storage.ID) {
	c.id = id
}

// Equal reports whether both customers hold the same id and fields.
func (c *Customer) Equal(other *Customer) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.id == other.id && c.Name == other.Name && c.Email == other.Email
}
