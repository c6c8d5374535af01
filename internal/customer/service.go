package customer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/openHPI/customers/pkg/logging"
	"github.com/openHPI/customers/pkg/monitoring"
	"github.com/openHPI/customers/pkg/storage"
)

var (
	log                 = logging.GetLogger("customer")
	ErrCustomerNotFound = errors.New("customer not found")
)

// NotFoundError is returned for unknown customer ids.
// Its message is presented to API clients as is.
type NotFoundError struct {
	ID storage.ID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Customer no : %d not found", e.ID)
}

// Is makes NotFoundError match ErrCustomerNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrCustomerNotFound
}

// Manager provides access to the customers of the application.
type Manager interface {
	FindAll() []*Customer
	FindByID(id storage.ID) (*Customer, error)
	FindAllWithName(name string) []*Customer
	Save(c *Customer) (*Customer, error)
	Delete(c *Customer)
	DeleteByID(id storage.ID) error
}

// Service is the Manager implementation backed by a storage.Storage.
type Service struct {
	customers storage.Storage[*Customer]
}

// NewService creates a Service on top of the passed storage.
func NewService(customers storage.Storage[*Customer]) *Service {
	return &Service{customers: customers}
}

// NewMonitoredService creates a Service whose storage writes every change to the customers measurement.
// If interval is not zero, the number of customers is additionally reported periodically.
func NewMonitoredService(ctx context.Context, policy storage.IDPolicy, interval time.Duration) *Service {
	return NewService(storage.NewMonitoredLocalStorage[*Customer](
		ctx, policy, monitoring.MeasurementCustomers, monitorCustomers, interval))
}

// monitorCustomers keeps the Prometheus gauge in line with the monitored storage.
func monitorCustomers(p *write.Point, c *Customer, eventType storage.EventType) {
	for _, field := range p.FieldList() {
		if count, ok := field.Value.(uint64); ok && field.Key == "count" {
			monitoring.StoredCustomers.Set(float64(count))
		}
	}
	if c != nil {
		p.AddTag(monitoring.InfluxKeyCustomerID, c.ID().ToString())
	}
	log.WithField("event_type", eventType).Trace("Monitored customer storage change")
}

// FindAll returns all customers in no particular order.
func (s *Service) FindAll() []*Customer {
	return s.customers.FindAll()
}

// FindByID returns the customer with the passed id or an error wrapping ErrCustomerNotFound.
func (s *Service) FindByID(id storage.ID) (*Customer, error) {
	c, ok := s.customers.FindByID(id)
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return c, nil
}

// FindAllWithName returns all customers whose name matches exactly.
func (s *Service) FindAllWithName(name string) []*Customer {
	matches := make([]*Customer, 0)
	for _, c := range s.customers.FindAll() {
		if c.Name == name {
			matches = append(matches, c)
		}
	}
	return matches
}

// Save stores the customer and assigns an id if it has none.
func (s *Service) Save(c *Customer) (*Customer, error) {
	saved, err := s.customers.Save(c)
	if err != nil {
		return nil, fmt.Errorf("could not save customer: %w", err)
	}
	log.WithField("id", saved.ID()).Debug("Saved customer")
	return saved, nil
}

// Delete removes all customers equal to the passed one.
func (s *Service) Delete(c *Customer) {
	s.customers.Delete(c)
}

// DeleteByID removes the customer with the passed id.
// It returns a NotFoundError if no such customer exists.
func (s *Service) DeleteByID(id storage.ID) error {
	if !s.customers.DeleteByID(id) {
		return &NotFoundError{ID: id}
	}
	log.WithField("id", id).Debug("Deleted customer")
	return nil
}
