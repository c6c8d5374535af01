package customer

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/openHPI/customers/pkg/storage"
	"github.com/openHPI/customers/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

type ServiceTestSuite struct {
	suite.Suite
	service *Service
}

func (s *ServiceTestSuite) SetupTest() {
	s.service = NewService(storage.NewLocalStorage[*Customer](storage.IDPolicyReuse))
}

func (s *ServiceTestSuite) save(name, email string) *Customer {
	c, err := s.service.Save(New(name, email))
	s.Require().NoError(err)
	return c
}

func (s *ServiceTestSuite) TestIDsAreAssignedAndReused() {
	alice := s.save(tests.DefaultCustomerName, tests.DefaultCustomerEmail)
	s.Equal(storage.ID(1), alice.ID())

	bob := s.save(tests.AnotherCustomerName, tests.AnotherCustomerEmail)
	s.Equal(storage.ID(2), bob.ID())

	s.Require().NoError(s.service.DeleteByID(bob.ID()))
	carol := s.save("Carol", "carol@example.org")
	s.Equal(storage.ID(2), carol.ID())
}

func (s *ServiceTestSuite) TestSaveNilCustomerFails() {
	c, err := s.service.Save(nil)
	s.ErrorIs(err, storage.ErrInvalidArgument)
	s.Nil(c)
}

func (s *ServiceTestSuite) TestFindByIDReturnsSavedCustomer() {
	alice := s.save(tests.DefaultCustomerName, tests.DefaultCustomerEmail)
	found, err := s.service.FindByID(alice.ID())
	s.Require().NoError(err)
	s.Same(alice, found)
}

func (s *ServiceTestSuite) TestFindByIDOfUnknownCustomer() {
	found, err := s.service.FindByID(tests.NonExistingIntegerID)
	s.Nil(found)
	s.ErrorIs(err, ErrCustomerNotFound)

	var notFound *NotFoundError
	s.Require().True(errors.As(err, &notFound))
	s.Equal(storage.ID(tests.NonExistingIntegerID), notFound.ID)
	s.Equal("Customer no : 9999 not found", err.Error())
}

func (s *ServiceTestSuite) TestFindAllOfEmptyService() {
	s.Empty(s.service.FindAll())
}

func (s *ServiceTestSuite) TestFindAllWithName() {
	alice := s.save(tests.DefaultCustomerName, tests.DefaultCustomerEmail)
	secondAlice := s.save(tests.DefaultCustomerName, "alice@example.com")
	s.save(tests.AnotherCustomerName, tests.AnotherCustomerEmail)

	s.Run("matches all customers with the name", func() {
		matches := s.service.FindAllWithName(tests.DefaultCustomerName)
		s.Len(matches, 2)
		s.Contains(matches, alice)
		s.Contains(matches, secondAlice)
	})

	s.Run("matches exactly", func() {
		s.Empty(s.service.FindAllWithName("alice"))
		s.Empty(s.service.FindAllWithName("Ali"))
	})

	s.Run("unknown name returns empty list", func() {
		matches := s.service.FindAllWithName("Nobody")
		s.NotNil(matches)
		s.Empty(matches)
	})
}

func (s *ServiceTestSuite) TestDeleteByIDOfUnknownCustomer() {
	s.save(tests.DefaultCustomerName, tests.DefaultCustomerEmail)

	err := s.service.DeleteByID(tests.NonExistingIntegerID)
	s.ErrorIs(err, ErrCustomerNotFound)
	s.Equal("Customer no : 9999 not found", err.Error())
	s.Len(s.service.FindAll(), 1)
}

func (s *ServiceTestSuite) TestSaveFailsWhenIDsAreExhausted() {
	highest := New(tests.DefaultCustomerName, tests.DefaultCustomerEmail)
	highest.SetID(math.MaxInt64)
	_, err := s.service.Save(highest)
	s.Require().NoError(err)

	c, err := s.service.Save(New(tests.AnotherCustomerName, tests.AnotherCustomerEmail))
	s.ErrorIs(err, storage.ErrIDOverflow)
	s.Nil(c)
}

func (s *ServiceTestSuite) TestDeleteRemovesEqualCustomer() {
	alice := s.save(tests.DefaultCustomerName, tests.DefaultCustomerEmail)
	bob := s.save(tests.AnotherCustomerName, tests.AnotherCustomerEmail)

	copyOfAlice := New(alice.Name, alice.Email)
	copyOfAlice.SetID(alice.ID())
	s.service.Delete(copyOfAlice)

	_, err := s.service.FindByID(alice.ID())
	s.ErrorIs(err, ErrCustomerNotFound)
	_, err = s.service.FindByID(bob.ID())
	s.NoError(err)
}

func TestCustomerEqual(t *testing.T) {
	alice := New(tests.DefaultCustomerName, tests.DefaultCustomerEmail)
	otherAlice := New(tests.DefaultCustomerName, tests.DefaultCustomerEmail)
	assert.True(t, alice.Equal(otherAlice))

	otherAlice.SetID(1)
	assert.False(t, alice.Equal(otherAlice))

	bob := New(tests.AnotherCustomerName, tests.DefaultCustomerEmail)
	assert.False(t, alice.Equal(bob))
	assert.False(t, alice.Equal(nil))

	var absent *Customer
	assert.True(t, absent.Equal(nil))
}

func TestMonitoredServiceStoresCustomers(t *testing.T) {
	service := NewMonitoredService(context.Background(), storage.IDPolicySequence, 0)
	c, err := service.Save(New(tests.DefaultCustomerName, tests.DefaultCustomerEmail))
	assert.NoError(t, err)
	assert.Equal(t, storage.ID(1), c.ID())

	assert.NoError(t, service.DeleteByID(c.ID()))
	c, err = service.Save(New(tests.AnotherCustomerName, tests.AnotherCustomerEmail))
	assert.NoError(t, err)
	assert.Equal(t, storage.ID(2), c.ID())
}
