package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gorilla/mux"
	"github.com/openHPI/customers/internal/customer"
	"github.com/openHPI/customers/pkg/dto"
	"github.com/openHPI/customers/pkg/logging"
	"github.com/openHPI/customers/pkg/monitoring"
	"github.com/openHPI/customers/pkg/storage"
)

const (
	NamePath                     = "/name"
	CustomerIDKey                = "id"
	CustomerNameKey              = "name"
	listCustomersRouteName       = "listCustomers"
	getCustomerRouteName         = "getCustomer"
	findCustomersByNameRouteName = "findCustomersByName"
	createCustomerRouteName      = "createCustomer"
	deleteCustomerRouteName      = "deleteCustomer"
)

type customerIDContextKey struct{}

// CustomerController exposes the customer manager as HAL resources.
type CustomerController struct {
	manager customer.Manager
	links   *linkBuilder
}

// ConfigureRoutes configures a given router with the customer routes of our API.
func (c *CustomerController) ConfigureRoutes(router *mux.Router) {
	c.links = &linkBuilder{router: router}
	customersRouter := router.PathPrefix(CustomersPath).Subrouter()
	customersRouter.HandleFunc("", c.list).Methods(http.MethodGet).Name(listCustomersRouteName)
	customersRouter.HandleFunc("", c.create).Methods(http.MethodPost).Name(createCustomerRouteName)
	customersRouter.HandleFunc(fmt.Sprintf("%s/{%s}", NamePath, CustomerNameKey), c.findByName).
		Methods(http.MethodGet).Name(findCustomersByNameRouteName)

	customerRouter := customersRouter.PathPrefix(fmt.Sprintf("/{%s:[0-9]+}", CustomerIDKey)).Subrouter()
	customerRouter.Use(c.customerIDMiddleware)
	customerRouter.HandleFunc("", c.get).Methods(http.MethodGet).Name(getCustomerRouteName)
	customerRouter.HandleFunc("", c.delete).Methods(http.MethodDelete).Name(deleteCustomerRouteName)
}

// list handles the list customers route.
// It responds with all customers and links to the customer routes.
func (c *CustomerController) list(writer http.ResponseWriter, request *http.Request) {
	var customers []*customer.Customer
	logging.StartSpan(request.Context(), "api.customer.list", "List Customers", func(_ context.Context, _ *sentry.Span) {
		customers = c.manager.FindAll()
	})

	collection, err := c.collection(request, customers)
	if err != nil {
		c.writeLinkError(writer, request, err)
		return
	}
	self, err := c.links.link(request, listCustomersRouteName)
	if err != nil {
		c.writeLinkError(writer, request, err)
		return
	}
	byID, err := c.links.templatedLink(request, getCustomerRouteName)
	if err != nil {
		c.writeLinkError(writer, request, err)
		return
	}
	collection.Links[dto.RelCustomersByID] = byID
	collection.Links[dto.RelSelf] = self

	sendHAL(request.Context(), writer, collection, http.StatusOK)
}

// get handles the get customer route.
// It responds with the customer or with an empty 404 if there is no such customer.
func (c *CustomerController) get(writer http.ResponseWriter, request *http.Request) {
	id, _ := customerIDFromContext(request.Context())

	var (
		target *customer.Customer
		err    error
	)
	logging.StartSpan(request.Context(), "api.customer.get", "Get Customer", func(_ context.Context, _ *sentry.Span) {
		target, err = c.manager.FindByID(id)
	})
	if errors.Is(err, customer.ErrCustomerNotFound) {
		writer.WriteHeader(http.StatusNotFound)
		return
	} else if err != nil {
		writeInternalServerError(request.Context(), writer, err, dto.ErrorUnknown)
		return
	}

	resource, err := c.resource(request, target)
	if err != nil {
		c.writeLinkError(writer, request, err)
		return
	}
	sendHAL(request.Context(), writer, resource, http.StatusOK)
}

// findByName handles the find customers by name route.
// It responds with all customers having exactly the passed name, possibly none.
func (c *CustomerController) findByName(writer http.ResponseWriter, request *http.Request) {
	name := mux.Vars(request)[CustomerNameKey]
	monitoring.AddCustomerNameLength(request, name)

	var customers []*customer.Customer
	logging.StartSpan(request.Context(), "api.customer.find", "Find Customers By Name",
		func(_ context.Context, _ *sentry.Span) {
			customers = c.manager.FindAllWithName(name)
		})

	collection, err := c.collection(request, customers)
	if err != nil {
		c.writeLinkError(writer, request, err)
		return
	}
	all, err := c.links.link(request, listCustomersRouteName)
	if err != nil {
		c.writeLinkError(writer, request, err)
		return
	}
	collection.Links[dto.RelFindAllCustomers] = all

	sendHAL(request.Context(), writer, collection, http.StatusOK)
}

// create handles the create customer route.
// It stores the customer and responds with its location.
func (c *CustomerController) create(writer http.ResponseWriter, request *http.Request) {
	customerRequest := new(dto.CustomerRequest)
	if err := parseJSONRequestBody(writer, request, customerRequest); err != nil {
		log.WithContext(request.Context()).WithError(err).Debug("Invalid customer request")
		return
	}

	var (
		created *customer.Customer
		err     error
	)
	logging.StartSpan(request.Context(), "api.customer.create", "Create Customer", func(_ context.Context, _ *sentry.Span) {
		created, err = c.manager.Save(customer.New(customerRequest.Name, customerRequest.Email))
	})
	if errors.Is(err, storage.ErrInvalidArgument) {
		writeClientError(request.Context(), writer, err, http.StatusBadRequest)
		return
	} else if err != nil {
		writeInternalServerError(request.Context(), writer, err, dto.ErrorUnknown)
		return
	}
	monitoring.AddCustomerID(request, created.ID().ToString())

	self, err := c.links.link(request, getCustomerRouteName, CustomerIDKey, created.ID().ToString())
	if err != nil {
		c.writeLinkError(writer, request, err)
		return
	}
	writer.Header().Set("Location", self.Href)
	writer.WriteHeader(http.StatusCreated)
}

// delete handles the delete customer route.
// An unknown customer is answered with the plain error message.
func (c *CustomerController) delete(writer http.ResponseWriter, request *http.Request) {
	id, _ := customerIDFromContext(request.Context())

	var err error
	logging.StartSpan(request.Context(), "api.customer.delete", "Delete Customer", func(_ context.Context, _ *sentry.Span) {
		err = c.manager.DeleteByID(id)
	})
	if errors.Is(err, customer.ErrCustomerNotFound) {
		writePlainError(request.Context(), writer, err, http.StatusNotFound)
		return
	} else if err != nil {
		writeInternalServerError(request.Context(), writer, err, dto.ErrorUnknown)
		return
	}

	writer.WriteHeader(http.StatusNoContent)
}

// The customerIDMiddleware parses the id of routes containing it
// and adds it to the context of the request.
func (c *CustomerController) customerIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		rawID := mux.Vars(request)[CustomerIDKey]
		id, err := storage.NewID(rawID)
		if err != nil {
			writeClientError(request.Context(), writer, fmt.Errorf("invalid customer id: %w", err), http.StatusBadRequest)
			return
		}

		ctx := context.WithValue(request.Context(), customerIDContextKey{}, id)
		ctx = context.WithValue(ctx, dto.ContextKey(dto.KeyCustomerID), id.ToString())
		requestWithID := request.WithContext(ctx)
		monitoring.AddCustomerID(requestWithID, id.ToString())

		next.ServeHTTP(writer, requestWithID)
	})
}

func customerIDFromContext(ctx context.Context) (storage.ID, bool) {
	id, ok := ctx.Value(customerIDContextKey{}).(storage.ID)
	return id, ok
}

// resource wraps the customer with its self link.
func (c *CustomerController) resource(request *http.Request, target *customer.Customer) (*dto.CustomerResource, error) {
	self, err := c.links.link(request, getCustomerRouteName, CustomerIDKey, target.ID().ToString())
	if err != nil {
		return nil, err
	}
	return &dto.CustomerResource{
		ID:    int64(target.ID()),
		Name:  target.Name,
		Email: target.Email,
		Links: dto.Links{dto.RelSelf: self},
	}, nil
}

// collection wraps every customer with its self link. The collection links are left to the caller.
func (c *CustomerController) collection(request *http.Request, customers []*customer.Customer) (
	*dto.CustomerCollection, error) {
	resources := make([]*dto.CustomerResource, 0, len(customers))
	for _, target := range customers {
		resource, err := c.resource(request, target)
		if err != nil {
			return nil, err
		}
		resources = append(resources, resource)
	}
	return &dto.CustomerCollection{
		Embedded: dto.CustomerCollectionEmbedded{Customers: resources},
		Links:    dto.Links{},
	}, nil
}

func (c *CustomerController) writeLinkError(writer http.ResponseWriter, request *http.Request, err error) {
	log.WithContext(request.Context()).WithError(err).Error("Could not build customer links")
	writeInternalServerError(request.Context(), writer, err, dto.ErrorLinkConstruction)
}
