package dto

// CustomerRequest is the expected json structure of the request body for the create customer route.
// The id is assigned by the server.
type CustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Link is a HAL link object.
type Link struct {
	Href      string `json:"href"`
	Templated bool   `json:"templated,omitempty"`
}

// Links maps link relations to links.
type Links map[string]Link

// Link relations used by the customer resources.
const (
	RelSelf             = "self"
	RelCustomersByID    = "customersById"
	RelFindAllCustomers = "findAllCustomers"
)

// CustomerResource is the HAL representation of a single customer.
type CustomerResource struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Links Links  `json:"_links"`
}

// CustomerCollection is the HAL representation of a list of customers.
type CustomerCollection struct {
	Embedded CustomerCollectionEmbedded `json:"_embedded"`
	Links    Links                      `json:"_links"`
}

// CustomerCollectionEmbedded holds the embedded customers of a CustomerCollection.
type CustomerCollectionEmbedded struct {
	Customers []*CustomerResource `json:"customers"`
}

// Formatter mirrors the available Formatters of logrus for configuration purposes.
type Formatter string

const (
	FormatterText = "TextFormatter"
	FormatterJSON = "JSONFormatter"
)

// ContextKey is the type for keys in a request context that is used for passing data to the next handler.
type ContextKey string

// Keys to reference information (for logging or monitoring).
const (
	KeyRequestID  = "request_id"
	KeyCustomerID = "customer_id"
)

// LoggedContextKeys defines which keys will be logged if a context is passed to logrus. See ContextHook.
var LoggedContextKeys = []ContextKey{KeyRequestID, KeyCustomerID}

// ClientError is the response interface if the request is not valid.
type ClientError struct {
	Message string `json:"message"`
}

// InternalServerError is the response interface that is returned when an error occurs.
type InternalServerError struct {
	Message   string    `json:"message"`
	ErrorCode ErrorCode `json:"errorCode"`
}

// ErrorCode is the type for error codes returned together with an InternalServerError.
type ErrorCode string

const (
	ErrorLinkConstruction ErrorCode = "LINK_CONSTRUCTION"
	ErrorUnknown          ErrorCode = "UNKNOWN"
)
