package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/openHPI/customers/pkg/dto"
	"github.com/openHPI/customers/pkg/logging"
)

// RequestIDHeader carries the id of a request. Clients may set it, otherwise it is generated.
const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware stores the request id in the request context and echoes it in the response.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		requestID := logging.RemoveNewlineSymbol(request.Header.Get(RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		writer.Header().Set(RequestIDHeader, requestID)

		ctx := context.WithValue(request.Context(), dto.ContextKey(dto.KeyRequestID), requestID)
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}
