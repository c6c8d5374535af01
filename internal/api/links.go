package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"

	"github.com/gorilla/mux"
	"github.com/openHPI/customers/internal/config"
	"github.com/openHPI/customers/pkg/dto"
)

var (
	ErrUnknownRoute = errors.New("unknown route")
	// pathVariablePattern matches mux variables with a pattern, e.g. {id:[0-9]+}.
	pathVariablePattern = regexp.MustCompile(`\{([^{}:]+):[^{}]+}`)
)

// linkBuilder creates absolute links to the named routes of a router.
type linkBuilder struct {
	router *mux.Router
}

// link returns the absolute URL of the named route with the passed path variables filled in.
func (b *linkBuilder) link(request *http.Request, routeName string, pairs ...string) (dto.Link, error) {
	route := b.router.Get(routeName)
	if route == nil {
		return dto.Link{}, fmt.Errorf("%w: %s", ErrUnknownRoute, routeName)
	}
	path, err := route.URLPath(pairs...)
	if err != nil {
		return dto.Link{}, fmt.Errorf("could not build link to %s: %w", routeName, err)
	}
	return dto.Link{Href: absoluteURL(request, path.EscapedPath())}, nil
}

// templatedLink returns the URI template of the named route, e.g. http://host/api/v1/customers/{id}.
func (b *linkBuilder) templatedLink(request *http.Request, routeName string) (dto.Link, error) {
	route := b.router.Get(routeName)
	if route == nil {
		return dto.Link{}, fmt.Errorf("%w: %s", ErrUnknownRoute, routeName)
	}
	template, err := route.GetPathTemplate()
	if err != nil {
		return dto.Link{}, fmt.Errorf("could not build link template to %s: %w", routeName, err)
	}
	template = pathVariablePattern.ReplaceAllString(template, "{$1}")
	return dto.Link{Href: absoluteURL(request, template), Templated: true}, nil
}

// absoluteURL prefixes the path with the scheme and host the request was sent to.
func absoluteURL(request *http.Request, path string) string {
	scheme := "http"
	if config.Config.Server.TLS.Active {
		scheme = "https"
	}
	host := request.Host
	if host == "" {
		host = config.Config.Server.URL().Host
	}
	base := url.URL{Scheme: scheme, Host: host}
	return base.String() + path
}
