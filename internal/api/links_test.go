package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/openHPI/customers/internal/config"
	"github.com/openHPI/customers/pkg/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLinkBuilder() *linkBuilder {
	router := mux.NewRouter()
	router.HandleFunc("/things/{id:[0-9]+}/parts/{part}", Health).Name("part")
	return &linkBuilder{router: router}
}

func TestLinkBuilder_Link(t *testing.T) {
	links := newLinkBuilder()
	request := httptest.NewRequest(http.MethodGet, "/", http.NoBody)

	link, err := links.link(request, "part", "id", "7", "part", "wheel")
	require.NoError(t, err)
	assert.Equal(t, dto.Link{Href: "http://example.com/things/7/parts/wheel"}, link)

	_, err = links.link(request, "part", "id", "seven", "part", "wheel")
	assert.Error(t, err)

	_, err = links.link(request, "unknown")
	assert.ErrorIs(t, err, ErrUnknownRoute)
}

func TestLinkBuilder_TemplatedLink(t *testing.T) {
	links := newLinkBuilder()
	request := httptest.NewRequest(http.MethodGet, "/", http.NoBody)

	link, err := links.templatedLink(request, "part")
	require.NoError(t, err)
	assert.Equal(t, dto.Link{Href: "http://example.com/things/{id}/parts/{part}", Templated: true}, link)

	_, err = links.templatedLink(request, "unknown")
	assert.ErrorIs(t, err, ErrUnknownRoute)
}

func TestAbsoluteURL(t *testing.T) {
	oldTLS := config.Config.Server.TLS.Active
	defer func() { config.Config.Server.TLS.Active = oldTLS }()

	request := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	config.Config.Server.TLS.Active = true
	assert.Equal(t, "https://example.com/a", absoluteURL(request, "/a"))

	config.Config.Server.TLS.Active = false
	request.Host = ""
	assert.Equal(t, config.Config.Server.URL().String()+"/a", absoluteURL(request, "/a"))
}
