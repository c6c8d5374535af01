package e2e

import (
	"net/http"
	"testing"

	"github.com/openHPI/customers/internal/api"
	"github.com/openHPI/customers/tests/helpers"
	"github.com/stretchr/testify/assert"
)

func TestHealthRoute(t *testing.T) {
	resp, err := helpers.HTTPGet(http.DefaultClient, helpers.BuildURL(api.BasePath, api.HealthPath))
	if assert.NoError(t, err) {
		assert.Equal(t, http.StatusNoContent, resp.StatusCode, "The response code should be NoContent")
		_ = resp.Body.Close()
	}
}
