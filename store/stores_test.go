package store

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/kkratossdead/mobile-renting/client"
)

// rentingBackend is an in-process stand-in for the rental API, routed the
// way the real backend routes.
type rentingBackend struct {
	router    *mux.Router
	server    *httptest.Server
	transport *client.Transport
}

func newRentingBackend(t *testing.T) *rentingBackend {
	t.Helper()

	router := mux.NewRouter()
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &rentingBackend{
		router:    router,
		server:    server,
		transport: client.NewTransport(server.URL, 0, nil, testLogger(), testTracer()),
	}
}

func (b *rentingBackend) propertyClient() *client.PropertyClient {
	return client.NewPropertyClient(b.transport, testLogger())
}

func (b *rentingBackend) imageClient() *client.ImageClient {
	return client.NewImageClient(b.transport, testLogger())
}

func (b *rentingBackend) rentalClient() *client.RentalClient {
	return client.NewRentalClient(b.transport, testLogger())
}

func (b *rentingBackend) reviewClient() *client.ReviewClient {
	return client.NewReviewClient(b.transport, testLogger())
}

func (b *rentingBackend) notificationClient() *client.NotificationClient {
	return client.NewNotificationClient(b.transport, testLogger())
}

func respondJSON(t *testing.T, w http.ResponseWriter, value interface{}) {
	t.Helper()
	require.NoError(t, json.NewEncoder(w).Encode(value))
}

func readJSON(r *http.Request, value interface{}) error {
	return json.NewDecoder(r.Body).Decode(value)
}
