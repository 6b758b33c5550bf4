package dynadot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/nametracker/nametracker/config"
	"github.com/nametracker/nametracker/internal/enum"
	er "github.com/nametracker/nametracker/internal/errors"
)

func newTestService(serverUrl string) *dynadotService {
	return &dynadotService{
		cfg: &config.DynadotConfig{
			Url:            serverUrl,
			ApiKey:         "test-key",
			BatchCap:       50,
			MaxAttempts:    3,
			RetryWait:      5 * time.Second,
			RequestTimeout: 5 * time.Second,
		},
		httpClient: http.DefaultClient,
		wait:       func(time.Duration) {},
	}
}

func TestCheckBulkAvailability_MapsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "search", r.URL.Query().Get("command"))
		require.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.Equal(t, "alpha.com,beta.io,gamma.ai", r.URL.Query().Get("domain"))
		w.Write([]byte(`{"SearchResult":[
			{"domain":"alpha.com","available":true},
			{"domain":"beta.io","available":false},
			{"domain":"gamma.ai","available":null}
		]}`))
	}))
	defer server.Close()

	service := newTestService(server.URL)
	result, err := service.CheckBulkAvailability(context.Background(), []string{"alpha.com", "beta.io", "gamma.ai"})
	require.NoError(t, err)
	require.Equal(t, enum.AvailabilityAvailable, result["alpha.com"])
	require.Equal(t, enum.AvailabilityTaken, result["beta.io"])
	require.Equal(t, enum.AvailabilityUnknown, result["gamma.ai"])
}

func TestCheckBulkAvailability_MissingDomainsAreUnknown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"SearchResult":[{"domain":"alpha.com","available":true}]}`))
	}))
	defer server.Close()

	service := newTestService(server.URL)
	result, err := service.CheckBulkAvailability(context.Background(), []string{"alpha.com", "dropped.io"})
	require.NoError(t, err)
	require.Equal(t, enum.AvailabilityAvailable, result["alpha.com"])
	require.Equal(t, enum.AvailabilityUnknown, result["dropped.io"])
}

func TestCheckBulkAvailability_BatchTooLarge(t *testing.T) {
	service := newTestService("http://localhost:1")
	domains := make([]string, 51)
	for i := range domains {
		domains[i] = "name.com"
	}

	_, err := service.CheckBulkAvailability(context.Background(), domains)
	require.ErrorIs(t, err, er.ErrBatchTooLarge)
}

func TestCheckBulkAvailability_RetriesThenExhausts(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	var waits int
	service := newTestService(server.URL)
	service.wait = func(d time.Duration) {
		waits++
		require.Equal(t, 5*time.Second, d)
	}

	_, err := service.CheckBulkAvailability(context.Background(), []string{"alpha.com"})
	require.True(t, errors.Is(err, er.ErrProviderUnavailable))
	require.EqualValues(t, 3, calls.Load())
	require.Equal(t, 2, waits)
}

func TestCheckBulkAvailability_RecoversMidRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"SearchResult":[{"domain":"alpha.com","available":true}]}`))
	}))
	defer server.Close()

	service := newTestService(server.URL)
	result, err := service.CheckBulkAvailability(context.Background(), []string{"alpha.com"})
	require.NoError(t, err)
	require.Equal(t, enum.AvailabilityAvailable, result["alpha.com"])
	require.EqualValues(t, 3, calls.Load())
}

func TestCheckBulkAvailability_ClientErrorDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	service := newTestService(server.URL)
	_, err := service.CheckBulkAvailability(context.Background(), []string{"alpha.com"})
	require.Error(t, err)
	require.False(t, errors.Is(err, er.ErrProviderUnavailable))
	require.EqualValues(t, 1, calls.Load())
}
