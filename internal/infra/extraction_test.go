package infra

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extractionServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/extract", r.URL.Path)
		f, hdr, err := r.FormFile("image")
		if assert.NoError(t, err) {
			defer f.Close()
			assert.Equal(t, "label.jpg", hdr.Filename)
			data, _ := io.ReadAll(f)
			assert.Equal(t, "jpeg-bytes", string(data))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestExtract_MapsPairs(t *testing.T) {
	srv := extractionServer(t, http.StatusOK,
		`[{"reelNumber":" R-77 ","reelWeight":212.4567},{"reelNumber":"","reelWeight":10},{"reelNumber":"R-78","reelWeight":0}]`)
	client := NewExtractionClient(srv.URL, 5*time.Second, nil)

	pairs, err := client.Extract(context.Background(), "label.jpg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "R-77", pairs[0].ReelNumber)
	assert.Equal(t, "212.457", pairs[0].ReelWeight.String())
}

func TestExtract_RejectedImageDoesNotTrip(t *testing.T) {
	srv := extractionServer(t, http.StatusUnprocessableEntity, `{"detail":"no label found"}`)
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, SuccessThreshold: 1, OpenTimeout: time.Minute})
	client := NewExtractionClient(srv.URL, 5*time.Second, cb)

	_, err := client.Extract(context.Background(), "label.jpg", strings.NewReader("jpeg-bytes"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
	assert.Equal(t, CBClosed, client.Breaker().State())
}

func TestExtract_ServerErrorsTripBreaker(t *testing.T) {
	srv := extractionServer(t, http.StatusBadGateway, `{}`)
	cb := NewCircuitBreaker(CircuitBreakerConfig{FailureThreshold: 1, SuccessThreshold: 1, OpenTimeout: time.Minute})
	client := NewExtractionClient(srv.URL, 5*time.Second, cb)

	_, err := client.Extract(context.Background(), "label.jpg", strings.NewReader("jpeg-bytes"))
	require.Error(t, err)
	assert.Equal(t, CBOpen, cb.State())

	_, err = client.Extract(context.Background(), "label.jpg", strings.NewReader("jpeg-bytes"))
	assert.ErrorIs(t, err, ErrCircuitOpen)
}
