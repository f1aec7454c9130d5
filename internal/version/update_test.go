package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckLatest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"latest": "2.1.0"}`))
	}))
	defer server.Close()

	latest, err := CheckLatest(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "2.1.0", latest)
}

func TestCheckLatestNonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := CheckLatest(context.Background(), server.URL)
	require.Error(t, err)

	var updateErr *UpdateCheckError
	require.ErrorAs(t, err, &updateErr)
	assert.Equal(t, http.StatusNotFound, updateErr.Status)
}

func TestCheckLatestMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	_, err := CheckLatest(context.Background(), server.URL)
	require.Error(t, err)
}

func TestUpdateAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"latest": "1.6.0"}`))
	}))
	defer server.Close()

	latest, outOfDate, err := UpdateAvailable(context.Background(), server.URL, "1.5.0")
	require.NoError(t, err)
	assert.Equal(t, "1.6.0", latest)
	assert.True(t, outOfDate)

	_, outOfDate, err = UpdateAvailable(context.Background(), server.URL, "1.6.0")
	require.NoError(t, err)
	assert.False(t, outOfDate)

	_, outOfDate, err = UpdateAvailable(context.Background(), server.URL, "2.0.0")
	require.NoError(t, err)
	assert.False(t, outOfDate)
}

func TestUpdateAvailableInvalidCurrentVersion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"latest": "1.6.0"}`))
	}))
	defer server.Close()

	latest, _, err := UpdateAvailable(context.Background(), server.URL, "dev")
	require.Error(t, err)
	assert.Equal(t, "1.6.0", latest)

	var invalid *InvalidVersionError
	assert.ErrorAs(t, err, &invalid)
}
