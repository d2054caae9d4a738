package weather

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "http://provider.test/weather"

func newTestClient(t *testing.T) *Client {
	t.Helper()
	httpClient := &http.Client{}
	httpmock.ActivateNonDefault(httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return NewClient(httpClient, testBaseURL)
}

func TestClientFetchSuccess(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/Cebu",
		httpmock.NewStringResponder(http.StatusOK, `{
			"temperature": "+29 °C",
			"wind": "12 km/h",
			"description": "light rain",
			"forecast": [
				{"day": "1", "temperature": "+27 °C", "wind": "10 km/h"},
				{"day": "2", "temperature": "+28 °C", "wind": "14 km/h"},
				{"day": "3", "temperature": "+26 °C", "wind": "9 km/h"}
			]
		}`))

	snap, err := c.Fetch(context.Background(), "Cebu")
	require.NoError(t, err)
	assert.Equal(t, "+29 °C", snap.Temperature)
	assert.Equal(t, "light rain", snap.Description)
	assert.Len(t, snap.Forecast, 3)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestClientFetchRetriesWithStrippedSuffix(t *testing.T) {
	c := newTestClient(t)

	// Provider knows "Cebu" but not "Cebu City".
	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/Cebu%20City",
		httpmock.NewStringResponder(http.StatusOK, `{"temperature": ""}`))
	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/Cebu",
		httpmock.NewStringResponder(http.StatusOK, `{"temperature": "+30 °C", "description": "sunny"}`))

	snap, err := c.Fetch(context.Background(), "Cebu City")
	require.NoError(t, err)
	assert.Equal(t, "+30 °C", snap.Temperature)

	info := httpmock.GetCallCountInfo()
	assert.Equal(t, 1, info["GET "+testBaseURL+"/Cebu%20City"])
	assert.Equal(t, 1, info["GET "+testBaseURL+"/Cebu"])
}

func TestClientFetchLocationNotFound(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/Zzzznotacity%20City",
		httpmock.NewStringResponder(http.StatusOK, `{"temperature": ""}`))
	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/Zzzznotacity",
		httpmock.NewStringResponder(http.StatusOK, `{"temperature": ""}`))

	_, err := c.Fetch(context.Background(), "Zzzznotacity City")
	require.ErrorIs(t, err, ErrLocationNotFound)

	// Exactly one retry with the stripped name, no more.
	assert.Equal(t, 2, httpmock.GetTotalCallCount())
}

func TestClientFetchNoSuffixNoRetry(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/Zzzznotacity",
		httpmock.NewStringResponder(http.StatusOK, `{"temperature": ""}`))

	_, err := c.Fetch(context.Background(), "Zzzznotacity")
	require.ErrorIs(t, err, ErrLocationNotFound)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestClientFetch404StillRetriesStrippedSuffix(t *testing.T) {
	c := newTestClient(t)

	// A 404 carries no documented error schema; it counts as "no
	// temperature", not a transport failure, so the retry still fires.
	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/Cebu%20City",
		httpmock.NewStringResponder(http.StatusNotFound, `{"message": "NOT_FOUND"}`))
	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/Cebu",
		httpmock.NewStringResponder(http.StatusOK, `{"temperature": "+30 °C", "description": "sunny"}`))

	snap, err := c.Fetch(context.Background(), "Cebu City")
	require.NoError(t, err)
	assert.Equal(t, "+30 °C", snap.Temperature)
	assert.Equal(t, 2, httpmock.GetTotalCallCount())
}

func TestClientFetch404NonJSONBodyIsNotFound(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/Zzzznotacity",
		httpmock.NewStringResponder(http.StatusNotFound, `Not Found`))

	_, err := c.Fetch(context.Background(), "Zzzznotacity")
	require.ErrorIs(t, err, ErrLocationNotFound)
}

func TestClientFetchServerErrorIsFetchError(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/Cebu",
		httpmock.NewStringResponder(http.StatusInternalServerError, `boom`))

	_, err := c.Fetch(context.Background(), "Cebu")
	require.ErrorIs(t, err, ErrFetch)
}

func TestClientFetchNetworkError(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/Cebu",
		httpmock.NewErrorResponder(assert.AnError))

	_, err := c.Fetch(context.Background(), "Cebu")
	require.ErrorIs(t, err, ErrFetch)
}

func TestClientFetchParseError(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/Cebu",
		httpmock.NewStringResponder(http.StatusOK, `not json`))

	_, err := c.Fetch(context.Background(), "Cebu")
	require.ErrorIs(t, err, ErrFetch)
}
