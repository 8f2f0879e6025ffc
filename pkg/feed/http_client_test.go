package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserAgent = "essentialfeed-test"

func TestNetHTTPClientDeliversBodyAndStatusCode(t *testing.T) {
	var receivedUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedUserAgent = r.Header.Get("User-Agent")
		assert.Equal(t, http.MethodGet, r.Method)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"items": []}`))
	}))
	defer server.Close()

	result := getResult(t, NewNetHTTPClient(time.Second, 0, testUserAgent), server.URL)

	require.NoError(t, result.Err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, `{"items": []}`, string(result.Body))
	assert.Equal(t, testUserAgent, receivedUserAgent)
}

func TestNetHTTPClientDeliversNon200Responses(t *testing.T) {
	testCases := []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusServiceUnavailable}
	for _, code := range testCases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
			_, _ = w.Write([]byte("nope"))
		}))

		result := getResult(t, NewNetHTTPClient(time.Second, 0, testUserAgent), server.URL)
		server.Close()

		require.NoError(t, result.Err)
		assert.Equal(t, code, result.StatusCode)
		assert.Equal(t, "nope", string(result.Body))
	}
}

func TestNetHTTPClientDeliversErrorWhenServerIsUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	unreachableUrl := server.URL
	server.Close()

	result := getResult(t, NewNetHTTPClient(time.Second, 0, testUserAgent), unreachableUrl)

	assert.Error(t, result.Err)
}

func TestNetHTTPClientDeliversErrorOnInvalidUrl(t *testing.T) {
	result := getResult(t, NewNetHTTPClient(time.Second, 0, testUserAgent), "https:// feeds.example/")

	assert.Error(t, result.Err)
}

func TestNetHTTPClientStopsAfterTwoRedirects(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+r.URL.Path+"x", http.StatusFound)
	}))
	defer server.Close()

	result := getResult(t, NewNetHTTPClient(time.Second, 0, testUserAgent), server.URL+"/")

	assert.ErrorContains(t, result.Err, "stopped after 2 redirects")
}

func TestRemoteFeedLoaderOverNetHTTPClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": [{"id": "7e8f2c06-6c2f-4c63-9a0c-0d5a8f0a2d11", "image": "https://images.example/a.png", "location": "somewhere"}]}`))
	}))
	defer server.Close()

	loader, _ := makeRemoteFeedLoader(t, server.URL)
	loader.client = NewNetHTTPClient(time.Second, 0, testUserAgent)

	results := make(chan LoadResult, 1)
	loader.Load(context.Background(), func(result LoadResult) {
		results <- result
	})

	select {
	case result := <-results:
		require.NoError(t, result.Err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "somewhere", *result.Items[0].Location())
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the load result")
	}
}

func getResult(t *testing.T, client *NetHTTPClient, url string) HTTPClientResult {
	results := make(chan HTTPClientResult, 1)
	client.Get(context.Background(), url, func(result HTTPClientResult) {
		results <- result
	})

	select {
	case result := <-results:
		return result
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the client result")
		return HTTPClientResult{}
	}
}
