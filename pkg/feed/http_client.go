package feed

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// HTTPClientResult is the outcome of a single fetch. Err is set when the
// request failed at the transport level, otherwise Body and StatusCode hold
// the response.
type HTTPClientResult struct {
	Body       []byte
	StatusCode int
	Err        error
}

// HTTPClient fetches a URL and invokes completion once with the result.
type HTTPClient interface {
	Get(ctx context.Context, url string, completion func(HTTPClientResult))
}

const maxRedirects = 2

type NetHTTPClient struct {
	client    *retryablehttp.Client
	userAgent string
}

var _ HTTPClient = &NetHTTPClient{}

func NewNetHTTPClient(timeout time.Duration, retryMax int, userAgent string) *NetHTTPClient {
	client := retryablehttp.NewClient()
	client.RetryMax = retryMax
	client.Logger = log.Default()
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.HTTPClient.Timeout = timeout
	client.HTTPClient.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return errors.New("stopped after 2 redirects")
		}
		return nil
	}

	return &NetHTTPClient{client: client, userAgent: userAgent}
}

func (c *NetHTTPClient) Get(ctx context.Context, url string, completion func(HTTPClientResult)) {
	go func() {
		completion(c.get(ctx, url))
	}()
}

func (c *NetHTTPClient) get(ctx context.Context, url string) HTTPClientResult {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return HTTPClientResult{Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return HTTPClientResult{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return HTTPClientResult{Err: err}
	}

	return HTTPClientResult{Body: body, StatusCode: resp.StatusCode}
}
