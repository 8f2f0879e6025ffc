package feed

import (
	"context"
	"errors"

	"github.com/piraces/essentialfeed/pkg/lifetime"
	domainfeed "github.com/piraces/essentialfeed/pkg/new/domain/feed"
	pkgerrors "github.com/pkg/errors"
)

var (
	// ErrConnectivity is returned when the feed could not be fetched at all.
	ErrConnectivity = errors.New("connectivity")

	// ErrInvalidData is returned for non-200 responses and malformed payloads.
	ErrInvalidData = errors.New("invalid data")
)

// LoadResult carries the items of a successful load, or Err on failure.
type LoadResult struct {
	Items []domainfeed.FeedItem
	Err   error
}

type RemoteFeedLoader struct {
	address domainfeed.Address
	client  HTTPClient
	token   lifetime.Token
}

func NewRemoteFeedLoader(address domainfeed.Address, client HTTPClient) *RemoteFeedLoader {
	return &RemoteFeedLoader{address: address, client: client}
}

// Load fetches the feed once and invokes completion exactly once, unless the
// loader is closed before the fetch completes.
func (l *RemoteFeedLoader) Load(ctx context.Context, completion func(LoadResult)) {
	done := lifetime.Guard(&l.token, completion)

	l.client.Get(ctx, l.address.String(), func(result HTTPClientResult) {
		done(l.mapResult(result))
	})
}

// Close releases the loader. Loads still in flight never complete.
func (l *RemoteFeedLoader) Close() error {
	l.token.Release()
	return nil
}

func (l *RemoteFeedLoader) mapResult(result HTTPClientResult) LoadResult {
	if result.Err != nil {
		return LoadResult{Err: pkgerrors.WithMessage(ErrConnectivity, result.Err.Error())}
	}

	items, err := MapFeedItems(result.Body, result.StatusCode)
	if err != nil {
		return LoadResult{Err: err}
	}

	return LoadResult{Items: items}
}
