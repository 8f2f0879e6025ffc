package feed

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	domainfeed "github.com/piraces/essentialfeed/pkg/new/domain/feed"
	"github.com/pkg/errors"
)

const uuidLength = 36

type remoteFeed struct {
	Items *[]remoteFeedItem `json:"items"`
}

type remoteFeedItem struct {
	ID          string  `json:"id"`
	Description *string `json:"description,omitempty"`
	Location    *string `json:"location,omitempty"`
	Image       string  `json:"image"`
}

// UnmarshalJSON reads only the exact "items" key. encoding/json would also
// accept keys differing in case.
func (r *remoteFeed) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	r.Items = nil
	var items []remoteFeedItem
	if err := decodeField(fields, "items", &items); err != nil {
		return err
	}
	if items != nil {
		r.Items = &items
	}
	return nil
}

// UnmarshalJSON reads only exact, lower case keys.
func (r *remoteFeedItem) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*r = remoteFeedItem{}
	for key, v := range map[string]any{
		"id":          &r.ID,
		"description": &r.Description,
		"location":    &r.Location,
		"image":       &r.Image,
	} {
		if err := decodeField(fields, key, v); err != nil {
			return err
		}
	}
	return nil
}

func decodeField(fields map[string]json.RawMessage, key string, v any) error {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	return errors.Wrapf(json.Unmarshal(raw, v), "error decoding %q", key)
}

func (r remoteFeedItem) item() (domainfeed.FeedItem, error) {
	if len(r.ID) != uuidLength {
		return domainfeed.FeedItem{}, errors.Errorf("id %q is not a hyphenated uuid", r.ID)
	}

	id, err := uuid.Parse(r.ID)
	if err != nil {
		return domainfeed.FeedItem{}, errors.Wrapf(err, "error parsing id %q", r.ID)
	}

	if r.Image == "" {
		return domainfeed.FeedItem{}, errors.New("image url is missing")
	}

	imageURL, err := url.Parse(r.Image)
	if err != nil {
		return domainfeed.FeedItem{}, errors.Wrap(err, "error parsing image url")
	}

	return domainfeed.NewFeedItem(id, r.Description, r.Location, imageURL)
}

// MapFeedItems turns a response into feed items. Anything other than a 200
// with a well-formed payload is reported as ErrInvalidData.
func MapFeedItems(body []byte, statusCode int) ([]domainfeed.FeedItem, error) {
	if statusCode != http.StatusOK {
		return nil, errors.Wrapf(ErrInvalidData, "unexpected status code %d", statusCode)
	}

	var root remoteFeed
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, errors.WithMessage(ErrInvalidData, err.Error())
	}

	if root.Items == nil {
		return nil, errors.Wrap(ErrInvalidData, "items are missing")
	}

	items := make([]domainfeed.FeedItem, 0, len(*root.Items))
	for i, remoteItem := range *root.Items {
		item, err := remoteItem.item()
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidData, "item %d: %s", i, err)
		}
		items = append(items, item)
	}

	return items, nil
}

// MarshalFeedItems renders items in the same payload format MapFeedItems reads.
func MarshalFeedItems(items []domainfeed.FeedItem) ([]byte, error) {
	remoteItems := make([]remoteFeedItem, 0, len(items))
	for _, item := range items {
		remoteItems = append(remoteItems, remoteFeedItem{
			ID:          item.ID().String(),
			Description: item.Description(),
			Location:    item.Location(),
			Image:       item.ImageURL().String(),
		})
	}

	return json.Marshal(remoteFeed{Items: &remoteItems})
}
