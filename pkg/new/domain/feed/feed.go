package feed

import (
	"errors"
	"net/url"

	"github.com/google/uuid"
	"github.com/piraces/essentialfeed/pkg/helpers"
)

// FeedItem is a single entry of a remote feed.
type FeedItem struct {
	id          uuid.UUID
	description *string
	location    *string
	imageURL    *url.URL
}

func NewFeedItem(id uuid.UUID, description *string, location *string, imageURL *url.URL) (FeedItem, error) {
	if imageURL == nil {
		return FeedItem{}, errors.New("image url can't be nil")
	}

	return FeedItem{
		id:          id,
		description: copyString(description),
		location:    copyString(location),
		imageURL:    copyURL(imageURL),
	}, nil
}

// MustNewFeedItem is like NewFeedItem but panics on error. Meant for fixtures.
func MustNewFeedItem(id uuid.UUID, description *string, location *string, imageURL *url.URL) FeedItem {
	item, err := NewFeedItem(id, description, location, imageURL)
	if err != nil {
		panic(err)
	}
	return item
}

func (f FeedItem) ID() uuid.UUID {
	return f.id
}

// Description returns nil when the item has no description.
func (f FeedItem) Description() *string {
	return copyString(f.description)
}

// Location returns nil when the item has no location.
func (f FeedItem) Location() *string {
	return copyString(f.location)
}

func (f FeedItem) ImageURL() *url.URL {
	return copyURL(f.imageURL)
}

func (f FeedItem) Equal(o FeedItem) bool {
	return f.id == o.id &&
		equalStrings(f.description, o.description) &&
		equalStrings(f.location, o.location) &&
		f.imageURL.String() == o.imageURL.String()
}

type Address struct {
	s string
}

func NewAddress(s string) (Address, error) {
	if s == "" {
		return Address{}, errors.New("address can't be an empty string")
	}

	if !helpers.IsValidHttpUrl(s) {
		return Address{}, errors.New("invalid URL provided (must be in absolute format and with http or https scheme)")
	}

	return Address{s: s}, nil
}

func (a Address) String() string {
	return a.s
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyURL(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	v := *u
	if u.User != nil {
		user := *u.User
		v.User = &user
	}
	return &v
}

func equalStrings(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
