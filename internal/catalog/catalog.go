package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/samber/lo"
	"github.com/tessro/showcase/internal/core"
	apperr "github.com/tessro/showcase/internal/errors"
)

const cacheSize = 16

// Catalog lists approved tracks by kind, caching each listing for a while.
type Catalog struct {
	client   *Client
	mediaURL string
	cache    *expirable.LRU[core.Kind, []Item]
}

// Item is a listed post together with its playable track.
type Item struct {
	Post  Post
	Track core.Track
}

// Playable reports whether the item has a file the player can load.
func (i Item) Playable() bool {
	return i.Track.SourceURL != ""
}

// New creates a catalog. mediaURL is the base that relative file paths are
// resolved against. A ttl of zero disables caching.
func New(client *Client, mediaURL string, ttl time.Duration) *Catalog {
	c := &Catalog{client: client, mediaURL: mediaURL}
	if ttl > 0 {
		c.cache = expirable.NewLRU[core.Kind, []Item](cacheSize, nil, ttl)
	}
	return c
}

// List returns the approved posts of kind, newest first.
func (c *Catalog) List(ctx context.Context, kind core.Kind) ([]Item, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown media kind %q", kind)
	}
	if c.cache != nil {
		if items, ok := c.cache.Get(kind); ok {
			return items, nil
		}
	}

	posts, err := c.client.ListPosts(ctx, string(kind), "approved")
	if err != nil {
		return nil, fmt.Errorf("list %s posts: %w", kind, err)
	}

	items := lo.Map(posts, func(p Post, _ int) Item {
		return Item{Post: p, Track: p.Track(kind, c.mediaURL)}
	})
	if c.cache != nil {
		c.cache.Add(kind, items)
	}
	return items, nil
}

// ListAll lists every kind. A kind that fails to load is reported in the
// result's errors while the others are still returned.
func (c *Catalog) ListAll(ctx context.Context) *apperr.PartialResult[[]Item] {
	result := &apperr.PartialResult[[]Item]{}
	for _, kind := range []core.Kind{core.KindVideo, core.KindAudio} {
		items, err := c.List(ctx, kind)
		if err != nil {
			result.AddError(err)
			continue
		}
		result.Data = append(result.Data, items...)
	}
	return result
}

// Lookup finds the post with id among the approved posts of kind.
func (c *Catalog) Lookup(ctx context.Context, kind core.Kind, id string) (Item, error) {
	items, err := c.List(ctx, kind)
	if err != nil {
		return Item{}, err
	}
	item, ok := lo.Find(items, func(i Item) bool { return i.Post.ID == id })
	if !ok {
		return Item{}, fmt.Errorf("%s %q: %w", kind, id, apperr.ErrTrackNotFound)
	}
	return item, nil
}

// Filter returns the items whose title or author contains query, ignoring
// case.
func Filter(items []Item, query string) []Item {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}
	return lo.Filter(items, func(i Item, _ int) bool {
		return strings.Contains(strings.ToLower(i.Post.Title), query) ||
			strings.Contains(strings.ToLower(i.Post.AuthorName), query)
	})
}

// Invalidate drops cached listings.
func (c *Catalog) Invalidate() {
	if c.cache != nil {
		c.cache.Purge()
	}
}
