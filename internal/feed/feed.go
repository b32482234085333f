// Package feed downloads and parses RSS and Atom feeds.
package feed

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"github.com/Hazealign/black-angus-main/internal/database"
	"github.com/Hazealign/black-angus-main/internal/httpclient"
)

// Entry is one feed item with a known publication time.
type Entry struct {
	Title       string
	Link        string
	Author      string
	Description string
	PublishedAt time.Time
}

// Reader fetches the entries of a feed.
type Reader interface {
	// Fetch returns the entries published strictly after since, oldest first.
	// A zero since returns every entry.
	Fetch(ctx context.Context, url string, since time.Time) ([]Entry, error)
}

// Client implements Reader on top of an httpclient.Fetcher.
type Client struct {
	fetcher httpclient.Fetcher
}

var _ Reader = (*Client)(nil)

// NewClient creates a feed Client.
func NewClient(fetcher httpclient.Fetcher) *Client {
	return &Client{fetcher: fetcher}
}

func (c *Client) Fetch(ctx context.Context, url string, since time.Time) ([]Entry, error) {
	resp, err := c.fetcher.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", url, err)
	}
	entries, err := Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", url, err)
	}
	return Since(entries, since), nil
}

// Parse parses an RSS, Atom or JSON feed document. Items without a
// publication or update time are dropped since they cannot be ordered.
func Parse(data []byte) ([]Entry, error) {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		published := item.PublishedParsed
		if published == nil {
			published = item.UpdatedParsed
		}
		if published == nil {
			continue
		}

		e := Entry{
			Title:       item.Title,
			Link:        item.Link,
			Description: item.Description,
			PublishedAt: published.UTC(),
		}
		if e.Description == "" {
			e.Description = item.Content
		}
		if item.Author != nil {
			e.Author = item.Author.Name
		} else if len(item.Authors) > 0 && item.Authors[0] != nil {
			e.Author = item.Authors[0].Name
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PublishedAt.Before(entries[j].PublishedAt)
	})
	return entries, nil
}

// Since keeps entries published strictly after t. Order is preserved.
func Since(entries []Entry, t time.Time) []Entry {
	if t.IsZero() {
		return entries
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.PublishedAt.After(t) {
			out = append(out, e)
		}
	}
	return out
}

// Latest returns the newest publication time among entries, or the zero time.
func Latest(entries []Entry) time.Time {
	var latest time.Time
	for _, e := range entries {
		if e.PublishedAt.After(latest) {
			latest = e.PublishedAt
		}
	}
	return latest
}

// Documents converts entries into new rss_documents rows.
func Documents(entries []Entry) []database.Document {
	docs := make([]database.Document, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, database.Document{
			ID:          uuid.NewString(),
			Title:       e.Title,
			Link:        e.Link,
			Author:      e.Author,
			Description: e.Description,
			PublishedAt: e.PublishedAt,
		})
	}
	return docs
}
