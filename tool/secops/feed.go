package secops

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/aegisops/aegis/core"
	"github.com/aegisops/aegis/tool"
)

// feedBodyLimit bounds how much of a feed response is read.
const feedBodyLimit = 4 << 20

// FeedOptions configures the fetch_feed tool.
type FeedOptions struct {
	// HTTPClient used for requests. Defaults to a 30s-timeout client.
	HTTPClient *http.Client

	// Feeds maps a feed name the model may request to its URL. Only
	// configured feeds can be fetched.
	Feeds map[string]string

	// MaxEntries caps returned entries per fetch.
	MaxEntries int
}

// FeedFetch retrieves security advisory entries from configured RSS or Atom
// feeds.
type FeedFetch struct {
	client     *http.Client
	feeds      map[string]string
	maxEntries int
}

// FeedEntry is one advisory item in compact form.
type FeedEntry struct {
	Title     string `json:"title"`
	Link      string `json:"link,omitempty"`
	Published string `json:"published,omitempty"`
	Summary   string `json:"summary,omitempty"`
}

// NewFeedFetch constructs the fetch_feed tool.
func NewFeedFetch(feeds map[string]string, optFns ...func(o *FeedOptions)) *FeedFetch {
	opts := FeedOptions{
		HTTPClient: defaultHTTPClient(),
		Feeds:      feeds,
		MaxEntries: 100,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &FeedFetch{
		client:     opts.HTTPClient,
		feeds:      opts.Feeds,
		maxEntries: opts.MaxEntries,
	}
}

// Name implements tool.Tool.
func (t *FeedFetch) Name() string { return "fetch_feed" }

// Description implements tool.Tool.
func (t *FeedFetch) Description() string {
	names := make([]string, 0, len(t.feeds))
	for name := range t.feeds {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("Fetch recent entries from a configured security advisory feed. Available feeds: %s. Optionally filter by a search term.",
		strings.Join(names, ", "))
}

// Parameters implements tool.Tool.
func (t *FeedFetch) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"feed": map[string]any{
				"type":        "string",
				"description": "Name of the configured feed to fetch",
			},
			"query": map[string]any{
				"type":        "string",
				"description": "Optional search term passed to the feed",
			},
		},
		"required": []string{"feed"},
	}
}

// rssDocument covers the RSS 2.0 shape.
type rssDocument struct {
	Channel struct {
		Items []struct {
			Title       string `xml:"title"`
			Link        string `xml:"link"`
			PubDate     string `xml:"pubDate"`
			Description string `xml:"description"`
		} `xml:"item"`
	} `xml:"channel"`
}

// atomDocument covers the Atom shape.
type atomDocument struct {
	Entries []struct {
		Title string `xml:"title"`
		Link  struct {
			Href string `xml:"href,attr"`
		} `xml:"link"`
		Updated string `xml:"updated"`
		Summary string `xml:"summary"`
	} `xml:"entry"`
}

// Execute implements tool.Tool.
func (t *FeedFetch) Execute(ctx context.Context, _ core.ExecContext, args map[string]any) (any, error) {
	name := stringArg(args, "feed")
	if name == "" {
		return nil, tool.NewError(t.Name(), "feed is required", tool.CodeValidation)
	}

	feedURL, ok := t.feeds[name]
	if !ok {
		return nil, tool.NewError(t.Name(), fmt.Sprintf("unknown feed %q", name), tool.CodeValidation)
	}

	if query := stringArg(args, "query"); query != "" {
		sep := "?"
		if strings.Contains(feedURL, "?") {
			sep = "&"
		}
		feedURL += sep + "q=" + url.QueryEscape(query)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, tool.NewError(t.Name(), err.Error(), tool.CodeExecution)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, tool.NewError(t.Name(), fmt.Sprintf("feed request failed: %v", err), tool.CodeExecution)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(t.Name(), resp)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, feedBodyLimit))
	if err != nil {
		return nil, tool.NewError(t.Name(), fmt.Sprintf("read feed: %v", err), tool.CodeExecution)
	}

	entries, err := parseFeed(data)
	if err != nil {
		return nil, tool.NewError(t.Name(), err.Error(), tool.CodeExecution)
	}
	if len(entries) > t.maxEntries {
		entries = entries[:t.maxEntries]
	}

	return entries, nil
}

// parseFeed decodes RSS 2.0 first and falls back to Atom.
func parseFeed(data []byte) ([]FeedEntry, error) {
	var rss rssDocument
	if err := xml.Unmarshal(data, &rss); err == nil && len(rss.Channel.Items) > 0 {
		entries := make([]FeedEntry, 0, len(rss.Channel.Items))
		for _, item := range rss.Channel.Items {
			entries = append(entries, FeedEntry{
				Title:     item.Title,
				Link:      item.Link,
				Published: item.PubDate,
				Summary:   item.Description,
			})
		}
		return entries, nil
	}

	var atom atomDocument
	if err := xml.Unmarshal(data, &atom); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	entries := make([]FeedEntry, 0, len(atom.Entries))
	for _, e := range atom.Entries {
		entries = append(entries, FeedEntry{
			Title:     e.Title,
			Link:      e.Link.Href,
			Published: e.Updated,
			Summary:   e.Summary,
		})
	}
	return entries, nil
}
