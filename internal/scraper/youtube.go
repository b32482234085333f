// Package scraper drives a headless Chrome to read search results from
// pages that have no usable API.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"golang.org/x/time/rate"
)

// MaxResults is the largest count a single search may request.
const MaxResults = 10

// ErrInvalidQuery is returned for empty keywords and out-of-range counts.
var ErrInvalidQuery = errors.New("invalid search query")

// Video is one YouTube search result.
type Video struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	Uploader    string `json:"uploader"`
	Duration    string `json:"duration"`
	Thumbnail   string `json:"thumbnail"`
}

// Searcher finds videos by keyword.
type Searcher interface {
	Search(ctx context.Context, keyword string, count int) ([]Video, error)
}

// extractJS reads every rendered video card. Selector based: it breaks when
// YouTube changes its markup.
const extractJS = `Array.from(document.querySelectorAll('ytd-video-renderer')).map(el => {
  const a = el.querySelector('a#video-title');
  const img = el.querySelector('ytd-thumbnail img');
  const time = el.querySelector('ytd-thumbnail-overlay-time-status-renderer #text, ytd-thumbnail-overlay-time-status-renderer badge-shape');
  const desc = el.querySelector('.metadata-snippet-text, #description-text');
  const channel = el.querySelector('ytd-channel-name #text');
  return {
    title: a ? (a.getAttribute('title') || a.innerText || '').trim() : '',
    link: a && a.getAttribute('href') ? 'https://www.youtube.com' + a.getAttribute('href') : '',
    description: desc ? desc.innerText.trim() : '',
    uploader: channel ? channel.innerText.trim() : '',
    duration: time ? time.innerText.trim() : '',
    thumbnail: img ? (img.getAttribute('src') || '') : '',
  };
}).filter(v => v.title && v.link)`

// YouTube implements Searcher with one short-lived browser per search.
type YouTube struct {
	logger  *slog.Logger
	limiter *rate.Limiter
	timeout time.Duration
}

var _ Searcher = (*YouTube)(nil)

// NewYouTube creates a YouTube searcher. Browser launches are spaced at least
// minInterval apart.
func NewYouTube(minInterval, timeout time.Duration, logger *slog.Logger) *YouTube {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &YouTube{
		logger:  logger.With("component", "scraper", "site", "youtube"),
		limiter: rate.NewLimiter(limit, 1),
		timeout: timeout,
	}
}

// SearchURL returns the results page for keyword.
func SearchURL(keyword string) string {
	return "https://www.youtube.com/results?search_query=" + url.QueryEscape(keyword)
}

// ValidateQuery checks keyword and count before anything is launched.
func ValidateQuery(keyword string, count int) error {
	if strings.TrimSpace(keyword) == "" {
		return fmt.Errorf("%w: 검색어가 없습니다", ErrInvalidQuery)
	}
	if count < 1 || count > MaxResults {
		return fmt.Errorf("%w: 최대 %d개까지만 조회 가능합니다", ErrInvalidQuery, MaxResults)
	}
	return nil
}

func (y *YouTube) Search(ctx context.Context, keyword string, count int) ([]Video, error) {
	if err := ValidateQuery(keyword, count); err != nil {
		return nil, err
	}
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for browser slot: %w", err)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("lang", "ko-KR"),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()
	runCtx, cancel := context.WithTimeout(browserCtx, y.timeout)
	defer cancel()

	start := time.Now()
	actions := []chromedp.Action{
		chromedp.Navigate(SearchURL(keyword)),
		chromedp.WaitVisible("ytd-video-renderer", chromedp.ByQuery),
	}
	// Thumbnails load lazily; scroll once per wanted result.
	for i := 0; i < count; i++ {
		actions = append(actions,
			chromedp.Evaluate(`window.scrollBy(0, 1000)`, nil),
			chromedp.Sleep(500*time.Millisecond),
		)
	}
	var videos []Video
	actions = append(actions, chromedp.Evaluate(extractJS, &videos))

	if err := chromedp.Run(runCtx, actions...); err != nil {
		return nil, fmt.Errorf("youtube search %q: %w", keyword, err)
	}

	if len(videos) > count {
		videos = videos[:count]
	}
	y.logger.InfoContext(ctx, "YouTube search finished", "keyword", keyword, "results", len(videos), "duration", time.Since(start))
	return videos, nil
}
