// internal/workers/product/extract-page-image/extractor.go
package extractpageimage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dyatlov/go-opengraph/opengraph"
	"github.com/redis/go-redis/v9"

	"deal-hunter/internal/common/errors"
	commonhttp "deal-hunter/internal/common/http"
	"deal-hunter/internal/common/logger"
	"deal-hunter/internal/common/metrics"
)

// PageFetcher returns an error only for transport failures.
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL string) (*commonhttp.Page, error)
}

// Extractor finds the representative product image of a page.
type Extractor struct {
	fetcher  PageFetcher
	redis    *redis.Client
	cacheTTL time.Duration
	minWidth int
	hints    []string
	logger   logger.Logger
}

// NewExtractor builds an extractor. A nil redis client disables page caching.
func NewExtractor(config *Config, fetcher PageFetcher, redis *redis.Client, log logger.Logger) *Extractor {
	hints := make([]string, 0, len(config.HintTokens))
	for _, h := range config.HintTokens {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hints = append(hints, h)
		}
	}
	return &Extractor{
		fetcher:  fetcher,
		redis:    redis,
		cacheTTL: config.CacheTTL,
		minWidth: config.MinImageWidth,
		hints:    hints,
		logger:   log,
	}
}

// Extract returns an absolute image URL, or "" when the page has none, could
// not be parsed or answered with a non-2xx status. Transport failures are
// extraction errors.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (string, error) {
	// A malformed page URL is a caller error, not a page without an image.
	base, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || base.Host == "" || (base.Scheme != "http" && base.Scheme != "https") {
		return "", errors.NewInvalidInputError("page URL must be an absolute http(s) URL")
	}

	page, err := e.page(ctx, base.String())
	if err != nil {
		metrics.PageExtractions.WithLabelValues("fetch_error").Inc()
		return "", errors.NewExtractionError(base.String(), err)
	}
	if page.StatusCode < 200 || page.StatusCode >= 300 {
		metrics.PageExtractions.WithLabelValues("http_error").Inc()
		e.logger.Warn("page returned non-success status", map[string]interface{}{
			"pageUrl":    base.String(),
			"statusCode": page.StatusCode,
		})
		return "", nil
	}

	// Relative references resolve against the final URL after redirects.
	if final, err := url.Parse(page.URL); err == nil && final.Host != "" {
		base = final
	}

	image, err := e.selectImage(base, page.Body)
	if err != nil {
		metrics.PageExtractions.WithLabelValues("parse_error").Inc()
		e.logger.Warn("failed to parse page", map[string]interface{}{
			"pageUrl": base.String(),
			"error":   err,
		})
		return "", nil
	}
	if image == "" {
		metrics.PageExtractions.WithLabelValues("not_found").Inc()
		return "", nil
	}

	metrics.PageExtractions.WithLabelValues("found").Inc()
	return image, nil
}

// page fetches pageURL through the cache. Only successful responses are cached.
func (e *Extractor) page(ctx context.Context, pageURL string) (*cachedPage, error) {
	cacheKey := pageCacheKey(pageURL)
	if e.redis != nil {
		if val, err := e.redis.Get(ctx, cacheKey).Result(); err == nil {
			var cached cachedPage
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	fetched, err := e.fetcher.FetchPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	p := &cachedPage{URL: fetched.URL, StatusCode: fetched.StatusCode, Body: fetched.Body}
	if e.redis != nil && fetched.OK() && e.cacheTTL > 0 {
		data, _ := json.Marshal(p)
		if err := e.redis.Set(ctx, cacheKey, data, e.cacheTTL).Err(); err != nil {
			e.logger.Debug("failed to cache page", map[string]interface{}{
				"pageUrl": pageURL,
				"error":   err,
			})
		}
	}
	return p, nil
}

func pageCacheKey(pageURL string) string {
	sum := sha256.Sum256([]byte(pageURL))
	return "page:" + hex.EncodeToString(sum[:])
}

// selectImage applies the meta tag priority list, then the <img> scan.
func (e *Extractor) selectImage(base *url.URL, body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	og := opengraph.NewOpenGraph()
	if err := og.ProcessHTML(bytes.NewReader(body)); err != nil {
		og = nil
	}

	candidates := []string{
		ogImage(og, doc),
		metaContent(doc, `meta[name="twitter:image"], meta[property="twitter:image"], meta[name="twitter:image:src"]`),
		ogSecureURL(og, doc),
		linkImageSrc(doc),
	}
	for _, c := range candidates {
		if abs := absolute(base, c); abs != "" {
			return abs, nil
		}
	}

	return e.scanImages(base, doc), nil
}

func ogImage(og *opengraph.OpenGraph, doc *goquery.Document) string {
	if og != nil {
		for _, img := range og.Images {
			if img.URL != "" {
				return img.URL
			}
		}
	}
	return metaContent(doc, `meta[property="og:image"], meta[name="og:image"]`)
}

func ogSecureURL(og *opengraph.OpenGraph, doc *goquery.Document) string {
	if og != nil {
		for _, img := range og.Images {
			if img.SecureURL != "" {
				return img.SecureURL
			}
		}
	}
	return metaContent(doc, `meta[property="og:image:secure_url"]`)
}

func linkImageSrc(doc *goquery.Document) string {
	sel := doc.Find(`link[rel="image_src"]`).First()
	if href, ok := sel.Attr("href"); ok && strings.TrimSpace(href) != "" {
		return href
	}
	content, _ := sel.Attr("content")
	return content
}

func metaContent(doc *goquery.Document, selector string) string {
	var out string
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if content, ok := s.Attr("content"); ok && strings.TrimSpace(content) != "" {
			out = content
			return false
		}
		return true
	})
	return out
}

// Fallback scan ranks, in order: hinted and wider than the minimum, hinted
// without a width, unhinted and wider than the minimum. Images with a width
// at or below the minimum are icons and never chosen. Unhinted images without
// a width are logos and pixels often enough to be left out.
const (
	rankHintedWide = iota
	rankHintedUnsized
	rankUnhintedWide
	rankCount
)

// scanImages returns the first body image of the best rank.
func (e *Extractor) scanImages(base *url.URL, doc *goquery.Document) string {
	var best [rankCount]string

	doc.Find("img").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		if strings.TrimSpace(src) == "" {
			src, _ = s.Attr("data-src")
		}
		abs := absolute(base, src)
		if abs == "" {
			return true
		}

		width, sized := parseWidth(s)
		if sized && width <= e.minWidth {
			return true
		}

		rank := -1
		switch hinted := e.hasHint(src); {
		case hinted && sized:
			rank = rankHintedWide
		case hinted:
			rank = rankHintedUnsized
		case sized:
			rank = rankUnhintedWide
		}
		if rank >= 0 && best[rank] == "" {
			best[rank] = abs
		}
		return best[rankHintedWide] == ""
	})

	for _, candidate := range best {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

func (e *Extractor) hasHint(src string) bool {
	lower := strings.ToLower(src)
	for _, h := range e.hints {
		if strings.Contains(lower, h) {
			return true
		}
	}
	return false
}

func parseWidth(s *goquery.Selection) (int, bool) {
	raw, ok := s.Attr("width")
	if !ok {
		return 0, false
	}
	w, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(raw), "px"))
	if err != nil {
		return 0, false
	}
	return w, true
}

// absolute resolves raw against base. Empty, data: and non-http(s) references
// yield "".
func absolute(base *url.URL, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(strings.ToLower(raw), "data:") {
		return ""
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	return abs.String()
}
