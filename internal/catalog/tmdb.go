package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL  = "https://api.themoviedb.org/3"
	defaultImageURL = "https://image.tmdb.org/t/p/w500"
	defaultTimeout  = 10 * time.Second
	maxRetries      = 3
	retryDelay      = 1 * time.Second

	searchCachePrefix   = "catalog:search:"
	trendingCachePrefix = "catalog:trending:"
	searchCacheTTL      = 4 * time.Hour
	trendingCacheTTL    = 1 * time.Hour

	documentaryGenreID = "99"
)

// Client talks to a TMDB-compatible catalog API. Responses are cached in
// redis when a client is provided; requests are rate-limited and retried
// with a doubling backoff.
type Client struct {
	baseURL  string
	imageURL string
	apiKey   string
	http     *http.Client
	limiter  *rate.Limiter
	rdb      *redis.Client
	log      *logrus.Logger
}

type ClientConfig struct {
	BaseURL  string
	ImageURL string
	APIKey   string
	Timeout  time.Duration
	Redis    *redis.Client
	Logger   *logrus.Logger
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.ImageURL == "" {
		cfg.ImageURL = defaultImageURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		imageURL: cfg.ImageURL,
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: cfg.Timeout},
		limiter:  rate.NewLimiter(rate.Every(250*time.Millisecond), 1),
		rdb:      cfg.Redis,
		log:      cfg.Logger,
	}
}

type tmdbItem struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	PosterPath   string  `json:"poster_path"`
	Overview     string  `json:"overview"`
	VoteAverage  float64 `json:"vote_average"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
}

type tmdbResponse struct {
	Results []tmdbItem `json:"results"`
}

// Search queries the catalog by title. Documentaries are searched across
// both the movie and the TV index and folded into one result set; results
// without a poster are dropped.
func (c *Client) Search(ctx context.Context, query, mediaType string) ([]Descriptor, error) {
	cacheKey := searchCachePrefix + mediaType + ":" + query
	if cached, ok := c.fromCache(ctx, cacheKey); ok {
		return cached, nil
	}

	var out []Descriptor
	switch mediaType {
	case TypeDocumentary:
		movies, err := c.search(ctx, TypeMovie, query, true)
		if err != nil {
			return nil, err
		}
		shows, err := c.search(ctx, TypeTV, query, true)
		if err != nil {
			return nil, err
		}
		out = append(c.mapResults(movies, TypeDocumentary), c.mapResults(shows, TypeDocumentary)...)
	case TypeMovie, TypeTV:
		results, err := c.search(ctx, mediaType, query, false)
		if err != nil {
			return nil, err
		}
		out = c.mapResults(results, mediaType)
	default:
		return nil, fmt.Errorf("unsupported media type %q", mediaType)
	}

	c.toCache(ctx, cacheKey, out, searchCacheTTL)
	return out, nil
}

// Trending returns this week's trending titles. The upstream only indexes
// movie and tv; documentary trending is served from the movie index with
// documentary labeling.
func (c *Client) Trending(ctx context.Context, mediaType string, page int) ([]Descriptor, error) {
	if page < 1 {
		page = 1
	}
	if !ValidMediaType(mediaType) {
		return nil, fmt.Errorf("unsupported media type %q", mediaType)
	}

	cacheKey := trendingCachePrefix + mediaType + ":" + strconv.Itoa(page)
	if cached, ok := c.fromCache(ctx, cacheKey); ok {
		return cached, nil
	}

	endpoint := mediaType
	if mediaType == TypeDocumentary {
		endpoint = TypeMovie
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	results, err := c.request(ctx, fmt.Sprintf("/trending/%s/week", endpoint), params)
	if err != nil {
		return nil, err
	}

	out := c.mapResults(results, mediaType)
	c.toCache(ctx, cacheKey, out, trendingCacheTTL)
	return out, nil
}

func (c *Client) search(ctx context.Context, index, query string, documentary bool) ([]tmdbItem, error) {
	params := url.Values{}
	params.Set("query", query)
	if documentary {
		params.Set("with_genres", documentaryGenreID)
	}
	return c.request(ctx, "/search/"+index, params)
}

// mapResults normalizes raw results into drafts. Genre labeling follows the
// upstream defaults ("Drama" for movie/tv, "Documentary" for documentaries);
// the user refines genres after adding.
func (c *Client) mapResults(items []tmdbItem, mediaType string) []Descriptor {
	genre := []string{"Drama"}
	if mediaType == TypeDocumentary {
		genre = []string{"Documentary"}
	}

	out := []Descriptor{}
	for _, it := range items {
		if it.PosterPath == "" {
			continue
		}
		title := it.Title
		if title == "" {
			title = it.Name
		}
		release := it.ReleaseDate
		if release == "" {
			release = it.FirstAirDate
		}
		if release == "" {
			release = time.Now().UTC().Format(time.RFC3339)
		}
		out = append(out, Descriptor{
			ID:          fmt.Sprintf("tmdb-%d", it.ID),
			Title:       title,
			Type:        mediaType,
			Platform:    "netflix",
			Genre:       append([]string{}, genre...),
			ReleaseDate: release,
			Image:       c.imageURL + it.PosterPath,
			Overview:    it.Overview,
			TMDBRating:  it.VoteAverage,
		})
	}
	return out
}

func (c *Client) request(ctx context.Context, path string, params url.Values) ([]tmdbItem, error) {
	params.Set("api_key", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			// doubling backoff between attempts
			delay := retryDelay << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			c.log.WithError(err).WithField("attempt", attempt+1).Warn("catalog request failed, retrying")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("catalog API status %d", resp.StatusCode)
			c.log.WithField("status", resp.StatusCode).WithField("attempt", attempt+1).Warn("catalog request failed, retrying")
			continue
		}

		var body tmdbResponse
		err = json.NewDecoder(resp.Body).Decode(&body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return body.Results, nil
	}
	return nil, fmt.Errorf("catalog request failed after %d attempts: %w", maxRetries, lastErr)
}

func (c *Client) fromCache(ctx context.Context, key string) ([]Descriptor, bool) {
	if c.rdb == nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.WithError(err).Warn("catalog cache read failed")
		}
		return nil, false
	}
	var out []Descriptor
	if err := json.Unmarshal(data, &out); err != nil {
		c.log.WithError(err).Warn("catalog cache entry unreadable")
		return nil, false
	}
	return out, true
}

func (c *Client) toCache(ctx context.Context, key string, items []Descriptor, ttl time.Duration) {
	if c.rdb == nil {
		return
	}
	data, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		c.log.WithError(err).Warn("catalog cache write failed")
	}
}
