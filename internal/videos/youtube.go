package videos

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultSearchURL = "https://www.googleapis.com/youtube/v3/search"
	defaultTimeout   = 10 * time.Second
	maxResults       = 10
)

// Client searches a YouTube-compatible video API and maps results into
// podcast-style content drafts.
type Client struct {
	apiKey    string
	searchURL string
	http      *http.Client
	log       *logrus.Logger
}

func NewClient(apiKey, searchURL string, log *logrus.Logger) *Client {
	if searchURL == "" {
		searchURL = defaultSearchURL
	}
	if log == nil {
		log = logrus.New()
	}
	return &Client{
		apiKey:    apiKey,
		searchURL: searchURL,
		http:      &http.Client{Timeout: defaultTimeout},
		log:       log,
	}
}

// Descriptor is a normalized video result, shaped as a valid content draft:
// podcast type, "youtube" platform sentinel.
type Descriptor struct {
	ID          string   `json:"id"` // "youtube-<videoId>"
	Title       string   `json:"title"`
	Type        string   `json:"type"`
	Platform    string   `json:"platform"`
	Genre       []string `json:"genre"`
	ReleaseDate string   `json:"releaseDate"`
	Image       string   `json:"image,omitempty"`
	Host        string   `json:"host,omitempty"`
	Duration    string   `json:"duration,omitempty"`
	YouTubeID   string   `json:"youtubeId"`
	Overview    string   `json:"overview,omitempty"`
}

type ytThumbnail struct {
	URL string `json:"url"`
}

type ytSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
			Thumbnails   struct {
				Default ytThumbnail `json:"default"`
				Medium  ytThumbnail `json:"medium"`
				High    ytThumbnail `json:"high"`
				Maxres  ytThumbnail `json:"maxres"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

type ytVideosResponse struct {
	Items []struct {
		ID             string `json:"id"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// Search queries videos by title. A second request fetches durations; when
// it fails the results are returned without them.
func (c *Client) Search(ctx context.Context, query string) ([]Descriptor, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}

	val := url.Values{}
	val.Set("part", "snippet")
	val.Set("type", "video")
	val.Set("maxResults", fmt.Sprint(maxResults))
	val.Set("q", query)
	val.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL+"?"+val.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube status %d", resp.StatusCode)
	}

	var body ytSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	out := make([]Descriptor, 0, len(body.Items))
	var videoIDs []string
	for _, it := range body.Items {
		thumbs := it.Snippet.Thumbnails
		thumb := thumbs.Maxres.URL
		if thumb == "" {
			thumb = thumbs.High.URL
		}
		if thumb == "" {
			thumb = thumbs.Medium.URL
		}
		if thumb == "" {
			thumb = thumbs.Default.URL
		}

		out = append(out, Descriptor{
			ID:          "youtube-" + it.ID.VideoID,
			Title:       it.Snippet.Title,
			Type:        "podcast",
			Platform:    "youtube",
			Genre:       []string{"Education"},
			ReleaseDate: it.Snippet.PublishedAt,
			Image:       thumb,
			Host:        it.Snippet.ChannelTitle,
			Overview:    it.Snippet.Description,
			YouTubeID:   it.ID.VideoID,
		})
		videoIDs = append(videoIDs, it.ID.VideoID)
	}

	if len(videoIDs) > 0 {
		durations, err := c.fetchDurations(ctx, videoIDs)
		if err != nil {
			c.log.WithError(err).Warn("video durations unavailable")
		} else {
			for i := range out {
				if d, ok := durations[out[i].YouTubeID]; ok {
					out[i].Duration = d
				}
			}
		}
	}

	return out, nil
}

func (c *Client) fetchDurations(ctx context.Context, ids []string) (map[string]string, error) {
	val := url.Values{}
	val.Set("part", "contentDetails")
	val.Set("id", strings.Join(ids, ","))
	val.Set("key", c.apiKey)

	// The videos endpoint sits next to the search endpoint.
	baseURL := strings.TrimSuffix(c.searchURL, "/search") + "/videos"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+val.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube videos status %d", resp.StatusCode)
	}

	var body ytVideosResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	durations := make(map[string]string)
	for _, item := range body.Items {
		durations[item.ID] = formatISO8601Duration(item.ContentDetails.Duration)
	}
	return durations, nil
}

var durationRe = regexp.MustCompile(`PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?`)

// formatISO8601Duration renders an ISO-8601 video duration as a display
// string: "H:MM:SS" with the hour part omitted for short videos.
func formatISO8601Duration(duration string) string {
	if duration == "" {
		return ""
	}
	matches := durationRe.FindStringSubmatch(duration)
	if matches == nil {
		return ""
	}

	hours, minutes, seconds := matches[1], matches[2], matches[3]
	var parts []string
	if hours != "" {
		parts = append(parts, hours)
	}
	parts = append(parts, padZero(minutes), padZero(seconds))
	return strings.Join(parts, ":")
}

func padZero(num string) string {
	if num == "" {
		return "00"
	}
	for len(num) < 2 {
		num = "0" + num
	}
	return num
}
