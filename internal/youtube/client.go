package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/commentguesser/backend/internal/game"
	"github.com/sosodev/duration"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the production YouTube Data API endpoint.
	DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

	defaultTimeout = 10 * time.Second

	minCommentLength = 5
	maxCommentLength = 140
)

// defaultSearchTerms seeds searches when no query is supplied.
var defaultSearchTerms = []string{"ludwig", "jschlatt", "squeex", "sambucha"}

var errMissingAPIKey = errors.New("youtube: api key is required")

// ClientConfig collects the adapter's settings.
type ClientConfig struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client wraps the upstream search/metadata/comments capability. Every call
// is quota-billed upstream; callers batch accordingly.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient validates the configuration and constructs a Client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errMissingAPIKey
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

var _ game.VideoSource = (*Client)(nil)

type apiError struct {
	status int
	body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("youtube: unexpected status %d: %s", e.status, e.body)
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("key", c.apiKey)
	endpoint := c.baseURL + path + "?" + params.Encode()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return err
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 4096))
		return &apiError{status: response.StatusCode, body: string(body)}
	}

	return json.NewDecoder(response.Body).Decode(out)
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

// SearchVideos returns candidate video ids for the query, picking a random
// default term when none is given. Transport and parse failures degrade to an
// empty result so the caller's candidate loop can simply move on.
func (c *Client) SearchVideos(ctx context.Context, query string, maxResults int) ([]string, error) {
	if strings.TrimSpace(query) == "" {
		query = defaultSearchTerms[rand.Intn(len(defaultSearchTerms))]
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("videoDuration", "short")
	params.Set("order", "viewCount")
	params.Set("maxResults", strconv.Itoa(maxResults))

	var payload searchResponse
	if err := c.getJSON(ctx, "/search", params, &payload); err != nil {
		c.logger.Warn("video search failed", zap.String("query", query), zap.Error(err))
		return nil, nil
	}

	ids := make([]string, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.ID.VideoID == "" {
			continue
		}
		ids = append(ids, item.ID.VideoID)
	}
	return ids, nil
}

type videoListResponse struct {
	Items []struct {
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
		Status struct {
			Embeddable   bool   `json:"embeddable"`
			UploadStatus string `json:"uploadStatus"`
		} `json:"status"`
	} `json:"items"`
}

// VideoDetails fetches the title and duration for a video. It returns nil for
// videos that cannot back a round: not embeddable, not fully processed, or
// without a usable duration.
func (c *Client) VideoDetails(ctx context.Context, videoID string) (*game.VideoDetails, error) {
	params := url.Values{}
	params.Set("part", "snippet,contentDetails,status")
	params.Set("id", videoID)

	var payload videoListResponse
	if err := c.getJSON(ctx, "/videos", params, &payload); err != nil {
		return nil, err
	}
	if len(payload.Items) == 0 {
		return nil, nil
	}

	item := payload.Items[0]
	if !item.Status.Embeddable || item.Status.UploadStatus != "processed" {
		return nil, nil
	}

	seconds := parseDurationSeconds(item.ContentDetails.Duration)
	if seconds <= 0 {
		return nil, nil
	}

	return &game.VideoDetails{
		Title:           item.Snippet.Title,
		DurationSeconds: seconds,
	}, nil
}

// parseDurationSeconds converts an ISO-8601 duration token such as "PT1M30S".
// Missing components count as zero; unparseable input yields zero.
func parseDurationSeconds(raw string) int {
	if raw == "" {
		return 0
	}
	parsed, err := duration.Parse(raw)
	if err != nil {
		return 0
	}
	return int(parsed.ToTimeDuration() / time.Second)
}

type commentThreadResponse struct {
	Items []struct {
		Snippet struct {
			TopLevelComment struct {
				ID      string `json:"id"`
				Snippet struct {
					TextDisplay string `json:"textDisplay"`
					LikeCount   int    `json:"likeCount"`
				} `json:"snippet"`
			} `json:"topLevelComment"`
		} `json:"snippet"`
	} `json:"items"`
}

// TopComments fetches up to maxResults top-level comments for a video,
// dropping entries with missing ids or text outside the playable length
// bounds. The result is NOT sorted; ordering belongs to the caller. Videos
// with comments disabled yield an empty result rather than an error; any
// other upstream failure propagates.
func (c *Client) TopComments(ctx context.Context, videoID string, maxResults int) ([]game.Comment, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("videoId", videoID)
	params.Set("order", "relevance")
	params.Set("textFormat", "plainText")
	params.Set("maxResults", strconv.Itoa(maxResults))

	var payload commentThreadResponse
	if err := c.getJSON(ctx, "/commentThreads", params, &payload); err != nil {
		var upstream *apiError
		if errors.As(err, &upstream) && commentsUnavailable(upstream) {
			c.logger.Info("comments unavailable", zap.String("video_id", videoID))
			return nil, nil
		}
		return nil, err
	}

	comments := make([]game.Comment, 0, len(payload.Items))
	for _, item := range payload.Items {
		comment := item.Snippet.TopLevelComment
		text := strings.TrimSpace(comment.Snippet.TextDisplay)
		// Length bounds are in characters, not bytes: multi-byte scripts
		// must not be over-counted.
		length := utf8.RuneCountInString(text)
		if comment.ID == "" || length < minCommentLength || length > maxCommentLength {
			continue
		}
		comments = append(comments, game.Comment{
			ID:        comment.ID,
			Text:      text,
			LikeCount: comment.Snippet.LikeCount,
		})
	}
	return comments, nil
}

func commentsUnavailable(err *apiError) bool {
	if err.status == http.StatusForbidden {
		return true
	}
	return strings.Contains(err.body, "commentsDisabled") || strings.Contains(err.body, "disabledComments")
}
