package places

import (
	"context"
	"time"

	"github.com/guonaihong/gout"
	"github.com/pkg/errors"

	"github.com/glowbooking/glowbook/config"
)

// Review is one Google Places review entry
type Review struct {
	AuthorName string `json:"author_name"`
	Rating     int    `json:"rating"`
	Text       string `json:"text"`
	Time       int64  `json:"time"`
	PhotoUrl   string `json:"profile_photo_url"`
	Relative   string `json:"relative_time_description"`
}

// Details is the subset of place details the site displays
type Details struct {
	Rating  float64  `json:"rating"`
	Total   int      `json:"user_ratings_total"`
	Reviews []Review `json:"reviews"`
}

type detailsResp struct {
	Status string  `json:"status"`
	Result Details `json:"result"`
}

// Fetcher fetches place details; the reviews cache depends on this interface
// so tests can substitute the upstream.
type Fetcher interface {
	FetchDetails(ctx context.Context) (*Details, error)
}

type Client struct {
	endpoint string
	apiKey   string
	placeId  string
}

var _ Fetcher = (*Client)(nil)

func New(cfg *config.GoogleConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.ApiKey,
		placeId:  cfg.PlaceId,
	}
}

// FetchDetails calls the Places details API for reviews and rating
func (c *Client) FetchDetails(ctx context.Context) (*Details, error) {
	var resp detailsResp
	var code int
	err := gout.GET(c.endpoint + "/details/json").
		WithContext(ctx).
		SetTimeout(10 * time.Second).
		SetQuery(gout.H{
			"place_id": c.placeId,
			"fields":   "rating,user_ratings_total,reviews",
			"key":      c.apiKey,
		}).
		BindJSON(&resp).
		Code(&code).
		Do()
	if err != nil {
		return nil, errors.Wrap(err, "places details request")
	}
	if code >= 400 {
		return nil, errors.Errorf("places details: status %d", code)
	}
	if resp.Status != "OK" {
		return nil, errors.Errorf("places details: %s", resp.Status)
	}
	return &resp.Result, nil
}
