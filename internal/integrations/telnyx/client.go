package telnyx

import (
	"context"
	"time"

	"github.com/guonaihong/gout"
	"github.com/pkg/errors"

	"github.com/glowbooking/glowbook/config"
)

// Client sends SMS through the Telnyx messages API
type Client struct {
	endpoint string
	apiKey   string
	from     string
}

func New(cfg *config.TelnyxConfig) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.ApiKey,
		from:     cfg.From,
	}
}

type messageResp struct {
	Data struct {
		Id string `json:"id"`
	} `json:"data"`
	Errors []struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// SendSMS delivers one text message and returns the Telnyx message id
func (c *Client) SendSMS(ctx context.Context, to, text string) (string, error) {
	var resp messageResp
	var code int
	err := gout.POST(c.endpoint + "/messages").
		WithContext(ctx).
		SetTimeout(10 * time.Second).
		SetHeader(gout.H{
			"Authorization": "Bearer " + c.apiKey,
			"Content-Type":  "application/json",
		}).
		SetJSON(gout.H{
			"from": c.from,
			"to":   to,
			"text": text,
		}).
		BindJSON(&resp).
		Code(&code).
		Do()
	if err != nil {
		return "", errors.Wrap(err, "telnyx send sms")
	}
	if code >= 400 || len(resp.Errors) > 0 {
		detail := "unknown error"
		if len(resp.Errors) > 0 {
			detail = resp.Errors[0].Title + ": " + resp.Errors[0].Detail
		}
		return "", errors.Errorf("telnyx send sms: %s", detail)
	}
	return resp.Data.Id, nil
}
