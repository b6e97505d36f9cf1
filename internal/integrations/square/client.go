package square

import (
	"context"
	"time"

	"github.com/guonaihong/gout"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/glowbooking/glowbook/config"
)

// Client is a thin wrapper over the Square Payments API
type Client struct {
	endpoint    string
	accessToken string
	locationId  string
}

func New(cfg *config.SquareConfig) *Client {
	return &Client{
		endpoint:    cfg.Endpoint,
		accessToken: cfg.AccessToken,
		locationId:  cfg.LocationId,
	}
}

type moneyBody struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type paymentBody struct {
	SourceId       string    `json:"source_id"`
	IdempotencyKey string    `json:"idempotency_key"`
	AmountMoney    moneyBody `json:"amount_money"`
	LocationId     string    `json:"location_id,omitempty"`
	Note           string    `json:"note,omitempty"`
}

type paymentResp struct {
	Payment struct {
		Id     string `json:"id"`
		Status string `json:"status"`
	} `json:"payment"`
	Errors []struct {
		Code   string `json:"code"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// CreatePayment charges the card nonce for amountCents and returns the Square
// payment id. idemKey deduplicates retries on the Square side.
func (c *Client) CreatePayment(ctx context.Context, nonce string, amountCents int64, note, idemKey string) (string, error) {
	var resp paymentResp
	var code int
	err := gout.POST(c.endpoint + "/v2/payments").
		WithContext(ctx).
		SetTimeout(15 * time.Second).
		SetHeader(gout.H{
			"Authorization": "Bearer " + c.accessToken,
			"Content-Type":  "application/json",
		}).
		SetJSON(paymentBody{
			SourceId:       nonce,
			IdempotencyKey: idemKey,
			AmountMoney:    moneyBody{Amount: amountCents, Currency: "USD"},
			LocationId:     c.locationId,
			Note:           note,
		}).
		BindJSON(&resp).
		Code(&code).
		Do()
	if err != nil {
		return "", errors.Wrap(err, "square create payment")
	}
	if code >= 400 || len(resp.Errors) > 0 {
		detail := "unknown error"
		if len(resp.Errors) > 0 {
			detail = resp.Errors[0].Code + ": " + resp.Errors[0].Detail
		}
		zap.L().Error("square payment rejected",
			zap.Int("status", code),
			zap.String("detail", detail))
		return "", errors.Errorf("square payment rejected: %s", detail)
	}
	return resp.Payment.Id, nil
}

// GetPayment fetches the current status of a Square payment
func (c *Client) GetPayment(ctx context.Context, paymentId string) (string, error) {
	var resp paymentResp
	var code int
	err := gout.GET(c.endpoint + "/v2/payments/" + paymentId).
		WithContext(ctx).
		SetTimeout(10 * time.Second).
		SetHeader(gout.H{"Authorization": "Bearer " + c.accessToken}).
		BindJSON(&resp).
		Code(&code).
		Do()
	if err != nil {
		return "", errors.Wrap(err, "square get payment")
	}
	if code >= 400 {
		return "", errors.Errorf("square get payment: status %d", code)
	}
	return resp.Payment.Status, nil
}
