package channel

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultRelayTimeout = 30 * time.Second

type relayRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type relayResponse struct {
	ID string `json:"id"`
}

// MailRelay delivers rich-text mail through an HTTP mail relay API.
// The sender identity is configured out of band and applied to every message.
type MailRelay struct {
	client   *resty.Client
	endpoint string
	from     string
}

func NewMailRelay(endpoint, token, from string) (*MailRelay, error) {
	client := resty.New()
	client.SetTimeout(defaultRelayTimeout)
	client.SetRetryCount(0)
	if strings.TrimSpace(token) != "" {
		client.SetAuthToken(token)
	}

	return NewMailRelayWithClient(endpoint, from, client)
}

func NewMailRelayWithClient(endpoint, from string, client *resty.Client) (*MailRelay, error) {
	trimmedEndpoint := strings.TrimSpace(endpoint)
	if trimmedEndpoint == "" {
		return nil, fmt.Errorf("relay endpoint is required")
	}
	if _, err := url.ParseRequestURI(trimmedEndpoint); err != nil {
		return nil, fmt.Errorf("invalid relay endpoint: %w", err)
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("sender identity is required")
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultRelayTimeout)
	}
	client.SetRetryCount(0)

	return &MailRelay{
		client:   client,
		endpoint: trimmedEndpoint,
		from:     strings.TrimSpace(from),
	}, nil
}

func (r *MailRelay) Send(ctx context.Context, msg OutboundMessage) (*Receipt, error) {
	if r == nil || r.client == nil {
		return nil, fmt.Errorf("relay is not initialized")
	}
	if strings.TrimSpace(msg.To) == "" {
		return nil, &ChannelError{Message: "destination address is required"}
	}

	reqBody := relayRequest{
		From:    r.from,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	}

	var parsed relayResponse
	response, err := r.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(reqBody).
		SetResult(&parsed).
		Post(r.endpoint)
	if err != nil {
		return nil, &ChannelError{
			Message: "relay request failed",
			Cause:   err,
		}
	}
	if response == nil {
		return nil, &ChannelError{Message: "relay returned empty response"}
	}

	statusCode := response.StatusCode()
	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		return nil, &ChannelError{
			StatusCode: statusCode,
			Message:    strings.TrimSpace(response.String()),
		}
	}

	return &Receipt{
		DeliveryID: deliveryID(&parsed, response),
		StatusCode: statusCode,
	}, nil
}

func deliveryID(parsed *relayResponse, response *resty.Response) string {
	if parsed != nil && strings.TrimSpace(parsed.ID) != "" {
		return strings.TrimSpace(parsed.ID)
	}
	if response == nil {
		return ""
	}

	for _, key := range []string{"X-Message-ID", "X-Message-Id", "X-Request-ID", "X-Request-Id"} {
		if value := strings.TrimSpace(response.Header().Get(key)); value != "" {
			return value
		}
	}

	return ""
}
