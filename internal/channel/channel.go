package channel

import "context"

// Channel is the outbound notification delivery port.
type Channel interface {
	Send(ctx context.Context, msg OutboundMessage) (*Receipt, error)
}

// OutboundMessage is one composed notification addressed to a merchant.
type OutboundMessage struct {
	To      string
	Subject string
	HTML    string
}

// Receipt stores relay call metadata for audit and persistence.
type Receipt struct {
	DeliveryID string
	StatusCode int
}
