package twilio

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	twilio "github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SignatureHeader is set by Twilio on every webhook request.
const SignatureHeader = "X-Twilio-Signature"

// Client wraps the Twilio messaging operations used by the WhatsApp channel.
type Client struct {
	client       *twilio.RestClient
	validator    twclient.RequestValidator
	fromWhatsApp string
}

// New creates a Twilio client bound to the configured WhatsApp sender number.
func New(accountSID, authToken, fromWhatsApp string) *Client {
	return &Client{
		client:       twilio.NewRestClientWithParams(twilio.ClientParams{Username: accountSID, Password: authToken}),
		validator:    twclient.NewRequestValidator(authToken),
		fromWhatsApp: fromWhatsApp,
	}
}

// SendMessage sends a WhatsApp message via Twilio's API. The SDK call does
// not take a context.
func (c *Client) SendMessage(_ context.Context, to, body string) error {
	if c.client == nil {
		return fmt.Errorf("twilio client not initialised")
	}

	sender := NormalizeWhatsAppAddress(c.fromWhatsApp)
	if sender == "" {
		return fmt.Errorf("twilio sender WhatsApp number is not configured")
	}

	recipient := NormalizeWhatsAppAddress(to)
	if recipient == "" {
		return fmt.Errorf("recipient number missing or invalid")
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(recipient)
	params.SetFrom(sender)
	params.SetBody(body)

	if _, err := c.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send message error: %w", err)
	}
	return nil
}

// ValidSignature reports whether a webhook request was signed with our auth token.
func (c *Client) ValidSignature(fullURL string, form url.Values, signature string) bool {
	if signature == "" {
		return false
	}
	return c.validator.Validate(fullURL, DecodeForm(form), signature)
}

// DecodeForm flattens the POST form into the map shape the validator expects.
func DecodeForm(values url.Values) map[string]string {
	result := make(map[string]string, len(values))
	for key, value := range values {
		if len(value) > 0 {
			result[key] = value[0]
		}
	}
	return result
}

// SenderID strips the whatsapp: prefix Twilio puts on the From number.
func SenderID(from string) string {
	return strings.TrimPrefix(strings.TrimSpace(from), "whatsapp:")
}

// NormalizeWhatsAppAddress returns number in whatsapp:+E164 form.
func NormalizeWhatsAppAddress(number string) string {
	trimmed := strings.TrimSpace(number)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "whatsapp:") {
		return trimmed
	}
	if strings.HasPrefix(trimmed, "+") {
		return "whatsapp:" + trimmed
	}
	return "whatsapp:+" + trimmed
}
