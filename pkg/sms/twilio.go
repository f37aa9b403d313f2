package sms

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioSender delivers alert messages as SMS through the Twilio API.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

// NewTwilioSender builds a sender with the given account credentials and
// sending number. The Twilio SDK does not take a context, so the per-call
// bound lives on its HTTP client timeout instead.
func NewTwilioSender(accountSID, authToken, from string, timeout time.Duration) *TwilioSender {
	base := &twilioclient.Client{
		Credentials: twilioclient.NewCredentials(accountSID, authToken),
		HTTPClient:  &http.Client{Timeout: timeout},
	}
	base.SetAccountSid(accountSID)
	client := twilio.NewRestClientWithParams(twilio.ClientParams{Client: base})
	return &TwilioSender{client: client, from: from}
}

// Send delivers one SMS to one recipient.
func (s *TwilioSender) Send(_ context.Context, recipient, text string) error {
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(recipient)
	params.SetFrom(s.from)
	params.SetBody(text)
	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send to %s: %w", recipient, err)
	}
	return nil
}
