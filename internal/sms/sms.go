// Package sms delivers text messages through an external gateway.
package sms

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Sender delivers body to the E.164 number to.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// TwilioSender sends messages from a fixed Twilio number.
type TwilioSender struct {
	client *twilio.RestClient
	from   string
}

var _ Sender = (*TwilioSender)(nil)

// NewTwilioSender builds a sender from account credentials and the sender number.
func NewTwilioSender(accountSID, authToken, from string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSender{client: client, from: from}
}

// Send creates a message resource. The Twilio client has no context support,
// so ctx is only checked before the call.
func (s *TwilioSender) Send(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio create message: %w", err)
	}
	if resp.ErrorCode != nil {
		return fmt.Errorf("twilio error code %d", *resp.ErrorCode)
	}
	return nil
}
