// Package smstest provides an sms.Sender that records instead of sending.
package smstest

import (
	"context"
	"sync"

	"github.com/GovarthanahariN/CartProjectBE/internal/sms"
)

var _ sms.Sender = (*Recorder)(nil)

// Message is one recorded send.
type Message struct {
	To   string
	Body string
}

// Recorder keeps every message. When Err is set, Send fails with it and
// records nothing.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	Err      error
}

// Send records the message, or returns Err when it is set.
func (r *Recorder) Send(_ context.Context, to, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.messages = append(r.messages, Message{To: to, Body: body})
	return nil
}

// Messages returns a copy of what was sent so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}
