package mail

import (
	"context"
	"errors"
	"net/mail"
)

// Attachment is a file carried by a Message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is an outbound email.
type Message struct {
	To          []string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Validate checks that msg has a parseable recipient list and some content.
func (m Message) Validate() error {
	if len(m.To) == 0 {
		return errors.New("message has no recipients")
	}
	for _, to := range m.To {
		if _, err := mail.ParseAddress(to); err != nil {
			return err
		}
	}
	if m.Text == "" && m.HTML == "" && len(m.Attachments) == 0 {
		return errors.New("message has no content")
	}
	return nil
}
