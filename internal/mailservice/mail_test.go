package mailservice

import (
	"bytes"
	"testing"

	"github.com/go-mail/mail/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSendEmail(t *testing.T) {
	mockParser := new(MockTemplate)
	mockDialer := new(MockDialer)

	recipient := "owner@example.com"
	mailer := Mail{
		dialer: mockDialer,
		parser: mockParser,
		sender: "noreply@example.com",
	}

	subject := bytes.NewBufferString("New comment on hello-world")
	plainBody := bytes.NewBufferString("anon left a new comment")
	htmlBody := bytes.NewBufferString("<p>anon left a new comment</p>")
	mockParser.On("ParseTemplate", "comment_notification.html", mock.Anything).Return(subject, plainBody, htmlBody, nil)

	msg := mail.NewMessage()
	msg.SetHeader("From", mailer.sender)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", subject.String())
	msg.SetBody("text/plain", plainBody.String())
	msg.AddAlternative("text/html", htmlBody.String())

	mockDialer.On("DialAndSend", mock.AnythingOfType("[]*mail.Message")).Return(nil)

	err := mailer.send(recipient, msg, "comment_notification.html")
	assert.NoError(t, err)

	mockParser.AssertExpectations(t)
	mockDialer.AssertExpectations(t)
}
