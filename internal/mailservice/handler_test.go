package mailservice

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSendCommentNotification(t *testing.T) {
	mockMC := new(MockMessageConsumer)
	mockMailer := new(MockMailer)
	mockLogger := new(MockLogger)

	expectedArgs := []interface{}{slog.Attr{Key: "slug", Value: slog.StringValue("hello-world")}}
	mockLogger.On("Info", "comment notification sent", expectedArgs).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())

	s := &MailService{
		mb:     mockMC,
		m:      mockMailer,
		owner:  "owner@example.com",
		logger: mockLogger,
		ctx:    ctx,
		cancel: cancel,
	}

	go s.SendCommentNotification()

	time.Sleep(1 * time.Second)

	if mockMailer.IsCalled() {
		recipient := mockMailer.GetRecipient()
		assert.Equal(t, "owner@example.com", recipient, "expected mail to go to the owner address")
	}

	// verify that the logger.Info method was called
	mockLogger.AssertExpectations(t)

	t.Cleanup(func() {
		s.Close()
	})
}
