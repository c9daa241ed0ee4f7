package mailservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"golang.org/x/exp/rand"

	"github.com/riverfold/inkpress/internal/common"
)

func NewMailService(mb common.MessageConsumer, host, username, password, sender, owner string, port int, logger *slog.Logger) *MailService {
	ctx, cancel := context.WithCancel(context.Background())
	return &MailService{
		mb:     mb,
		m:      NewMailer(host, port, username, password, sender, NewTemplate()),
		owner:  owner,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// SendCommentNotification mails the site owner whenever a new comment lands.
func (s *MailService) SendCommentNotification() {
	msgs, err := s.mb.Consume(common.CommentCreatedKey, common.BlogExchange, common.CommentCreatedQueue)
	if err != nil {
		s.logger.Error("could not consume message", slog.String("error", err.Error()))
		return
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				var data struct {
					Slug   string
					Author string
					Body   string
				}

				err := json.Unmarshal(msg.Body, &data)
				if err != nil {
					s.logger.Error("could not unmarshal message", slog.String("error", err.Error()))
					continue
				}

				payload := struct {
					Slug   string
					Author string
					Body   string
				}{
					Slug:   data.Slug,
					Author: data.Author,
					Body:   data.Body,
				}

				// using exponential backoff with jitter
				const maxRetries = 5
				const baseDelay = 500 * time.Millisecond

				var attempt int
				for attempt = 0; attempt < maxRetries; attempt++ {
					err = s.m.send(s.owner, payload, "comment_notification.html")
					if err == nil {
						s.logger.Info("comment notification sent", slog.String("slug", data.Slug))
						msg.Ack(false)
						break
					}

					delay := time.Duration(rand.Int63n(int64(baseDelay) << uint(attempt)))
					s.logger.Info("delaying comment notification", slog.String("slug", data.Slug), slog.Int("attempt", attempt), slog.Duration("delay", delay))
					time.Sleep(delay)
				}

				if attempt == maxRetries {
					s.logger.Error("could not send comment notification", slog.String("slug", data.Slug))
					msg.Ack(false)
				}

			case <-s.ctx.Done():
				s.logger.Info("stopping SendCommentNotification due to context cancellation")
				return
			}
		}
	}()
}

func (s *MailService) Close() {
	s.cancel()
}
