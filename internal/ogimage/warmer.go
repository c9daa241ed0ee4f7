package ogimage

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/riverfold/inkpress/internal/common"
)

// Warmer listens for post-published events and renders the image ahead of
// the first request. Failures are logged and the message acked anyway: image
// generation is a secondary artifact and must never wedge the queue.
type Warmer struct {
	mb        common.MessageConsumer
	generator *Generator
	logger    *slog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewWarmer(mb common.MessageConsumer, generator *Generator, logger *slog.Logger) *Warmer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Warmer{
		mb:        mb,
		generator: generator,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (w *Warmer) Run() {
	msgs, err := w.mb.Consume(common.PostPublishedKey, common.BlogExchange, common.PostPublishedQueue)
	if err != nil {
		w.logger.Error("could not consume post events", slog.String("error", err.Error()))
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
					Slug  string
					Title string
				}

				if err := json.Unmarshal(msg.Body, &data); err != nil {
					w.logger.Error("could not unmarshal post event", slog.String("error", err.Error()))
					msg.Ack(false)
					continue
				}

				// drop the stale render so the next request sees fresh content
				w.generator.cache.Delete(common.CacheKeyOGImage(data.Slug))

				if _, err := w.generator.Image(w.ctx, data.Slug, data.Title); err != nil {
					w.logger.Error("could not pre-render og image", slog.String("slug", data.Slug), slog.String("error", err.Error()))
				} else {
					w.logger.Info("og image rendered", slog.String("slug", data.Slug))
				}

				msg.Ack(false)

			case <-w.ctx.Done():
				w.logger.Info("stopping og image warmer due to context cancellation")
				return
			}
		}
	}()
}

func (w *Warmer) Close() {
	w.cancel()
}
