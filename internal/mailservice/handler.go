package mailservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sushihentaime/postboard/internal/common"
	"github.com/sushihentaime/postboard/internal/postservice"
	"golang.org/x/exp/rand"
)

const postPublishedTemplate = "post_published.html"

var defaultRetryPolicy = retryPolicy{
	maxRetries: 5,
	baseDelay:  500 * time.Millisecond,
}

// NewMailService builds the service that emails owners once their post is published.
// baseURL is the public origin used to build post links, e.g. https://postboard.example.com.
func NewMailService(mb common.MessageConsumer, host, username, password, sender string, port int, baseURL string, logger *slog.Logger) *MailService {
	ctx, cancel := context.WithCancel(context.Background())
	return &MailService{
		mb:      mb,
		m:       NewMailer(host, port, username, password, sender, NewTemplate()),
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		retry:   defaultRetryPolicy,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// NotifyPostPublished starts consuming post.created events in the background. It
// returns once the consumer is registered.
func (s *MailService) NotifyPostPublished() error {
	msgs, err := s.mb.Consume(common.PostCreatedKey, common.PostExchange, common.PostCreatedQueue)
	if err != nil {
		s.logger.Error("could not consume message", slog.String("error", err.Error()))
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				s.handlePostCreated(msg)

			case <-s.ctx.Done():
				s.logger.Info("stopping NotifyPostPublished due to context cancellation")
				return
			}
		}
	}()

	return nil
}

func (s *MailService) handlePostCreated(msg amqp.Delivery) {
	var event postservice.PostEvent
	err := json.Unmarshal(msg.Body, &event)
	if err != nil {
		s.logger.Error("could not unmarshal message", slog.String("error", err.Error()))
		// a malformed body will never decode, so drop it
		msg.Nack(false, false)
		return
	}

	if event.OwnerEmail == "" {
		s.logger.Info("post owner has no email, skipping", slog.String("slug", event.Slug))
		msg.Ack(false)
		return
	}

	data := postPublishedData{
		Username: event.OwnerUsername,
		Title:    event.Title,
		PostURL:  s.postURL(event.Slug),
	}

	for attempt := 0; attempt < s.retry.maxRetries; attempt++ {
		err = s.m.send(event.OwnerEmail, data, postPublishedTemplate)
		if err == nil {
			s.logger.Info("post published email sent", slog.String("email", event.OwnerEmail))
			msg.Ack(false)
			return
		}

		delay := s.retry.delay(attempt)
		s.logger.Info("delaying post published email", slog.String("email", event.OwnerEmail), slog.Int("attempt", attempt), slog.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-s.ctx.Done():
			msg.Nack(false, true)
			return
		}
	}

	s.logger.Error("could not send post published email", slog.String("email", event.OwnerEmail), slog.String("error", err.Error()))
	msg.Ack(false)
}

func (s *MailService) postURL(slug string) string {
	return s.baseURL + "/v1/posts/" + url.PathEscape(slug)
}

func (p retryPolicy) delay(attempt int) time.Duration {
	return time.Duration(rand.Int63n(int64(p.baseDelay) << uint(attempt)))
}

// Close stops the consumer and waits for the in-flight message to finish.
func (s *MailService) Close() {
	s.cancel()
	s.wg.Wait()
}
