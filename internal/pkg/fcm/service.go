package fcm

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"golang.org/x/sync/errgroup"
)

type Service struct {
	client *messaging.Client
}

func NewService(ctx context.Context) (*Service, error) {
	app, err := firebase.NewApp(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtaining messaging client: %w", err)
	}

	return &Service{client: client}, nil
}

type Message struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

func (m *Message) toMessaging() *messaging.Message {
	res := &messaging.Message{
		Data:  m.Data,
		Token: m.Token,
	}
	if m.Title != "" || m.Body != "" {
		res.Notification = &messaging.Notification{Title: m.Title, Body: m.Body}
	}
	return res
}

// FCM accepts at most 500 messages per call.
const batchSize = 500

// SendMessageBatch sends the messages in parallel batches and reports how many
// were rejected by FCM. Rejections of single tokens are not an error.
func (s *Service) SendMessageBatch(ctx context.Context, ms []*Message) (int, error) {
	messages := make([]*messaging.Message, len(ms))
	for i, m := range ms {
		messages[i] = m.toMessaging()
	}

	failures := make([]int, (len(messages)+batchSize-1)/batchSize)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < len(messages); i += batchSize {
		batch := i / batchSize
		from := i
		to := i + batchSize
		if to > len(messages) {
			to = len(messages)
		}

		g.Go(func() error {
			resp, err := s.client.SendEach(ctx, messages[from:to])
			if err != nil {
				return fmt.Errorf("send message: %w", err)
			}
			failures[batch] = resp.FailureCount
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}

	failed := 0
	for _, n := range failures {
		failed += n
	}

	return failed, nil
}
