package fcm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"golang.org/x/sync/errgroup"
)

// ErrTokenUnregistered means the device token is no longer valid and should
// be forgotten.
var ErrTokenUnregistered = errors.New("push token is not registered")

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

func (m *Message) toFCM() *messaging.Message {
	msg := &messaging.Message{
		Data:  m.Data,
		Token: m.Token,
	}
	if m.Title != "" || m.Body != "" {
		msg.Notification = &messaging.Notification{
			Title: m.Title,
			Body:  m.Body,
		}
	}

	return msg
}

func (s *Service) SendMessage(ctx context.Context, m *Message) error {
	if _, err := s.client.Send(ctx, m.toFCM()); err != nil {
		if messaging.IsRegistrationTokenNotRegistered(err) {
			return fmt.Errorf("send message: %w", ErrTokenUnregistered)
		}
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

const batchSize = 500

// SendMessageBatch sends ms in chunks of batchSize and returns the tokens
// FCM reported as unregistered.
func (s *Service) SendMessageBatch(ctx context.Context, ms []*Message) ([]string, error) {
	messages := make([]*messaging.Message, len(ms))
	for i, m := range ms {
		messages[i] = m.toFCM()
	}

	var mu sync.Mutex
	var stale []string

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < len(messages); i += batchSize {
		from := i
		to := i + batchSize
		if to > len(messages) {
			to = len(messages)
		}

		g.Go(func() error {
			resp, err := s.client.SendAll(ctx, messages[from:to])
			if err != nil {
				return fmt.Errorf("send batch: %w", err)
			}

			mu.Lock()
			defer mu.Unlock()
			for j, r := range resp.Responses {
				if !r.Success && messaging.IsRegistrationTokenNotRegistered(r.Error) {
					stale = append(stale, messages[from+j].Token)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return stale, err
	}

	return stale, nil
}
