package notifications

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/SergeyKozhin/calnotes-backend/internal/database"
	"github.com/SergeyKozhin/calnotes-backend/internal/model"
	"github.com/SergeyKozhin/calnotes-backend/internal/pkg/fcm"
	"go.uber.org/zap"
)

type Sender struct {
	db       database.PGX
	logger   *zap.SugaredLogger
	profiles profilesRepository
	push     pushService
}

type profilesRepository interface {
	GetProfilesByIDs(ctx context.Context, q database.Queryable, ids []string) ([]*model.Profile, error)
	UpdatePushToken(ctx context.Context, q database.Queryable, id string, token string) error
}

type pushService interface {
	SendMessage(ctx context.Context, m *fcm.Message) error
	SendMessageBatch(ctx context.Context, ms []*fcm.Message) ([]string, error)
}

func NewSender(
	db database.PGX,
	logger *zap.SugaredLogger,
	profiles profilesRepository,
	push pushService,
) *Sender {
	return &Sender{
		db:       db,
		logger:   logger,
		profiles: profiles,
		push:     push,
	}
}

// NotifyShare pushes a single share notification. Profiles without a push
// token or with notifications disabled are skipped silently.
func (s *Sender) NotifyShare(ctx context.Context, share *model.SharedEvent, kind Kind) error {
	messages, owners, err := s.buildMessages(ctx, []*model.SharedEvent{share}, kind)
	if err != nil {
		return err
	}

	if len(messages) == 0 {
		return nil
	}

	if err := s.push.SendMessage(ctx, messages[0]); err != nil {
		if errors.Is(err, fcm.ErrTokenUnregistered) {
			s.forgetTokens(ctx, []string{messages[0].Token}, owners)
			return nil
		}
		return fmt.Errorf("send %v notification: %w", kind, err)
	}

	return nil
}

// NotifyShares pushes kind for every share in one batch.
func (s *Sender) NotifyShares(ctx context.Context, shares []*model.SharedEvent, kind Kind) error {
	if len(shares) == 0 {
		return nil
	}

	messages, owners, err := s.buildMessages(ctx, shares, kind)
	if err != nil {
		return err
	}

	if len(messages) == 0 {
		return nil
	}

	stale, err := s.push.SendMessageBatch(ctx, messages)
	s.forgetTokens(ctx, stale, owners)
	if err != nil {
		return fmt.Errorf("send %v notifications: %w", kind, err)
	}

	return nil
}

func (s *Sender) buildMessages(ctx context.Context, shares []*model.SharedEvent, kind Kind) ([]*fcm.Message, map[string]string, error) {
	var ids []string
	idsMap := make(map[string]struct{})
	for _, sh := range shares {
		for _, id := range []string{sh.SenderID, sh.RecipientID} {
			if _, ok := idsMap[id]; !ok {
				ids = append(ids, id)
				idsMap[id] = struct{}{}
			}
		}
	}

	profiles, err := s.profiles.GetProfilesByIDs(ctx, s.db, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("get profiles: %w", err)
	}

	profilesMap := make(map[string]*model.Profile, len(profiles))
	for _, p := range profiles {
		profilesMap[p.ID] = p
	}

	var messages []*fcm.Message
	owners := make(map[string]string)
	for _, sh := range shares {
		targetID, actorID := sh.RecipientID, sh.SenderID
		if kind.toSender() {
			targetID, actorID = sh.SenderID, sh.RecipientID
		}

		target, ok := profilesMap[targetID]
		if !ok {
			s.logger.Warnw("notification target has no profile", "user_id", targetID, "share_id", sh.ID)
			continue
		}
		if !target.Notify || target.PushToken == "" {
			continue
		}

		actor := "Someone"
		if p, ok := profilesMap[actorID]; ok && p.FullName != "" {
			actor = p.FullName
		}

		title, body := kind.text(actor, sh.EventData.Title)
		messages = append(messages, &fcm.Message{
			Token: target.PushToken,
			Title: title,
			Body:  body,
			Data: map[string]string{
				"notification_type": kind.String(),
				"share_id":          strconv.FormatInt(sh.ID, 10),
				"event_id":          sh.EventID,
				"event_title":       sh.EventData.Title,
			},
		})
		owners[target.PushToken] = target.ID
	}

	return messages, owners, nil
}

func (s *Sender) forgetTokens(ctx context.Context, tokens []string, owners map[string]string) {
	for _, token := range tokens {
		userID, ok := owners[token]
		if !ok {
			continue
		}

		if err := s.profiles.UpdatePushToken(ctx, s.db, userID, ""); err != nil {
			s.logger.Errorw("failed to clear stale push token", "user_id", userID, "err", err)
			continue
		}
		s.logger.Infow("cleared stale push token", "user_id", userID)
	}
}

// LogPusher stands in for FCM when push delivery is disabled.
type LogPusher struct {
	Logger *zap.SugaredLogger
}

func (p *LogPusher) SendMessage(_ context.Context, m *fcm.Message) error {
	p.Logger.Debugw("push disabled, dropping message", "title", m.Title, "data", m.Data)
	return nil
}

func (p *LogPusher) SendMessageBatch(_ context.Context, ms []*fcm.Message) ([]string, error) {
	p.Logger.Debugw("push disabled, dropping messages", "count", len(ms))
	return nil, nil
}
