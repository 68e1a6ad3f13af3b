package events

import (
	"context"
	"fmt"

	"github.com/SergeyKozhin/calnotes-backend/internal/identity"
	"github.com/SergeyKozhin/calnotes-backend/internal/metrics"
	"github.com/SergeyKozhin/calnotes-backend/internal/model"
	"github.com/SergeyKozhin/calnotes-backend/internal/refresh"
)

// DeleteEvent removes id. A plain id removes that row only, a composite
// instance id removes the base row and every instance of its series. Shares
// of the removed rows go in the same transaction. It returns the number of
// event rows removed.
func (s *Service) DeleteEvent(ctx context.Context, ownerID, id string) (int64, error) {
	cid, err := identity.Classify(id)
	if err != nil {
		return 0, fmt.Errorf("classify %q: %w", id, err)
	}

	if cid.Kind == identity.KindInstance {
		return s.deleteSeries(ctx, ownerID, cid.BaseID)
	}

	return s.deleteSingle(ctx, ownerID, id)
}

// DeleteSeries removes every row of the series id belongs to, whatever the
// kind of id.
func (s *Service) DeleteSeries(ctx context.Context, ownerID, id string) (int64, error) {
	cid, err := identity.Classify(id)
	if err != nil {
		return 0, fmt.Errorf("classify %q: %w", id, err)
	}

	return s.deleteSeries(ctx, ownerID, cid.BaseID)
}

func (s *Service) deleteSingle(ctx context.Context, ownerID, id string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	n, err := s.eventsRepository.DeleteEvent(ctx, tx, id, ownerID)
	if err != nil {
		return 0, fmt.Errorf("eventsRepository.DeleteEvent: %w", err)
	}
	if n == 0 {
		return 0, model.ErrNoRecord
	}

	shares, err := s.sharesRepository.GetShares(ctx, tx, model.SharesFilter{EventIDs: []string{id}})
	if err != nil {
		return 0, fmt.Errorf("sharesRepository.GetShares: %w", err)
	}

	if _, err := s.sharesRepository.DeleteByEvent(ctx, tx, id); err != nil {
		return 0, fmt.Errorf("sharesRepository.DeleteByEvent: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}

	recipients := make([]string, len(shares))
	for i, sh := range shares {
		recipients[i] = sh.RecipientID
	}

	metrics.EventsDeleted.WithLabelValues(metrics.ModeSingle).Add(float64(n))
	s.publish(ctx, ownerID, refresh.TabCalendar)
	s.publishAll(ctx, recipients, refresh.TabShared)

	return n, nil
}

func (s *Service) deleteSeries(ctx context.Context, ownerID, baseID string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	n, err := s.eventsRepository.DeleteSeries(ctx, tx, baseID, ownerID)
	if err != nil {
		return 0, fmt.Errorf("eventsRepository.DeleteSeries: %w", err)
	}
	if n == 0 {
		return 0, model.ErrNoRecord
	}

	recipients, err := s.sharesRepository.GetSeriesRecipients(ctx, tx, baseID)
	if err != nil {
		return 0, fmt.Errorf("sharesRepository.GetSeriesRecipients: %w", err)
	}

	if _, err := s.sharesRepository.DeleteBySeries(ctx, tx, baseID); err != nil {
		return 0, fmt.Errorf("sharesRepository.DeleteBySeries: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}

	metrics.EventsDeleted.WithLabelValues(metrics.ModeSeries).Add(float64(n))
	s.logger.Debugw("series deleted", "base_id", baseID, "rows", n)
	s.publish(ctx, ownerID, refresh.TabCalendar)
	s.publishAll(ctx, recipients, refresh.TabShared)

	return n, nil
}
