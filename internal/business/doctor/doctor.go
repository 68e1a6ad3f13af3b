// Package doctor finds and repairs shares that no longer match the event
// rows they point at.
package doctor

import (
	"context"
	"fmt"

	"github.com/SergeyKozhin/calnotes-backend/internal/database"
	"github.com/SergeyKozhin/calnotes-backend/internal/identity"
	"github.com/SergeyKozhin/calnotes-backend/internal/metrics"
	"github.com/SergeyKozhin/calnotes-backend/internal/model"
	"github.com/SergeyKozhin/calnotes-backend/internal/refresh"
	"go.uber.org/zap"
)

type Service struct {
	db               database.PGX
	logger           *zap.SugaredLogger
	eventsRepository eventsRepository
	sharesRepository sharesRepository
	refresh          refreshPublisher
}

type eventsRepository interface {
	GetEventsByIDs(ctx context.Context, q database.Queryable, ids []string) ([]*model.Event, error)
}

type sharesRepository interface {
	GetShares(ctx context.Context, q database.Queryable, filter model.SharesFilter) ([]*model.SharedEvent, error)
	UpdateSnapshot(ctx context.Context, q database.Queryable, eventID string, snapshot model.EventSnapshot) error
	DeleteByIDs(ctx context.Context, q database.Queryable, ids []int64) (int64, error)
}

type refreshPublisher interface {
	Publish(ctx context.Context, userID, tab string) error
}

func NewService(
	db database.PGX,
	logger *zap.SugaredLogger,
	eventsRepo eventsRepository,
	sharesRepo sharesRepository,
	refresh refreshPublisher,
) *Service {
	return &Service{
		db:               db,
		logger:           logger,
		eventsRepository: eventsRepo,
		sharesRepository: sharesRepo,
		refresh:          refresh,
	}
}

type Finding struct {
	Share *model.SharedEvent
	// ID is the classified event id. Zero for malformed ids.
	ID identity.ID
}

type StaleFinding struct {
	Finding
	Event *model.Event
}

type Report struct {
	Checked int
	// Orphaned shares point at an event row that no longer exists.
	Orphaned []Finding
	// Stale shares carry a snapshot that differs from the live row.
	Stale []StaleFinding
	// Malformed shares carry an event id that does not classify.
	Malformed []Finding
}

func (r *Report) Clean() bool {
	return len(r.Orphaned) == 0 && len(r.Stale) == 0 && len(r.Malformed) == 0
}

func (s *Service) Diagnose(ctx context.Context) (*Report, error) {
	shares, err := s.sharesRepository.GetShares(ctx, s.db, model.SharesFilter{})
	if err != nil {
		return nil, fmt.Errorf("sharesRepository.GetShares: %w", err)
	}

	report := &Report{Checked: len(shares)}

	var ids []string
	classified := make([]Finding, 0, len(shares))
	for _, sh := range shares {
		cid, err := identity.Classify(sh.EventID)
		if err != nil {
			report.Malformed = append(report.Malformed, Finding{Share: sh})
			continue
		}
		classified = append(classified, Finding{Share: sh, ID: cid})
		ids = append(ids, sh.EventID)
	}

	events, err := s.eventsRepository.GetEventsByIDs(ctx, s.db, ids)
	if err != nil {
		return nil, fmt.Errorf("eventsRepository.GetEventsByIDs: %w", err)
	}

	eventsMap := make(map[string]*model.Event, len(events))
	for _, e := range events {
		eventsMap[e.ID] = e
	}

	for _, f := range classified {
		event, ok := eventsMap[f.Share.EventID]
		if !ok {
			report.Orphaned = append(report.Orphaned, f)
			continue
		}

		if f.Share.EventData.Differs(event.Snapshot()) {
			report.Stale = append(report.Stale, StaleFinding{Finding: f, Event: event})
		}
	}

	metrics.DoctorFindings.WithLabelValues("orphaned").Add(float64(len(report.Orphaned)))
	metrics.DoctorFindings.WithLabelValues("stale").Add(float64(len(report.Stale)))
	metrics.DoctorFindings.WithLabelValues("malformed").Add(float64(len(report.Malformed)))

	return report, nil
}

type RepairResult struct {
	Deleted   int64
	Refreshed int
}

// Repair deletes orphaned shares and rewrites stale snapshots. Malformed
// shares are left for manual inspection.
func (s *Service) Repair(ctx context.Context, report *Report) (*RepairResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	res := &RepairResult{}
	affected := make(map[string]struct{})

	ids := make([]int64, len(report.Orphaned))
	for i, f := range report.Orphaned {
		ids[i] = f.Share.ID
		affected[f.Share.RecipientID] = struct{}{}
	}

	res.Deleted, err = s.sharesRepository.DeleteByIDs(ctx, tx, ids)
	if err != nil {
		return nil, fmt.Errorf("sharesRepository.DeleteByIDs: %w", err)
	}

	refreshed := make(map[string]struct{})
	for _, f := range report.Stale {
		affected[f.Share.RecipientID] = struct{}{}
		if _, ok := refreshed[f.Event.ID]; ok {
			continue
		}

		if err := s.sharesRepository.UpdateSnapshot(ctx, tx, f.Event.ID, f.Event.Snapshot()); err != nil {
			return nil, fmt.Errorf("sharesRepository.UpdateSnapshot: %w", err)
		}
		refreshed[f.Event.ID] = struct{}{}
	}
	res.Refreshed = len(refreshed)

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	for userID := range affected {
		if err := s.refresh.Publish(ctx, userID, refresh.TabShared); err != nil {
			s.logger.Errorw("failed to publish refresh", "user_id", userID, "err", err)
		}
	}

	return res, nil
}

// Run diagnoses and, when repair is set, repairs. Findings are logged.
func (s *Service) Run(ctx context.Context, repair bool) (*Report, error) {
	report, err := s.Diagnose(ctx)
	if err != nil {
		return nil, err
	}

	for _, f := range report.Orphaned {
		s.logger.Warnw("orphaned share", "share_id", f.Share.ID, "event_id", f.Share.EventID, "kind", f.ID.Kind.String(), "base_id", f.ID.BaseID)
	}
	for _, f := range report.Stale {
		s.logger.Infow("stale share snapshot", "share_id", f.Share.ID, "event_id", f.Share.EventID)
	}
	for _, f := range report.Malformed {
		s.logger.Warnw("malformed share event id", "share_id", f.Share.ID, "event_id", f.Share.EventID)
	}

	s.logger.Infow("share diagnosis done",
		"checked", report.Checked,
		"orphaned", len(report.Orphaned),
		"stale", len(report.Stale),
		"malformed", len(report.Malformed),
	)

	if !repair || report.Clean() {
		return report, nil
	}

	res, err := s.Repair(ctx, report)
	if err != nil {
		return report, err
	}
	s.logger.Infow("share repair done", "deleted", res.Deleted, "refreshed", res.Refreshed)

	return report, nil
}
