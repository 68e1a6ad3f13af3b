package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

const runTimeout = 5 * time.Minute

// Schedule registers a periodic Run on c.
func (s *Service) Schedule(c *cron.Cron, spec string, repair bool) error {
	if _, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		if _, err := s.Run(ctx, repair); err != nil {
			s.logger.Errorw("scheduled share diagnosis failed", "err", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}

	return nil
}
