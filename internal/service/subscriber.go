package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/lettora/lettora/internal/domain/agreement"
	"github.com/lettora/lettora/internal/port/messagequeue"
)

// StartInvalidationSubscriber listens for sections-changed events from other
// instances and drops the local cache generation for the affected scope. The
// returned function cancels the subscription.
func StartInvalidationSubscriber(ctx context.Context, q messagequeue.Queue, sections *SectionService) (func(), error) {
	cancel, err := q.Subscribe(ctx, messagequeue.SubjectSectionsChanged, func(_ string, data []byte) error {
		var evt messagequeue.SectionsChangedEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			return fmt.Errorf("decode sections-changed event: %w", err)
		}
		sections.InvalidateScope(evt.AgencyID, agreement.Type(evt.Type))
		slog.Debug("cache generation dropped",
			"agency_id", evt.AgencyID,
			"agreement_type", evt.Type,
		)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", messagequeue.SubjectSectionsChanged, err)
	}
	return cancel, nil
}
