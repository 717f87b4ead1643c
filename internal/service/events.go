package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nikolaygtitov/hotel-ops/internal/model"
	"github.com/nikolaygtitov/hotel-ops/internal/queue"
)

// Publisher delivers stay events after their transaction has committed.
// queue.Publisher implements it.
type Publisher interface {
	Publish(ctx context.Context, ev queue.StayEvent) error
}

const publishTimeout = 3 * time.Second

func stayEvent(kind string, r model.Reservation, staffIDs []int64, charge int64, at time.Time) queue.StayEvent {
	return queue.StayEvent{
		Type:          kind,
		ReservationID: r.ID,
		HotelID:       r.HotelID,
		RoomNumber:    r.RoomNumber,
		CustomerID:    r.CustomerID,
		StaffIDs:      staffIDs,
		ChargeCents:   charge,
		OccurredAt:    at.UTC().Format(time.RFC3339),
	}
}

// publish is best effort: the reservation is already committed, so a
// broker failure is logged and otherwise ignored.
func (s *ReservationService) publish(ctx context.Context, events []queue.StayEvent) {
	if s.publisher == nil || len(events) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	for _, ev := range events {
		if err := s.publisher.Publish(ctx, ev); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"event":          ev.Type,
				"reservation_id": ev.ReservationID,
			}).Warn("stay event not published")
		}
	}
}
