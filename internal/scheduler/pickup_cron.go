package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/freightflow/freight-marketplace/internal/models"
	"github.com/freightflow/freight-marketplace/internal/repository"
	"github.com/freightflow/freight-marketplace/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// PickupReminder scans for shipments approaching their pickup date and
// reminds the assigned carrier.
type PickupReminder struct {
	shipments     *repository.ShipmentRepository
	notifications *services.NotificationService
	notifRepo     *repository.NotificationRepository
}

// NewPickupReminder creates a new instance of PickupReminder.
func NewPickupReminder(shipments *repository.ShipmentRepository, notifications *services.NotificationService, notifRepo *repository.NotificationRepository) *PickupReminder {
	return &PickupReminder{
		shipments:     shipments,
		notifications: notifications,
		notifRepo:     notifRepo,
	}
}

// Run notifies the assigned carrier of every active shipment whose pickup is
// due within the next 24 hours. A carrier already reminded within the last
// 12 hours is skipped.
func (p *PickupReminder) Run(ctx context.Context) error {
	deadline := time.Now().Add(24 * time.Hour)
	shipments, err := p.shipments.GetShipmentsWithPickupBefore(ctx, deadline)
	if err != nil {
		return fmt.Errorf("failed to fetch upcoming pickups: %v", err)
	}

	now := time.Now()
	for _, shipment := range shipments {
		if shipment.AssignedCarrierID == nil {
			continue
		}

		existing, err := p.notifRepo.GetLatestByType(ctx, *shipment.AssignedCarrierID, models.NotificationPickupDueSoon)
		if err == nil && existing != nil && now.Sub(existing.CreatedAt) < 12*time.Hour {
			continue // already reminded recently
		}

		_, err = p.notifications.NotifyUser(ctx, *shipment.AssignedCarrierID, models.NotificationPickupDueSoon,
			"Pickup Due Soon",
			fmt.Sprintf("Shipment %s is due for pickup by %s.", shipment.ReferenceCode, shipment.PickupDate.Format("Jan 2, 15:04")),
			map[string]interface{}{"shipmentId": shipment.ID.Hex()},
		)
		if err != nil {
			logrus.WithError(err).Warnf("Failed to send pickup reminder for shipment %s", shipment.ID.Hex())
		}
	}

	return nil
}

// StartPickupCron schedules the hourly pickup reminder scan.
func StartPickupCron(reminder *PickupReminder) *cron.Cron {
	c := cron.New()

	c.AddFunc("@hourly", func() {
		if err := reminder.Run(context.Background()); err != nil {
			logrus.WithError(err).Error("Pickup reminder scan failed")
		}
	})

	c.Start()
	return c
}
