package models

import "time"

// WebhookSubscription is a registered outbound notification URL. Delivery is
// the provider's responsibility; this only tracks registrations.
type WebhookSubscription struct {
	ID        string `gorm:"primarykey;size:36"`
	URL       string `gorm:"not null"`
	CreatedBy uint   `gorm:"index"`
	CreatedAt time.Time
}
