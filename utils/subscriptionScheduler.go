package utils

import (
	"courseforge/database"
	"courseforge/models"
	"log"
	"time"

	"github.com/jinzhu/now"
	"github.com/robfig/cron/v3"
)

// InitializeSubscriptionScheduler sets up the subscription expiry scheduler
func InitializeSubscriptionScheduler() {
	log.Println("[SCHEDULER] Initializing subscription scheduler...")

	c := cron.New()

	// Run daily at 9 AM to check expiring subscriptions
	c.AddFunc("0 9 * * *", func() {
		log.Println("[SCHEDULER] Running daily subscription check...")
		ProcessExpiringSubscriptions()
		ExpireSubscriptions()
	})

	c.Start()
	log.Println("[SCHEDULER] Subscription scheduler started - runs daily at 9 AM")
}

// PlanExpiry computes when a plan started now would expire, aligned to the
// end of the covered calendar period.
func PlanExpiry(plan string, from time.Time) time.Time {
	n := now.New(from)
	switch plan {
	case models.PeriodYearly:
		return n.EndOfYear()
	default:
		return n.EndOfMonth()
	}
}

// ProcessExpiringSubscriptions sends reminder emails for subscriptions expiring in 2 days
func ProcessExpiringSubscriptions() {
	db := database.Database.Db
	current := time.Now()
	twoDaysFromNow := current.AddDate(0, 0, 2)

	// Find subscriptions expiring in ~2 days that haven't received a reminder
	var expiring []models.Subscription
	if err := db.
		Where("status = ? AND reminder_sent = false AND expires_at IS NOT NULL", models.SubscriptionActive).
		Where("expires_at BETWEEN ? AND ?", current, twoDaysFromNow).
		Find(&expiring).Error; err != nil {
		log.Printf("[SCHEDULER] Error fetching expiring subscriptions: %v", err)
		return
	}

	log.Printf("[SCHEDULER] Found %d subscriptions expiring soon", len(expiring))

	for _, sub := range expiring {
		// Get user details
		var user models.User
		if err := db.Where("id = ?", sub.UserID).First(&user).Error; err != nil {
			log.Printf("[SCHEDULER] Error fetching user %d: %v", sub.UserID, err)
			continue
		}

		// Send reminder email
		SendSubscriptionExpiryReminder(user.Email, user.Name, sub.ExpiresAt)

		// Mark reminder as sent
		db.Model(&sub).Update("reminder_sent", true)
		log.Printf("[SCHEDULER] Sent expiry reminder for subscription %d to %s", sub.ID, user.Email)
	}
}

// ExpireSubscriptions marks expired subscriptions as EXPIRED
func ExpireSubscriptions() {
	db := database.Database.Db
	current := time.Now()

	// Update expired subscriptions
	result := db.Model(&models.Subscription{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", models.SubscriptionActive, current).
		Updates(map[string]interface{}{"status": models.SubscriptionExpired})

	if result.Error != nil {
		log.Printf("[SCHEDULER] Error expiring subscriptions: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		log.Printf("[SCHEDULER] Expired %d subscriptions", result.RowsAffected)

		// Send expiry notification emails
		var expired []models.Subscription
		db.Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", models.SubscriptionExpired, current).
			Where("updated_at > ?", current.Add(-time.Hour)). // Only recently expired
			Find(&expired)

		for _, sub := range expired {
			var user models.User
			if err := db.Where("id = ?", sub.UserID).First(&user).Error; err == nil {
				SendSubscriptionExpiredEmail(user.Email, user.Name)
			}
		}
	}
}
