package subscriptionController

import (
	"courseforge/database"
	"courseforge/middleware"
	"courseforge/models"
	"courseforge/utils"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Subscribe activates a subscription for the caller. An existing active
// subscription is extended from its current expiry instead of being
// replaced.
func Subscribe(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	reqData, ok := c.Locals("validatedSubscribe").(*struct {
		Plan string `json:"plan"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var existing models.Subscription
	err := db.Where("user_id = ? AND status = ? AND is_deleted = ?", userID, models.SubscriptionActive, false).
		First(&existing).Error

	startFrom := time.Now()
	if err == nil && existing.ExpiresAt != nil && existing.ExpiresAt.After(startFrom) {
		startFrom = *existing.ExpiresAt
	}
	expiresAt := utils.PlanExpiry(reqData.Plan, startFrom)

	if err == nil {
		existing.Plan = reqData.Plan
		existing.ExpiresAt = &expiresAt
		existing.ReminderSent = false
		if err := db.Save(&existing).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to extend subscription!", nil)
		}

		utils.SendSubscriptionEmail(user.Email, user.Name, reqData.Plan)

		return middleware.JsonResponse(c, fiber.StatusOK, true, "Subscription extended successfully!", existing)
	}

	subscription := models.Subscription{
		UserID:       userID,
		Plan:         reqData.Plan,
		Status:       models.SubscriptionActive,
		SubscribedAt: time.Now(),
		ExpiresAt:    &expiresAt,
	}
	if err := db.Create(&subscription).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create subscription!", nil)
	}

	utils.SendSubscriptionEmail(user.Email, user.Name, reqData.Plan)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Subscribed successfully!", subscription)
}

// GetMySubscription returns the caller's latest subscription
func GetMySubscription(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	db := database.Database.Db

	// Expire lazily so the caller never sees a stale ACTIVE row
	db.Model(&models.Subscription{}).
		Where("user_id = ? AND status = ? AND expires_at < ?", userID, models.SubscriptionActive, time.Now()).
		Update("status", models.SubscriptionExpired)

	var subscription models.Subscription
	if err := db.Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("created_at desc").First(&subscription).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No subscription found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subscription fetched successfully!", subscription)
}

// AdminListSubscriptions returns subscriptions filtered by status, with
// subscriber details, for the admin dashboard
func AdminListSubscriptions(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	status := c.Query("status", models.SubscriptionActive)
	offset := (page - 1) * limit

	db := database.Database.Db

	// Auto-expire any overdue rows first
	db.Model(&models.Subscription{}).
		Where("status = ? AND expires_at < ?", models.SubscriptionActive, time.Now()).
		Update("status", models.SubscriptionExpired)

	query := db.Model(&models.Subscription{}).Where("is_deleted = ?", false)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var subscriptions []models.Subscription
	if err := query.Offset(offset).Limit(limit).Order("expires_at asc").Find(&subscriptions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch subscriptions!", nil)
	}

	type SubscriptionWithUser struct {
		models.Subscription
		UserName  string `json:"userName"`
		UserEmail string `json:"userEmail"`
	}

	response := make([]SubscriptionWithUser, 0, len(subscriptions))
	for _, sub := range subscriptions {
		var subUser models.User
		db.Select("name, email").Where("id = ?", sub.UserID).First(&subUser)

		response = append(response, SubscriptionWithUser{
			Subscription: sub,
			UserName:     subUser.Name,
			UserEmail:    subUser.Email,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Subscriptions fetched!", fiber.Map{
		"subscriptions": response,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}
