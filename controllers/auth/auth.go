package authController

import (
	"courseforge/config"
	"courseforge/database"
	"courseforge/middleware"
	"courseforge/models"
	"courseforge/utils"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Signup(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedSignup").(*struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	// Check if email already exists
	if err := db.Where("email = ?", reqData.Email).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	}

	// Hash Password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	// Prepare User Struct for DB Entry
	newUser := models.User{
		Name:     reqData.Name,
		Email:    reqData.Email,
		Password: string(hashedPassword),
	}

	// Create User
	if err := db.Create(&newUser).Error; err != nil {
		log.Printf("Error saving user to database: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to Signup user!", nil)
	}

	// Issue an email verification code
	code := utils.GenerateOTP()
	otp := models.OTP{
		UserID:      newUser.ID,
		Email:       newUser.Email,
		Code:        code,
		ExpiresAt:   time.Now().Add(10 * time.Minute),
		Description: "Email verification",
	}
	if err := db.Create(&otp).Error; err != nil {
		log.Printf("Error saving OTP: %v", err)
	}

	go func() {
		if err := utils.SendOTPEmail(code, newUser.Email); err != nil {
			log.Printf("Error sending verification email to %s: %v", newUser.Email, err)
		}
	}()

	// Clean Response
	newUser.Password = ""

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully.", newUser)
}

func VerifyEmail(c *fiber.Ctx) error {
	reqData := new(struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	})

	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Failed to parse request body!", nil)
	}

	db := database.Database.Db

	var user models.User
	if err := db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	var otp models.OTP
	if err := db.Where("user_id = ? AND code = ? AND is_used = ? AND is_deleted = ?", user.ID, reqData.Code, false, false).
		Order("created_at desc").First(&otp).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid verification code!", nil)
	}

	if otp.ExpiresAt.Before(time.Now()) {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Verification code has expired!", nil)
	}

	db.Model(&otp).Update("is_used", true)
	db.Model(&user).Update("is_email_verified", true)

	utils.SendWelcomeEmail(user.Email, user.Name)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Email verified successfully.", nil)
}

func Login(c *fiber.Ctx) error {
	// Retrieve validated request data
	reqData, ok := c.Locals("validatedLogin").(*struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var user models.User
	result := database.Database.Db.Where("email = ? AND is_deleted = ?", reqData.Email, false).First(&user)
	if result.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	if !user.IsEmailVerified {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Email not verified!", nil)
	}

	if user.Password == "" {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "This account uses social login. Sign in with your provider.", nil)
	}

	// Check if the user is blocked
	if user.IsBlocked && user.BlockedUntil != nil && user.BlockedUntil.After(time.Now()) {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Your account is temporarily blocked. Try again later.", nil)
	}

	if user.LastFailedLogin != nil && time.Since(*user.LastFailedLogin) > 15*time.Minute {
		user.FailedLoginAttempts = 0
		user.LastFailedLogin = nil
		database.Database.Db.Save(&user)
	}

	// Validate password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		user.FailedLoginAttempts++
		now := time.Now()
		user.LastFailedLogin = &now

		// Block user after 3 failed attempts
		if user.FailedLoginAttempts >= 3 {
			user.IsBlocked = true

			unblockTime := now.Add(1 * time.Minute)
			user.BlockedUntil = &unblockTime
		}

		// Save the updated user details
		database.Database.Db.Save(&user)

		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Wrong Password", nil)
	}

	// Update last login time
	user.LastLogin = time.Now()
	user.FailedLoginAttempts = 0 // Reset failed login attempts after successful login
	user.IsBlocked = false
	if err := database.Database.Db.Save(&user).Error; err != nil {
		log.Printf("Error saving last login time: %v", err)
	}

	trackLogin(c, user.ID, "PASSWORD")

	// Sanitize user data (remove sensitive fields)
	user.Password = ""

	// Generate JWT token
	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"user":  user,
		"token": token,
	})
}

// OAuthLogin exchanges a provider access token for a local session. The
// provider's userinfo endpoint is the source of truth for the identity;
// an account is created on first login with the provider identity linked.
func OAuthLogin(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedOAuth").(*struct {
		Provider    string `json:"provider"`
		AccessToken string `json:"access_token"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	identity, err := utils.FetchOAuthIdentity(reqData.Provider, reqData.AccessToken)
	if err != nil {
		log.Printf("OAuth identity fetch failed for provider %s: %v", reqData.Provider, err)
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Failed to verify identity with provider!", nil)
	}

	db := database.Database.Db

	// Look up an existing link for this provider identity
	var account models.OAuthAccount
	var user models.User
	err = db.Where("provider = ? AND provider_uid = ? AND is_deleted = ?", reqData.Provider, identity.UID, false).First(&account).Error
	switch {
	case err == nil:
		if err := db.Where("id = ? AND is_deleted = ?", account.UserID, false).First(&user).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Linked account no longer exists!", nil)
		}
	case err == gorm.ErrRecordNotFound:
		// First login with this provider: attach to an existing user by
		// email, or create a fresh verified account
		if dberr := db.Where("email = ? AND is_deleted = ?", identity.Email, false).First(&user).Error; dberr != nil {
			user = models.User{
				Name:            identity.Name,
				Email:           identity.Email,
				IsEmailVerified: true, // provider vouches for the email
			}
			if cerr := db.Create(&user).Error; cerr != nil {
				log.Printf("Error creating OAuth user: %v", cerr)
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create account!", nil)
			}
		}
		account = models.OAuthAccount{
			UserID:      user.ID,
			Provider:    reqData.Provider,
			ProviderUID: identity.UID,
			Email:       identity.Email,
		}
		if cerr := db.Create(&account).Error; cerr != nil {
			log.Printf("Error linking OAuth account: %v", cerr)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to link provider account!", nil)
		}
	default:
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to look up provider account!", nil)
	}

	user.LastLogin = time.Now()
	if err := db.Save(&user).Error; err != nil {
		log.Printf("Error saving last login time: %v", err)
	}

	trackLogin(c, user.ID, reqData.Provider)

	user.Password = ""

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"user":  user,
		"token": token,
	})
}

func LoginHistoryList(c *fiber.Ctx) error {
	// Retrieve userId from JWT middleware
	userId, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	// Retrieve validated request data
	reqData, ok := c.Locals("validatedLoginHistory").(*struct {
		Page  *int `json:"page"`
		Limit *int `json:"limit"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	offset := (*reqData.Page - 1) * (*reqData.Limit)

	var loginTracking []models.LoginTracking
	var total int64

	// Fetch login history with pagination
	if err := database.Database.Db.Where("user_id = ? AND is_deleted = ?", userId, false).
		Offset(offset).
		Limit(*reqData.Limit).
		Order("created_at desc").
		Find(&loginTracking).
		Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Access Denied!", nil)
	}

	// Count total records
	database.Database.Db.Model(&models.LoginTracking{}).Where("user_id = ? AND is_deleted = ?", userId, false).Count(&total)

	// Response structure
	response := map[string]interface{}{
		"loginTracking": loginTracking,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  *reqData.Page,
			"limit": *reqData.Limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login History List.", response)
}

// trackLogin records a login audit row; failures are logged, not surfaced
func trackLogin(c *fiber.Ctx, userID uint, method string) {
	ip := c.IP()
	if forwarded := c.Get("X-Forwarded-For"); forwarded != "" {
		ip = forwarded
	}

	loginTracking := models.LoginTracking{
		UserID:    userID,
		IPAddress: ip,
		Device:    c.Get("User-Agent"),
		Method:    method,
		Timestamp: time.Now(),
	}

	log.Printf("User %d logged in from IP: %s", userID, loginTracking.IPAddress)

	if err := database.Database.Db.Create(&loginTracking).Error; err != nil {
		log.Printf("Error saving login tracking details: %v", err)
	}
}
