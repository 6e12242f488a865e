package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateOTP generates a 6-digit OTP
func GenerateOTP() string {
	rng := rand.New(rand.NewSource(time.Now().UnixNano())) // Create a new random number generator
	otp := ""
	for i := 0; i < 6; i++ {
		otp += fmt.Sprintf("%d", rng.Intn(10)) // Generate a random digit (0-9) and append to OTP string
	}
	return otp
}

// SendOTPEmail sends the email verification code
func SendOTPEmail(otp, email string) error {
	subject := "OTP Verification Code for CourseForge"
	body := fmt.Sprintf(`
		<p>Use the code below to verify your email address:</p>
		<div class="info-box" style="font-size: 24px; letter-spacing: 4px; text-align: center;">
			<strong>%s</strong>
		</div>
		<p>This code expires in 10 minutes. If you did not request it, you can ignore this email.</p>
	`, otp)

	return SendEmail([]string{email}, subject, getEmailTemplate("Verify Your Email", body))
}

// NewCertificateNumber builds a unique, human-readable certificate number
func NewCertificateNumber() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("CF-%s-%s", time.Now().Format("2006"), id[:12])
}
