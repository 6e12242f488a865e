package utils

import (
	"courseforge/config"
	"fmt"
	"net/smtp"
	"strings"
	"time"
)

func SendEmail(to []string, subject string, htmlBody string) error {
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	// MIME basics
	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: CourseForge <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	// Debug Logs
	fmt.Printf("--- Sending Email ---\nTo: %v\nSubject: %s\nFrom: %s\n", to, subject, from)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg))
	if err != nil {
		fmt.Println("Error sending email:", err)
		return err
	}
	fmt.Println("--- Email Sent Successfully ---")
	return nil
}

// HTML wrapper shared by all outgoing mail
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1A2B4C; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1A2B4C; line-height: 1.6; }
			.content h2 { color: #1A2B4C; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #3BA776; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #3BA776; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>COURSEFORGE</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 CourseForge. All rights reserved.<br>
				Keep learning, one lesson at a time.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// --- Triggers ---

// 1. Welcome / Signup
func SendWelcomeEmail(email, name string) {
	subject := "Welcome to CourseForge"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Welcome to <strong>CourseForge</strong>! We are thrilled to have you onboard.</p>
		<p>Your account has been successfully created. Browse the catalogue and enroll in your first course today.</p>
		<p>If you have any questions, feel free to reach out to our support team.</p>
	`, name)

	go SendEmail([]string{email}, subject, getEmailTemplate("Welcome Onboard!", body))
}

// 2. Enrollment Confirmation
func SendEnrollmentEmail(email, name, courseTitle string) {
	subject := "Enrollment Confirmed: " + courseTitle
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You are now enrolled in <strong>%s</strong>.</p>
		<p>Your progress is tracked automatically as you complete lessons.</p>
		<div class="info-box">
			<strong>Next Steps:</strong> Open the course and start with the first lesson.
		</div>
	`, name, courseTitle)

	go SendEmail([]string{email}, subject, getEmailTemplate("Enrollment Successful", body))
}

// 3. Course Completed
func SendCourseCompletedEmail(email, name, courseTitle string) {
	subject := "Congratulations! You finished " + courseTitle
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You have completed every lesson in <strong>%s</strong>.</p>
		<p>You can now request your completion certificate from the course page.</p>
	`, name, courseTitle)

	go SendEmail([]string{email}, subject, getEmailTemplate("Course Completed", body))
}

// 4. Certificate Issued
func SendCertificateEmail(email, name, courseTitle, certificateNumber string) {
	subject := "Your Certificate for " + courseTitle
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your certificate for <strong>%s</strong> has been issued.</p>
		<div class="info-box">
			<strong>Certificate Number:</strong> %s
		</div>
	`, name, courseTitle, certificateNumber)

	go SendEmail([]string{email}, subject, getEmailTemplate("Certificate Issued", body))
}

// 5. Subscription Confirmation
func SendSubscriptionEmail(email, name, plan string) {
	subject := "Subscription Confirmed"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You have successfully subscribed to the <strong>%s</strong> plan.</p>
		<p>All premium courses and code exercises are now unlocked for you.</p>
	`, name, plan)

	fmt.Println("Triggering Subscription Email for:", email)
	go SendEmail([]string{email}, subject, getEmailTemplate("Subscription Successful", body))
}

// SendSubscriptionExpiryReminder sends an email reminder before a subscription expires
func SendSubscriptionExpiryReminder(email, name string, expiresAt *time.Time) {
	expiryStr := "soon"
	if expiresAt != nil {
		expiryStr = expiresAt.Format("January 2, 2006")
	}

	subject := "Your CourseForge Subscription is Expiring Soon!"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your subscription is expiring on <strong>%s</strong>.</p>
		<p>Renew before it expires to keep access to premium courses and exercises.</p>
	`, name, expiryStr)

	go SendEmail([]string{email}, subject, getEmailTemplate("Subscription Expiring Soon", body))
}

// SendSubscriptionExpiredEmail sends an email when a subscription has expired
func SendSubscriptionExpiredEmail(email, name string) {
	subject := "Your CourseForge Subscription Has Expired"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your subscription has expired.</p>
		<p>Premium courses are locked until you renew your plan.</p>
	`, name)

	go SendEmail([]string{email}, subject, getEmailTemplate("Subscription Expired", body))
}
