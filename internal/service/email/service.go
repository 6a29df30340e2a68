package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/resend/resend-go/v3"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/config"
)

type Service interface {
	SendEmailVerification(ctx context.Context, toEmail, fullName, verificationToken string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, fullName, resetToken string) error
	SendDonationInviteEmail(ctx context.Context, toEmail, donorName, hospitalName, bloodGroup, urgency, responseLink string) error
	SendRequestFulfilledEmail(ctx context.Context, toEmail, recipientName, bloodGroup string, quantity int) error
	SendDonationThanksEmail(ctx context.Context, toEmail, donorName, hospitalName string) error
	SendDocumentReviewedEmail(ctx context.Context, toEmail, hospitalName, status string) error
}

type service struct {
	client       *resend.Client
	config       *config.Config
	templatePath string
}

func NewService(cfg *config.Config) Service {
	client := resend.NewClient(cfg.ResendAPIKey)
	templatePath := "internal/service/templates/email"
	return &service{
		client:       client,
		config:       cfg,
		templatePath: templatePath,
	}
}

func (s *service) sendEmail(toEmail, subject, templateName string, data interface{}) error {
	tmpl, err := template.ParseFiles(
		filepath.Join(s.templatePath, "layout.html"),
		filepath.Join(s.templatePath, templateName),
	)
	if err != nil {
		return fmt.Errorf("failed to parse email templates: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("Blood Connect <%s>", s.config.FromEmail),
		To:      []string{toEmail},
		Html:    body.String(),
		Subject: subject,
	}

	_, err = s.client.Emails.Send(params)
	return err
}

func (s *service) SendEmailVerification(ctx context.Context, toEmail, fullName, verificationToken string) error {
	data := struct {
		Title string
		Name  string
		Link  string
	}{
		Title: "Verify Your Email",
		Name:  fullName,
		Link:  fmt.Sprintf("https://%s/verify-email?token=%s", s.config.Domain, verificationToken),
	}
	return s.sendEmail(toEmail, "Verify Your Email - Blood Connect", "verification.html", data)
}

func (s *service) SendPasswordResetEmail(ctx context.Context, toEmail, fullName, resetToken string) error {
	data := struct {
		Title string
		Name  string
		Link  string
	}{
		Title: "Reset Your Password",
		Name:  fullName,
		Link:  fmt.Sprintf("https://%s/reset-password?token=%s", s.config.Domain, resetToken),
	}
	return s.sendEmail(toEmail, "Password Reset Request - Blood Connect", "reset_password.html", data)
}

func (s *service) SendDonationInviteEmail(ctx context.Context, toEmail, donorName, hospitalName, bloodGroup, urgency, responseLink string) error {
	data := struct {
		Title        string
		Name         string
		HospitalName string
		BloodGroup   string
		Urgency      string
		Link         string
	}{
		Title:        fmt.Sprintf("%s Blood Needed", bloodGroup),
		Name:         donorName,
		HospitalName: hospitalName,
		BloodGroup:   bloodGroup,
		Urgency:      urgency,
		Link:         responseLink,
	}
	return s.sendEmail(toEmail, fmt.Sprintf("%s Blood Needed at %s", bloodGroup, hospitalName), "donation_invite.html", data)
}

func (s *service) SendRequestFulfilledEmail(ctx context.Context, toEmail, recipientName, bloodGroup string, quantity int) error {
	data := struct {
		Title      string
		Name       string
		BloodGroup string
		Quantity   int
	}{
		Title:      "Blood Request Fulfilled",
		Name:       recipientName,
		BloodGroup: bloodGroup,
		Quantity:   quantity,
	}
	return s.sendEmail(toEmail, "Blood Request Fulfilled - Blood Connect", "request_fulfilled.html", data)
}

func (s *service) SendDonationThanksEmail(ctx context.Context, toEmail, donorName, hospitalName string) error {
	data := struct {
		Title        string
		Name         string
		HospitalName string
	}{
		Title:        "Thank You for Donating",
		Name:         donorName,
		HospitalName: hospitalName,
	}
	return s.sendEmail(toEmail, "Thank You for Your Donation - Blood Connect", "donation_thanks.html", data)
}

func (s *service) SendDocumentReviewedEmail(ctx context.Context, toEmail, hospitalName, status string) error {
	color := "#10b981"
	if status == "rejected" {
		color = "#ef4444"
	}

	data := struct {
		Title        string
		HospitalName string
		Status       string
		Color        string
	}{
		Title:        "Verification Document Reviewed",
		HospitalName: hospitalName,
		Status:       status,
		Color:        color,
	}
	return s.sendEmail(toEmail, "Verification Document Reviewed - Blood Connect", "document_status.html", data)
}
