package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/driftchat/drift/internal/core/ports"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
)

// EmailConfig holds email service configuration
type EmailConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
	AppName        string
	BaseURL        string
}

// EmailService implements the EmailService interface
type EmailService struct {
	config    *EmailConfig
	logger    *logrus.Logger
	client    *sendgrid.Client
	templates map[string]*template.Template
}

// NewEmailService creates a new email service instance
func NewEmailService(config *EmailConfig, logger *logrus.Logger) (ports.EmailService, error) {
	client := sendgrid.NewSendClient(config.SendGridAPIKey)

	templates, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}

	return &EmailService{
		config:    config,
		logger:    logger,
		client:    client,
		templates: templates,
	}, nil
}

func loadTemplates() (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template)

	templateDir := "templates/email"
	templateFiles := []string{
		"friend_request.html",
		"invite.html",
	}

	for _, file := range templateFiles {
		name := file[:len(file)-len(filepath.Ext(file))]
		tmpl, err := template.ParseFiles(filepath.Join(templateDir, file))
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", file, err)
		}
		templates[name] = tmpl
	}

	return templates, nil
}

func (e *EmailService) sendEmail(to, subject, htmlContent string) error {
	from := mail.NewEmail(e.config.FromName, e.config.FromEmail)
	recipient := mail.NewEmail("", to)

	message := mail.NewSingleEmail(from, subject, recipient, "", htmlContent)

	response, err := e.client.Send(message)
	if err != nil {
		e.logger.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
			"error":   err,
		}).Error("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	e.logger.WithFields(logrus.Fields{
		"to":          to,
		"subject":     subject,
		"status_code": response.StatusCode,
	}).Info("Email sent successfully")

	return nil
}

func (e *EmailService) renderTemplate(templateName string, data interface{}) (string, error) {
	tmpl, exists := e.templates[templateName]
	if !exists {
		return "", fmt.Errorf("template %s not found", templateName)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", templateName, err)
	}

	return buf.String(), nil
}

// FriendRequestEmailData holds data for the friend request notification
type FriendRequestEmailData struct {
	AppName         string
	FromDisplayName string
	RequestsURL     string
}

// InviteEmailData holds data for the invite email
type InviteEmailData struct {
	AppName         string
	FromDisplayName string
	InviteURL       string
}

// SendFriendRequestNotification notifies a user of a new friend request
func (e *EmailService) SendFriendRequestNotification(ctx context.Context, toEmail, fromDisplayName string) error {
	data := FriendRequestEmailData{
		AppName:         e.config.AppName,
		FromDisplayName: fromDisplayName,
		RequestsURL:     fmt.Sprintf("%s/friends/requests", e.config.BaseURL),
	}

	htmlContent, err := e.renderTemplate("friend_request", data)
	if err != nil {
		return fmt.Errorf("failed to render friend request email template: %w", err)
	}

	subject := fmt.Sprintf("%s sent you a friend request on %s", fromDisplayName, e.config.AppName)
	return e.sendEmail(toEmail, subject, htmlContent)
}

// SendInvite invites someone without an account to sign up
func (e *EmailService) SendInvite(ctx context.Context, toEmail, fromDisplayName, inviteURL string) error {
	data := InviteEmailData{
		AppName:         e.config.AppName,
		FromDisplayName: fromDisplayName,
		InviteURL:       inviteURL,
	}

	htmlContent, err := e.renderTemplate("invite", data)
	if err != nil {
		return fmt.Errorf("failed to render invite email template: %w", err)
	}

	subject := fmt.Sprintf("%s invited you to %s", fromDisplayName, e.config.AppName)
	return e.sendEmail(toEmail, subject, htmlContent)
}
