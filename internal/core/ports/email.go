package ports

import "context"

// EmailService sends the product's notification emails.
type EmailService interface {
	SendFriendRequestNotification(ctx context.Context, toEmail, fromDisplayName string) error
	SendInvite(ctx context.Context, toEmail, fromDisplayName, inviteURL string) error
}
