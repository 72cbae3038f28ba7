package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"github.com/charmbracelet/log"
	"github.com/mauv0809/padel-ladder/internal/notifier"
)

// sesAPI is the part of the SESv2 client used for delivery.
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

var _ notifier.Notifier = (*Sender)(nil)

// Sender delivers notifications as plain text e-mails through SES.
type Sender struct {
	client sesAPI
	sender string
}

// NewSender initializes an SES client using static credentials and region.
func NewSender(ctx context.Context, accessKeyID, secretAccessKey, region, sender string) (*Sender, error) {
	if accessKeyID == "" || secretAccessKey == "" || region == "" {
		return nil, fmt.Errorf("ses credentials and region are required")
	}
	if sender == "" {
		return nil, fmt.Errorf("ses sender is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return NewSenderWithAPI(sesv2.NewFromConfig(awsCfg), sender), nil
}

// NewSenderWithAPI creates a Sender around an existing client.
func NewSenderWithAPI(client sesAPI, sender string) *Sender {
	return &Sender{client: client, sender: sender}
}

// Send delivers a simple e-mail to a single recipient.
func (s *Sender) Send(ctx context.Context, recipient, subject, body string) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("ses client is not initialized")
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return fmt.Errorf("recipient is required")
	}

	input := &sesv2.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{recipient},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(body)},
				},
			},
		},
		FromEmailAddress: aws.String(s.sender),
	}
	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send ses email: %w", err)
	}
	return nil
}

// Notify implements notifier.Notifier.
func (s *Sender) Notify(ctx context.Context, recipient, subject, body string) bool {
	if err := s.Send(ctx, recipient, subject, body); err != nil {
		log.Error("Failed to send email", "error", err, "recipient", recipient, "subject", subject)
		return false
	}
	log.Debug("Sent email", "recipient", recipient, "subject", subject)
	return true
}
