package email

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	inputs []*sesv2.SendEmailInput
	err    error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSender_Notify(t *testing.T) {
	t.Run("builds a plain text message", func(t *testing.T) {
		// Setup
		api := &fakeSES{}
		s := NewSenderWithAPI(api, "ladder@example.com")

		// Execute
		ok := s.Notify(context.Background(), " ana@example.com ", "Challenge received", "Bravo challenged you.")

		// Assert
		assert.True(t, ok)
		require.Len(t, api.inputs, 1)
		in := api.inputs[0]
		assert.Equal(t, []string{"ana@example.com"}, in.Destination.ToAddresses)
		assert.Equal(t, "ladder@example.com", aws.ToString(in.FromEmailAddress))
		assert.Equal(t, "Challenge received", aws.ToString(in.Content.Simple.Subject.Data))
		assert.Equal(t, "Bravo challenged you.", aws.ToString(in.Content.Simple.Body.Text.Data))
	})

	t.Run("delivery failure returns false", func(t *testing.T) {
		api := &fakeSES{err: errors.New("throttled")}
		s := NewSenderWithAPI(api, "ladder@example.com")

		assert.False(t, s.Notify(context.Background(), "ana@example.com", "s", "b"))
	})

	t.Run("empty recipient is rejected before sending", func(t *testing.T) {
		api := &fakeSES{}
		s := NewSenderWithAPI(api, "ladder@example.com")

		assert.Error(t, s.Send(context.Background(), "", "s", "b"))
		assert.Empty(t, api.inputs)
	})

	t.Run("constructor validates configuration", func(t *testing.T) {
		_, err := NewSender(context.Background(), "", "secret", "eu-west-1", "ladder@example.com")
		assert.Error(t, err)
		_, err = NewSender(context.Background(), "key", "secret", "eu-west-1", "")
		assert.Error(t, err)
	})
}
