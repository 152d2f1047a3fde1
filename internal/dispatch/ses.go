package dispatch

import (
	"context"
	"fmt"

	awsclient "branded-email-workers/internal/common/aws"
	"branded-email-workers/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESTransport sends through Amazon SES SendEmail.
type SESTransport struct {
	client *awsclient.SESClient
}

func NewSESTransport(client *awsclient.SESClient) *SESTransport {
	return &SESTransport{client: client}
}

func (t *SESTransport) Name() string {
	return models.TransportSES
}

func (t *SESTransport) Verify(ctx context.Context) error {
	if err := t.client.Verify(ctx); err != nil {
		return fmt.Errorf("ses credentials check failed in %s: %w", t.client.Region(), err)
	}
	return nil
}

func (t *SESTransport) Send(ctx context.Context, env Envelope) (string, error) {
	body := &types.Body{}
	if env.HTML != "" {
		body.Html = &types.Content{Data: aws.String(env.HTML), Charset: aws.String("UTF-8")}
	}
	if env.Text != "" {
		body.Text = &types.Content{Data: aws.String(env.Text), Charset: aws.String("UTF-8")}
	}

	out, err := t.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(env.From),
		Destination: &types.Destination{ToAddresses: []string{env.To}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(env.Subject), Charset: aws.String("UTF-8")},
			Body:    body,
		},
	})
	if err != nil {
		return "", fmt.Errorf("ses send failed: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}
