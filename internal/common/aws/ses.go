// internal/common/aws/ses.go
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
)

// SESAPI is the subset of the SES client the dispatcher needs.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
	GetSendQuota(ctx context.Context, params *ses.GetSendQuotaInput, optFns ...func(*ses.Options)) (*ses.GetSendQuotaOutput, error)
}

type SESClient struct {
	client SESAPI
	region string
}

func NewSESClient(ctx context.Context, region string) (*SESClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SESClient{client: ses.NewFromConfig(cfg), region: region}, nil
}

// NewSESClientWithAPI wraps any SESAPI implementation, typically a test double.
func NewSESClientWithAPI(api SESAPI, region string) *SESClient {
	return &SESClient{client: api, region: region}
}

func (s *SESClient) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	return s.client.SendEmail(ctx, input)
}

// Verify checks credentials by reading the account send quota.
func (s *SESClient) Verify(ctx context.Context) error {
	_, err := s.client.GetSendQuota(ctx, &ses.GetSendQuotaInput{})
	return err
}

func (s *SESClient) Region() string {
	return s.region
}
