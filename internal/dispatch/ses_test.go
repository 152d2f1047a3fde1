package dispatch

import (
	"context"
	stderrors "errors"
	"testing"

	awsclient "branded-email-workers/internal/common/aws"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSESAPI struct {
	mock.Mock
}

func (m *MockSESAPI) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ses.SendEmailOutput), args.Error(1)
}

func (m *MockSESAPI) GetSendQuota(ctx context.Context, params *ses.GetSendQuotaInput, optFns ...func(*ses.Options)) (*ses.GetSendQuotaOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ses.GetSendQuotaOutput), args.Error(1)
}

func TestSESTransport_Send(t *testing.T) {
	api := new(MockSESAPI)
	api.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return aws.ToString(in.Source) == `"Acme" <no-reply@acme.io>` &&
			len(in.Destination.ToAddresses) == 1 && in.Destination.ToAddresses[0] == "ada@example.com" &&
			aws.ToString(in.Message.Subject.Data) == "Welcome" &&
			aws.ToString(in.Message.Body.Html.Data) == "<p>Hi</p>" &&
			in.Message.Body.Text == nil
	})).Return(&ses.SendEmailOutput{MessageId: aws.String("0100018f-ses-id")}, nil)

	tr := NewSESTransport(awsclient.NewSESClientWithAPI(api, "eu-west-1"))
	id, err := tr.Send(context.Background(), Envelope{
		From:    `"Acme" <no-reply@acme.io>`,
		Message: Message{To: "ada@example.com", Subject: "Welcome", HTML: "<p>Hi</p>"},
	})

	require.NoError(t, err)
	assert.Equal(t, "0100018f-ses-id", id)
	assert.Equal(t, "ses", tr.Name())
	api.AssertExpectations(t)
}

func TestSESTransport_Errors(t *testing.T) {
	api := new(MockSESAPI)
	api.On("SendEmail", mock.Anything, mock.Anything).Return(nil, stderrors.New("MessageRejected: Email address is not verified"))
	api.On("GetSendQuota", mock.Anything, mock.Anything).Return(nil, stderrors.New("InvalidClientTokenId"))

	tr := NewSESTransport(awsclient.NewSESClientWithAPI(api, "eu-west-1"))

	_, err := tr.Send(context.Background(), Envelope{Message: Message{To: "ada@example.com", Text: "x"}})
	assert.EqualError(t, err, "ses send failed: MessageRejected: Email address is not verified")

	err = tr.Verify(context.Background())
	assert.EqualError(t, err, "ses credentials check failed in eu-west-1: InvalidClientTokenId")
}

func TestDefaultFactory_BuildSES(t *testing.T) {
	var gotRegion string
	f := NewFactory(FactoryConfig{SESRegion: "us-east-1"})
	f.newSES = func(_ context.Context, region string) (*awsclient.SESClient, error) {
		gotRegion = region
		return awsclient.NewSESClientWithAPI(new(MockSESAPI), region), nil
	}

	es := settings("es-ses", "SES")
	es.Transport = "ses"

	tr, err := f.Build(context.Background(), es)
	require.NoError(t, err)
	assert.IsType(t, &SESTransport{}, tr)
	assert.Equal(t, "us-east-1", gotRegion)

	es.SESRegion = "eu-central-1"
	_, err = f.Build(context.Background(), es)
	require.NoError(t, err)
	assert.Equal(t, "eu-central-1", gotRegion)
}
