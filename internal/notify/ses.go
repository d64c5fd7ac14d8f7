package notify

import (
	"context"
	"fmt"

	"agenthub/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
)

const sesCharset = "UTF-8"

type sesSender interface {
	SendEmailWithContext(ctx aws.Context, input *ses.SendEmailInput, opts ...request.Option) (*ses.SendEmailOutput, error)
}

// SESNotifier delivers messages through Amazon SES.
type SESNotifier struct {
	client sesSender
	from   string
}

// NewSESNotifier uses static credentials when configured and the default AWS chain otherwise.
func NewSESNotifier(cfg config.Notifier) (*SESNotifier, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.SESRegion)}
	if cfg.SESAccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.SESAccessKey, cfg.SESSecretKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}

	return &SESNotifier{client: ses.New(sess), from: cfg.FromAddress}, nil
}

func (n *SESNotifier) Send(ctx context.Context, to, subject, body string) (Receipt, error) {
	out, err := n.client.SendEmailWithContext(ctx, &ses.SendEmailInput{
		Source:      aws.String(n.from),
		Destination: &ses.Destination{ToAddresses: []*string{aws.String(to)}},
		Message: &ses.Message{
			Subject: &ses.Content{Charset: aws.String(sesCharset), Data: aws.String(subject)},
			Body: &ses.Body{
				Html: &ses.Content{Charset: aws.String(sesCharset), Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("ses send email: %w", err)
	}

	return Receipt{Status: StatusSent, ProviderMessageID: aws.StringValue(out.MessageId)}, nil
}
