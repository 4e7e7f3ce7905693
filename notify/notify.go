// Package notify publishes failed invocations to an SQS queue.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type SQSClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// Failure describes one invocation that ended in an error report.
type Failure struct {
	ID           string    `json:"id"`
	RequestID    string    `json:"requestId"`
	FunctionARN  string    `json:"functionArn,omitempty"`
	Format       string    `json:"format"`
	ErrorType    string    `json:"errorType"`
	ErrorMessage string    `json:"errorMessage"`
	Time         time.Time `json:"time"`
}

type Notifier struct {
	*Options
	client SQSClient
}

// NewNotifier builds a notifier for Options.QueueURL. Without an injected
// client the default AWS config chain is used.
func NewNotifier(opts ...Option) (*Notifier, error) {
	n := &Notifier{
		Options: NewOptions(opts...),
	}
	if n.QueueURL == "" {
		return nil, errors.New("notify: queue url is required")
	}
	if n.Logger == nil {
		n.Logger = logrus.StandardLogger()
	}

	if n.SQSClient != nil {
		n.client = n.SQSClient
		return n, nil
	}

	cfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, err
	}
	n.client = sqs.NewFromConfig(cfg)
	return n, nil
}

// Notify sends f. A nil notifier is a no-op so callers need not check.
func (n *Notifier) Notify(ctx context.Context, f Failure) error {
	if n == nil {
		return nil
	}
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Time.IsZero() {
		f.Time = time.Now().UTC()
	}

	body, err := json.Marshal(f)
	if err != nil {
		return err
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(n.QueueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"errorType": {DataType: aws.String("String"), StringValue: aws.String(f.ErrorType)},
			"format":    {DataType: aws.String("String"), StringValue: aws.String(f.Format)},
		},
	}
	if strings.HasSuffix(n.QueueURL, ".fifo") {
		input.MessageGroupId = aws.String(n.MessageGroupID)
		input.MessageDeduplicationId = aws.String(f.ID)
	}

	if n.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.Timeout)
		defer cancel()
	}

	if _, err := n.client.SendMessage(ctx, input); err != nil {
		n.Logger.WithFields(logrus.Fields{
			"queue":     n.QueueURL,
			"requestId": f.RequestID,
		}).WithError(err).Warn("[Notify] send failed")
		return err
	}
	return nil
}
