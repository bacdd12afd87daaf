package sqs

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/iyhunko/product-catalog/internal/config"
)

const (
	clientMaxAttempts = 5

	// Emulators such as LocalStack accept any key pair.
	localAccessKeyID     = "test"
	localSecretAccessKey = "test"
)

// QueueAPI is the SQS operation CheckQueue needs.
type QueueAPI interface {
	GetQueueAttributes(ctx context.Context, params *sqs.GetQueueAttributesInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error)
}

// NewClient creates an SQS client for the configured region. A configured endpoint points the
// client at an emulator and uses static local credentials unless the default chain provides some.
func NewClient(ctx context.Context, conf config.AWSConfig) (*sqs.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(conf.Region),
		awsconfig.WithRetryMaxAttempts(clientMaxAttempts),
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if conf.Endpoint != "" {
		awsCfg.BaseEndpoint = aws.String(conf.Endpoint)
		if awsCfg.Credentials == nil || !hasCredentials(ctx, awsCfg.Credentials) {
			awsCfg.Credentials = credentials.NewStaticCredentialsProvider(localAccessKeyID, localSecretAccessKey, "")
		}
	}

	return sqs.NewFromConfig(awsCfg), nil
}

func hasCredentials(ctx context.Context, provider aws.CredentialsProvider) bool {
	_, err := provider.Retrieve(ctx)
	return err == nil
}

// CheckQueue verifies that the product queue exists and is reachable.
func CheckQueue(ctx context.Context, client QueueAPI, queueURL string) error {
	_, err := client.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl:       aws.String(queueURL),
		AttributeNames: []types.QueueAttributeName{types.QueueAttributeNameApproximateNumberOfMessages},
	})
	if err != nil {
		return fmt.Errorf("failed to reach queue %s: %w", queueURL, err)
	}
	return nil
}
