package publisher

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// PublishError is an upload failure. It fails the job: a completed job must
// never reference an object that was not stored.
type PublishError struct {
	Key string
	Err error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("failed to publish %s: %v", e.Key, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// ObjectKey derives the object-store key for a job's final video. It is a
// fixed function of the job ID, so re-publishing the same job overwrites
// the same key instead of creating a new object.
func ObjectKey(jobID string) string {
	return fmt.Sprintf("videos/%s.mp4", jobID)
}

// Publisher uploads assembled videos to Cloudflare R2 through the
// S3-compatible API. With no R2 destination configured it degrades to key
// derivation only: Publish still returns the deterministic key without
// touching the network.
type Publisher struct {
	client *s3.Client
	bucket string
}

// Options carries the R2 destination. Leave Endpoint empty to run without
// uploads.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
}

func New(ctx context.Context, opts Options) (*Publisher, error) {
	if opts.Endpoint == "" {
		log.Println("[Publisher] R2 not configured, uploads disabled")
		return &Publisher{}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load R2 credentials: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(opts.Endpoint)
		o.UsePathStyle = true
	})

	return &Publisher{client: client, bucket: opts.Bucket}, nil
}

// Publish uploads the assembled video under the job's deterministic key and
// returns that key. Upload failures surface as *PublishError.
func (p *Publisher) Publish(ctx context.Context, localPath, jobID string) (string, error) {
	key := ObjectKey(jobID)

	if p.client == nil {
		log.Printf("[Publisher] Skipping upload for job %s (R2 not configured), returning key %s", jobID, key)
		return key, nil
	}

	file, err := os.Open(localPath)
	if err != nil {
		return "", &PublishError{Key: key, Err: fmt.Errorf("failed to open %s: %w", localPath, err)}
	}
	defer file.Close()

	log.Printf("[Publisher] Uploading %s to bucket %s...", key, p.bucket)

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String("video/mp4"),
	})
	if err != nil {
		return "", &PublishError{Key: key, Err: err}
	}

	log.Printf("[Publisher] Upload complete: %s", key)
	return key, nil
}
