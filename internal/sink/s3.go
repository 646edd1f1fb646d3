package sink

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/groupements-cli/internal/model"
)

// PutObjectAPI is the slice of the S3 client the sink uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config locates the destination object. Endpoint and PathStyle target
// S3-compatible stores such as MinIO.
type S3Config struct {
	Bucket    string
	Key       string
	Region    string
	Endpoint  string
	PathStyle bool
}

// S3Sink uploads the document as a single JSON object.
type S3Sink struct {
	client PutObjectAPI
	bucket string
	key    string
}

// NewS3 builds an S3Sink using the default AWS credential chain.
func NewS3(ctx context.Context, cfg S3Config) (*S3Sink, error) {
	if cfg.Bucket == "" {
		return nil, eris.New("sink: s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "eu-west-3"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, eris.Wrap(err, "sink: load aws config")
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewS3WithClient(client, cfg.Bucket, cfg.Key), nil
}

// NewS3WithClient builds an S3Sink around an existing client.
func NewS3WithClient(client PutObjectAPI, bucket, key string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket, key: key}
}

// Write uploads the document to bucket/key.
func (s *S3Sink) Write(ctx context.Context, groupements []model.Groupement) error {
	data, err := encode(groupements)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return eris.Wrapf(err, "sink: put s3://%s/%s", s.bucket, s.key)
	}

	zap.L().Info("output uploaded",
		zap.String("bucket", s.bucket),
		zap.String("key", s.key),
		zap.Int("groupements", len(groupements)),
		zap.Int("bytes", len(data)),
	)
	return nil
}
