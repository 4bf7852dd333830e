package leaderboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/agusx1211/promptarena/internal/config"
	"github.com/agusx1211/promptarena/internal/debug"
)

// ErrNoBucket is returned when no leaderboard bucket is configured.
var ErrNoBucket = errors.New("no leaderboard bucket configured (set leaderboard.bucket)")

// ObjectAPI is the subset of the S3 client used by Remote.
type ObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Remote stores a board as a single object in an S3-compatible bucket.
type Remote struct {
	api    ObjectAPI
	bucket string
	key    string
}

// NewRemote wraps an existing client.
func NewRemote(api ObjectAPI, bucket, key string) *Remote {
	return &Remote{api: api, bucket: bucket, key: key}
}

// OpenRemote builds an S3 client from lc. Static credentials are used when
// both keys are set, otherwise the default AWS chain applies.
func OpenRemote(ctx context.Context, lc config.LeaderboardConfig) (*Remote, error) {
	if lc.Bucket == "" {
		return nil, ErrNoBucket
	}
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(lc.Region),
	}
	if lc.AccessKeyID != "" && lc.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(lc.AccessKeyID, lc.SecretAccessKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading leaderboard bucket config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if lc.Endpoint != "" {
			o.BaseEndpoint = aws.String(lc.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewRemote(client, lc.Bucket, lc.ObjectKey), nil
}

// Pull fetches the remote board. A missing object is an empty board.
func (r *Remote) Pull(ctx context.Context) (Board, error) {
	out, err := r.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return Board{}, nil
		}
		return Board{}, fmt.Errorf("fetching leaderboard: %w", err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(io.LimitReader(out.Body, 8<<20))
	if err != nil {
		return Board{}, fmt.Errorf("reading leaderboard object: %w", err)
	}
	return Decode(data)
}

// Push merges b into the remote board and uploads the result, which is
// returned. Concurrent pushes may lose each other's entries.
func (r *Remote) Push(ctx context.Context, b Board) (Board, error) {
	remote, err := r.Pull(ctx)
	if err != nil {
		return Board{}, err
	}
	merged := Merge(remote, b)
	data, err := Encode(merged)
	if err != nil {
		return Board{}, err
	}
	_, err = r.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(r.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return Board{}, fmt.Errorf("uploading leaderboard: %w", err)
	}
	debug.LogKV("leaderboard", "pushed", "bucket", r.bucket, "key", r.key, "entries", len(merged.Entries))
	return merged, nil
}
