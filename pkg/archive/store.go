// Package archive optionally mirrors every inbound/outbound protocol
// message for a session to an S3-compatible object store, for durable
// audit trails (SPEC_FULL.md §6.2). It is a pluggable collaborator: the
// renderer works identically with no Store configured.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/hvml/purcmc-go/pkg/protocol"
)

// Store mirrors endpoint message traffic to S3, one object per message,
// grounded on the teacher's pkg/upload.S3Store (PutObject/ListObjectsV2
// paginated cleanup/DeleteObject shape).
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewStore wraps an already-configured S3 client.
func NewStore(client *s3.Client, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: prefix}
}

// NewStoreFromEnv loads the default AWS config chain (env vars, shared
// config file, IMDS) and, if endpointURL is non-empty, points the client
// at an S3-compatible endpoint instead of AWS (e.g. MinIO).
func NewStoreFromEnv(ctx context.Context, bucket, prefix, region, endpointURL string) (*Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("archive: load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpointURL != "" {
			o.BaseEndpoint = aws.String(endpointURL)
			o.UsePathStyle = true
		}
	})
	return NewStore(client, bucket, prefix), nil
}

// Direction labels a mirrored message's flow relative to the renderer.
type Direction string

const (
	DirectionInbound  Direction = "in"
	DirectionOutbound Direction = "out"
)

// key composes the object key for one mirrored message: prefix/endpointURI/
// zero-padded sequence-direction.json, lexicographically sortable within
// an endpoint's transcript.
func (s *Store) key(endpointURI string, seq uint64, dir Direction) string {
	return fmt.Sprintf("%s%s/%020d-%s.json", s.prefix, endpointURI, seq, dir)
}

// Record uploads one message as a transcript entry.
func (s *Store) Record(ctx context.Context, endpointURI string, seq uint64, dir Direction, msg *protocol.Message) error {
	payload, err := protocol.Encode(msg)
	if err != nil {
		return fmt.Errorf("archive: encode message: %w", err)
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(endpointURI, seq, dir)),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"endpoint-uri": endpointURI,
			"direction":    string(dir),
			"recorded-at":  time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf("archive: put object: %w", err)
	}
	return nil
}

// Cleanup removes transcript objects older than maxAge, paginating
// through every key under prefix exactly as the teacher's
// S3Store.Cleanup does.
func (s *Store) Cleanup(ctx context.Context, maxAge time.Duration) error {
	cutoff := time.Now().Add(-maxAge)

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	var toDelete []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("archive: list objects: %w", err)
		}
		for _, obj := range page.Contents {
			if obj.Key != nil && obj.LastModified != nil && obj.LastModified.Before(cutoff) {
				toDelete = append(toDelete, *obj.Key)
			}
		}
	}

	for _, key := range toDelete {
		if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}); err != nil {
			return fmt.Errorf("archive: delete object %q: %w", key, err)
		}
	}
	return nil
}
