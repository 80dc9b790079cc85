package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"clipbot/types"
)

// Archive copies run artifacts to an S3 bucket so they survive the worker's
// local disk. Archiving is best-effort; the pipeline does not fail a run
// because the archive did.
type Archive struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewArchive builds an archive client using the default AWS credential
// chain, with the region overridden when one is configured.
func NewArchive(ctx context.Context, bucket, region, prefix string) (*Archive, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Archive{
		client: s3.NewFromConfig(awsCfg),
		bucket: bucket,
		prefix: prefix,
	}, nil
}

// Store uploads the artifact's rendered video (when it exists on local
// disk) and a JSON record of the commentary and metadata.
func (a *Archive) Store(ctx context.Context, artifact types.Artifact) error {
	record, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode artifact record: %w", err)
	}

	recordKey := a.key(artifact.RunID, artifact.VideoID+".json")
	if err := a.put(ctx, recordKey, bytes.NewReader(record), "application/json"); err != nil {
		return fmt.Errorf("failed to archive record: %w", err)
	}

	if artifact.VideoPath != "" {
		data, err := os.ReadFile(artifact.VideoPath)
		if err != nil {
			return fmt.Errorf("failed to read rendered video: %w", err)
		}
		videoKey := a.key(artifact.RunID, artifact.VideoID+".mp4")
		if err := a.put(ctx, videoKey, bytes.NewReader(data), "video/mp4"); err != nil {
			return fmt.Errorf("failed to archive video: %w", err)
		}
	}

	log.Printf("[archive] Stored artifacts for %s under s3://%s/%s", artifact.VideoID, a.bucket, a.key(artifact.RunID, ""))
	return nil
}

func (a *Archive) put(ctx context.Context, key string, body *bytes.Reader, contentType string) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	return err
}

func (a *Archive) key(runID, name string) string {
	return path.Join(a.prefix, runID, name)
}
