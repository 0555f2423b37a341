// Copyright Semchunk Authors
// SPDX-License-Identifier: Apache-2.0

package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/leseb/semchunk/pkg/docstore"
)

func init() {
	docstore.Providers.Register("s3", func(ctx context.Context, params map[string]string) (docstore.Store, error) {
		return New(ctx, Options{
			Bucket:   params["bucket"],
			Region:   params["region"],
			Prefix:   params["prefix"],
			Endpoint: params["endpoint"],
		})
	})
}

// compile-time check
var _ docstore.Store = (*Store)(nil)

// Options configures the S3 backend.
type Options struct {
	Bucket   string // required
	Region   string // e.g. "us-east-1"
	Prefix   string // key prefix, e.g. "rfps/"
	Endpoint string // custom endpoint for MinIO compatibility
}

// Store implements docstore.Store backed by S3 (or MinIO). A document id
// maps to the object key <prefix><id>.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// New creates an S3-backed Store.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 doc store: bucket is required")
	}

	optFns := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(opts.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	s3Opts := []func(*s3.Options){}
	if opts.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true // required for MinIO
		})
	}

	return &Store{
		client: s3.NewFromConfig(cfg, s3Opts...),
		bucket: opts.Bucket,
		prefix: opts.Prefix,
	}, nil
}

func (s *Store) key(id string) (string, string, error) {
	cleaned, err := docstore.CleanID(id)
	if err != nil {
		return "", "", fmt.Errorf("document %q: %w", id, err)
	}
	return cleaned, s.prefix + cleaned, nil
}

// Put uploads the document content.
func (s *Store) Put(ctx context.Context, doc *docstore.Document) error {
	id, key, err := s.key(doc.ID)
	if err != nil {
		return err
	}

	contentType := doc.MimeType
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(id))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(doc.Content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

// Get downloads the document content.
func (s *Store) Get(ctx context.Context, id string) (*docstore.Document, error) {
	cleaned, key, err := s.key(id)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("document %s: %w", cleaned, docstore.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object body: %w", err)
	}

	doc := &docstore.Document{
		ID:       cleaned,
		Filename: path.Base(cleaned),
		MimeType: aws.ToString(out.ContentType),
		Content:  data,
	}
	if out.LastModified != nil {
		doc.CreatedAt = *out.LastModified
	}
	return doc, nil
}

// List returns the ids of all objects under the prefix.
func (s *Store) List(ctx context.Context) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	var ids []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		for _, obj := range page.Contents {
			id := strings.TrimPrefix(aws.ToString(obj.Key), s.prefix)
			if id == "" || strings.HasSuffix(id, "/") {
				continue
			}
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Close is a no-op for the S3 store.
func (s *Store) Close(_ context.Context) error {
	return nil
}

// isNotFound checks whether the error indicates a missing S3 object.
func isNotFound(err error) bool {
	var nsk *s3types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	// Some S3-compatible services return a generic "NotFound" status.
	return strings.Contains(err.Error(), "NoSuchKey") || strings.Contains(err.Error(), "NotFound")
}
