// Package storage implements the object-store gateway over an S3-compatible
// endpoint. Raw object operations (list, server-side copy) go through the
// AWS SDK; typed row-table reads and writes go through an embedded DuckDB
// instance with the httpfs extension so CSV, JSONL, and Parquet all share
// one engine.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "github.com/duckdb/duckdb-go/v2"

	"streampro-lake/internal/config"
	"streampro-lake/internal/ddl"
	"streampro-lake/internal/domain"
)

// secretName is the DuckDB secret holding the lake's S3 credentials.
const secretName = "lake_secret"

// Gateway is the concrete domain.StorageGateway for one bucket.
type Gateway struct {
	client *s3.Client
	db     *sql.DB
	bucket string
}

var _ domain.StorageGateway = (*Gateway)(nil)

// NewGateway connects to the configured S3-compatible endpoint and boots an
// embedded DuckDB with httpfs and the lake's S3 secret installed.
func NewGateway(ctx context.Context, cfg *config.Config) (*Gateway, error) {
	scheme := "http"
	if cfg.S3Secure {
		scheme = "https"
	}
	endpoint := fmt.Sprintf("%s://%s", scheme, cfg.S3Endpoint)

	client := s3.New(s3.Options{
		Region: cfg.S3Region,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.S3KeyID, cfg.S3Secret, "",
		),
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: true, // MinIO requires path-style URLs
	})

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := bootstrapDuckDB(ctx, db, cfg); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Gateway{client: client, db: db, bucket: cfg.Bucket}, nil
}

// bootstrapDuckDB installs httpfs and the S3 secret so read_csv/read_json/
// read_parquet and COPY TO can address s3:// URIs directly.
func bootstrapDuckDB(ctx context.Context, db *sql.DB, cfg *config.Config) error {
	if _, err := db.ExecContext(ctx, "INSTALL httpfs; LOAD httpfs;"); err != nil {
		return fmt.Errorf("extension setup: %w", err)
	}
	secretSQL, err := ddl.CreateS3Secret(secretName,
		cfg.S3KeyID, cfg.S3Secret, cfg.S3Endpoint, cfg.S3Region, "path", cfg.S3Secure)
	if err != nil {
		return fmt.Errorf("build secret DDL: %w", err)
	}
	if _, err := db.ExecContext(ctx, secretSQL); err != nil {
		return fmt.Errorf("create S3 secret %q: %w", secretName, err)
	}
	return nil
}

// DB exposes the embedded DuckDB handle so the query engine can share it
// (and the installed S3 secret).
func (g *Gateway) DB() *sql.DB { return g.db }

// Close releases the embedded engine.
func (g *Gateway) Close() error { return g.db.Close() }

// List returns all object keys under prefix.
func (g *Gateway) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(g.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(g.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %q: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

// Copy performs a server-side copy within the bucket. Existing destination
// keys are overwritten.
func (g *Gateway) Copy(ctx context.Context, sourceKey, destKey string) error {
	source := url.PathEscape(g.bucket + "/" + sourceKey)
	_, err := g.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(g.bucket),
		CopySource: aws.String(source),
		Key:        aws.String(destKey),
	})
	if err != nil {
		return fmt.Errorf("copy %q to %q: %w", sourceKey, destKey, err)
	}
	return nil
}

// s3URI renders a bucket-relative key as a full s3:// URI.
func (g *Gateway) s3URI(key string) string {
	return fmt.Sprintf("s3://%s/%s", g.bucket, key)
}
