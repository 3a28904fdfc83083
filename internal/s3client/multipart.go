package s3client

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const (
	// MaxCopyObjectSize is the largest object CopyObject accepts (5GB)
	MaxCopyObjectSize = 5 * 1024 * 1024 * 1024
	// DefaultCopyPartSize is the part size for multipart copy (512MB)
	DefaultCopyPartSize = 512 * 1024 * 1024
)

// CreateMultipartUpload initiates a multipart upload
func (c *Client) CreateMultipartUpload(ctx context.Context, key string) (string, error) {
	input := &s3.CreateMultipartUploadInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}

	result, err := c.api.CreateMultipartUpload(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to create multipart upload: %w", err)
	}

	if result.UploadId == nil {
		return "", fmt.Errorf("upload ID is nil")
	}

	return *result.UploadId, nil
}

// UploadPartCopy copies the byte range [start, end] of srcKey as one part
func (c *Client) UploadPartCopy(ctx context.Context, srcKey, dstKey, uploadID string, partNumber int32, start, end int64) (string, error) {
	input := &s3.UploadPartCopyInput{
		Bucket:          aws.String(c.bucket),
		Key:             aws.String(dstKey),
		CopySource:      aws.String(c.copySource(srcKey)),
		CopySourceRange: aws.String(fmt.Sprintf("bytes=%d-%d", start, end)),
		PartNumber:      aws.Int32(partNumber),
		UploadId:        aws.String(uploadID),
	}

	result, err := c.api.UploadPartCopy(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to copy part %d: %w", partNumber, err)
	}

	if result.CopyPartResult == nil || result.CopyPartResult.ETag == nil {
		return "", fmt.Errorf("ETag is nil for part %d", partNumber)
	}

	return *result.CopyPartResult.ETag, nil
}

// CompleteMultipartUpload completes a multipart upload
func (c *Client) CompleteMultipartUpload(ctx context.Context, key, uploadID string, parts []types.CompletedPart) error {
	input := &s3.CompleteMultipartUploadInput{
		Bucket:   aws.String(c.bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{
			Parts: parts,
		},
	}

	_, err := c.api.CompleteMultipartUpload(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to complete multipart upload: %w", err)
	}

	return nil
}

// AbortMultipartUpload aborts a multipart upload
func (c *Client) AbortMultipartUpload(ctx context.Context, key, uploadID string) error {
	input := &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(c.bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
	}

	_, err := c.api.AbortMultipartUpload(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to abort multipart upload: %w", err)
	}

	return nil
}

// CopyObjectMultipart copies an object of the given size in
// DefaultCopyPartSize ranges. The upload is aborted if any part fails.
func (c *Client) CopyObjectMultipart(ctx context.Context, srcKey, dstKey string, size int64) error {
	uploadID, err := c.CreateMultipartUpload(ctx, dstKey)
	if err != nil {
		return err
	}

	var parts []types.CompletedPart
	partNumber := int32(1)
	for start := int64(0); start < size; start += DefaultCopyPartSize {
		end := start + DefaultCopyPartSize - 1
		if end >= size {
			end = size - 1
		}

		etag, err := c.UploadPartCopy(ctx, srcKey, dstKey, uploadID, partNumber, start, end)
		if err != nil {
			_ = c.AbortMultipartUpload(ctx, dstKey, uploadID)
			return err
		}

		parts = append(parts, types.CompletedPart{
			ETag:       aws.String(etag),
			PartNumber: aws.Int32(partNumber),
		})
		partNumber++
	}

	if err := c.CompleteMultipartUpload(ctx, dstKey, uploadID, parts); err != nil {
		_ = c.AbortMultipartUpload(ctx, dstKey, uploadID)
		return err
	}

	return nil
}
