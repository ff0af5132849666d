// Package s3 負責將車輛照片上傳到相容 S3 的物件儲存，
// 並回傳可公開存取的 URL
package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Operator struct {
	// Client 是 S3 客戶端
	Client *s3.Client
	// Bucket 是 S3 存儲桶的名稱
	Bucket string
	// PublicEndpoint 是 S3 存儲桶的公開 Endpoint
	PublicEndpoint *url.URL
}

func NewS3Operator(client *s3.Client, bucket, publicBaseURL string) (*S3Operator, error) {
	const op = "NewS3Operator"
	publicEndpoint, err := url.Parse(publicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to parse public base URL, err=%w", op, err)
	}
	return &S3Operator{Client: client, Bucket: bucket, PublicEndpoint: publicEndpoint}, nil
}

// UploadVehicleImage 上傳一張車輛照片並回傳公開 URL
func (s *S3Operator) UploadVehicleImage(ctx context.Context, path, contentType string, content []byte) (string, error) {
	const op = "UploadVehicleImage"
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(path),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("[%s] Fail to upload image to S3, err=%w", op, err)
	}
	uri := *s.PublicEndpoint
	uri.Path = path
	return uri.String(), nil
}
