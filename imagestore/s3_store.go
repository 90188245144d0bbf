package imagestore

import (
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
)

// S3ImageStore uploads images to an S3 bucket fronted by a public url
// prefix (bucket website or CDN).
type S3ImageStore struct {
	bucket    string
	urlPrefix string
	uploader  *s3manager.Uploader
}

func NewS3ImageStore(region, bucket, urlPrefix string) (*S3ImageStore, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, errors.Wrap(err, "fail to create AWS session")
	}
	return &S3ImageStore{
		bucket:    bucket,
		urlPrefix: urlPrefix,
		uploader:  s3manager.NewUploader(sess),
	}, nil
}

func (s *S3ImageStore) Save(r io.Reader, scope string, fileName string) (string, error) {
	key := imageKey(scope, fileName)
	_, err := s.uploader.Upload(&s3manager.UploadInput{
		ACL:    aws.String("public-read"),
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   r,
	})
	if err != nil {
		return "", errors.Wrap(err, "fail to upload image to S3")
	}
	return key, nil
}

func (s *S3ImageStore) URL(key string) string {
	return s.urlPrefix + key
}
