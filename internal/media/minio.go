package media

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"

	"github.com/gfdmit/web-forum/board-service/config"
)

type presigner interface {
	PresignedGetObject(ctx context.Context, bucket string, object string, expiry time.Duration, params url.Values) (*url.URL, error)
}

// MinIOResolver presigns object keys stored in a MinIO bucket. Absolute URLs
// are returned as they are.
type MinIOResolver struct {
	cli    presigner
	bucket string
	expiry time.Duration
}

func NewMinIOResolver(conf config.MinIO, log logrus.FieldLogger) (*MinIOResolver, error) {
	client, err := minio.New(fmt.Sprintf("%s:%s", conf.Host, conf.Port), &minio.Options{
		Creds:  credentials.NewStaticV4(conf.User, conf.Pass, ""),
		Secure: false,
	})
	if err != nil {
		return nil, fmt.Errorf("minio.New: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, conf.Bucket)
	if err != nil {
		return nil, fmt.Errorf("client.BucketExists: %v", err)
	}
	if !exists {
		log.WithField("source", "minio").WithField("bucket", conf.Bucket).Warn("profile image bucket does not exist")
	}

	return &MinIOResolver{
		cli:    client,
		bucket: conf.Bucket,
		expiry: conf.PresignExpiry,
	}, nil
}

func (mr *MinIOResolver) Resolve(ctx context.Context, ref string) (string, error) {
	if ref == "" || absolute(ref) {
		return ref, nil
	}
	u, err := mr.cli.PresignedGetObject(ctx, mr.bucket, strings.TrimPrefix(ref, "/"), mr.expiry, nil)
	if err != nil {
		return "", fmt.Errorf("media.Resolve %s: %v", ref, err)
	}
	return u.String(), nil
}
