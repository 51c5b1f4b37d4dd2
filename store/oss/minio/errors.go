package minio

import (
	"errors"

	"github.com/minio/minio-go/v7"
)

var (
	ErrEmptyBucketName = errors.New("minio: bucket name cannot be empty")
	ErrEmptyObjectName = errors.New("minio: object name cannot be empty")
	ErrObjectNotFound  = errors.New("minio: object not found")
)

func isNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}
