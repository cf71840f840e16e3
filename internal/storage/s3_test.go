package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

func TestPutObjectValidatesTarget(t *testing.T) {
	svc := NewS3Service(s3.New(s3.Options{Region: "us-east-1"}))

	tests := []struct {
		name string
		obj  Object
	}{
		{name: "missing bucket", obj: Object{Key: "a.html", Body: strings.NewReader("x")}},
		{name: "missing key", obj: Object{Bucket: "articles", Key: "/", Body: strings.NewReader("x")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.PutObject(context.Background(), tt.obj); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
