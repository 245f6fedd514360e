package storage

import (
	"context"
	"fmt"
	"io"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	Delete(ctx context.Context, key string) error

	GetPublicURL(key string) string
}

// ReportKey is the object key a tournament's exported report is stored under.
func ReportKey(tournamentID int) string {
	return fmt.Sprintf("reports/tournament-%d.json", tournamentID)
}
