package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/bikkkubo/news-bot/internal/interfaces"
)

// DriveArchiver uploads run artifacts into a fixed Google Drive
// folder using a service account.
type DriveArchiver struct {
	service  *drive.Service
	folderID string
}

var _ interfaces.Archiver = (*DriveArchiver)(nil)

func NewDriveArchiver(ctx context.Context, credentialsFile, folderID string) (*DriveArchiver, error) {
	if credentialsFile == "" || folderID == "" {
		return nil, fmt.Errorf("drive archiver requires credentials file and folder id")
	}

	srv, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveFileScope),
	)
	if err != nil {
		return nil, fmt.Errorf("creating drive service: %w", err)
	}
	return &DriveArchiver{service: srv, folderID: folderID}, nil
}

// Upload sends one file to the archive folder and returns the Drive
// file ID.
func (d *DriveArchiver) Upload(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	meta := &drive.File{
		Name:    filepath.Base(path),
		Parents: []string{d.folderID},
	}
	created, err := d.service.Files.Create(meta).Media(f).Fields("id").Do()
	if err != nil {
		return "", fmt.Errorf("uploading %s to drive: %w", path, err)
	}
	return created.Id, nil
}
