// Package drive pushes document bytes to Google Drive using a service
// account. It implements the document.Storage interface.
package drive

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Client wraps the Drive API for uploads into one shared folder.
type Client struct {
	service  *drive.Service
	folderID string
}

// NewClient reads the service account credentials file and builds a Drive
// client scoped to file uploads. folderID is the Drive folder every upload
// lands in; empty means the service account's root.
func NewClient(ctx context.Context, credentialsFile, folderID string) (*Client, error) {
	creds, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(creds, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	service, err := drive.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	return &Client{service: service, folderID: folderID}, nil
}

// Upload stores the content and returns the Drive file ID.
func (c *Client) Upload(ctx context.Context, name, mimeType string, content []byte) (string, error) {
	meta := &drive.File{Name: name}
	if c.folderID != "" {
		meta.Parents = []string{c.folderID}
	}

	file, err := c.service.Files.Create(meta).
		Media(bytes.NewReader(content), googleapi.ContentType(mimeType)).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("upload file %s: %w", name, err)
	}
	return file.Id, nil
}
