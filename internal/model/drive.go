package model

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DriveFetcher downloads model artifacts stored in Google Drive.
type DriveFetcher struct {
	service *drive.Service
}

// NewDriveFetcher authenticates with the given options, typically
// option.WithCredentialsJSON holding a service account key.
func NewDriveFetcher(ctx context.Context, opts ...option.ClientOption) (*DriveFetcher, error) {
	opts = append([]option.ClientOption{option.WithScopes(drive.DriveReadonlyScope)}, opts...)
	service, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to authenticate with google drive: %w", err)
	}
	return &DriveFetcher{service: service}, nil
}

// EnsureFile downloads fileID to dest unless dest already exists. The file is
// written to a temporary sibling first so a failed download never leaves a
// truncated artifact behind.
func (f *DriveFetcher) EnsureFile(ctx context.Context, fileID, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		log.Info().Str("path", dest).Msg("model artifact present, skipping download")
		return nil
	}

	res, err := f.service.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	defer res.Body.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".*.part")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	progress := &progressWriter{dest: dest, total: res.ContentLength}
	if _, err := io.Copy(io.MultiWriter(tmp, progress), res.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", dest, err)
	}

	log.Info().Str("path", dest).Int64("bytes", progress.written).Msg("downloaded model artifact")
	return nil
}

// progressWriter logs download progress in 10% steps when the size is known.
type progressWriter struct {
	dest     string
	total    int64
	written  int64
	reported int64
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.written += int64(len(b))
	if p.total > 0 {
		pct := p.written * 100 / p.total
		if pct >= p.reported+10 {
			p.reported = pct - pct%10
			log.Info().Str("path", p.dest).Int64("percent", p.reported).Msg("downloading")
		}
	}
	return len(b), nil
}
