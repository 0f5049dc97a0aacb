package predictor

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// SelectedFile is a user-chosen image. Open may be called once per reader;
// the preview and the upload each open it independently.
type SelectedFile struct {
	Name string
	Open func() (io.ReadCloser, error)
}

func FileFromBytes(name string, data []byte) SelectedFile {
	return SelectedFile{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

func FileFromPath(path string) SelectedFile {
	return SelectedFile{
		Name: filepath.Base(path),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// StaticInput is a FileInput with a fixed selection.
type StaticInput []SelectedFile

func (s StaticInput) Files() []SelectedFile {
	return s
}

// DataURL encodes the file content as a base64 data URL. The MIME type comes
// from the file extension, falling back to content sniffing.
func DataURL(name string, data []byte) string {
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

func readPreview(file SelectedFile) (string, error) {
	rc, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", file.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", file.Name, err)
	}
	return DataURL(file.Name, data), nil
}
