package server

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"tenderd/internal/utils"
	"tenderd/pkg/types"
)

const maxUploadBytes = 25 << 20

type storedUpload struct {
	url         string
	filename    string
	contentType string
	size        int64
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// storeUpload pushes the named multipart file into the bucket under a
// per-request key and returns where it landed.
func (s *Service) storeUpload(ctx context.Context, r *http.Request, field, keyPrefix string) (*storedUpload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%w: missing %s upload", types.ErrInvalidArgument, field)
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("%s/%s%s", keyPrefix, utils.NanoID(), filepath.Ext(header.Filename))

	url, err := s.uploads.UploadFile(ctx, key, file, contentType)
	if err != nil {
		return nil, err
	}

	return &storedUpload{
		url:         url,
		filename:    header.Filename,
		contentType: contentType,
		size:        header.Size,
	}, nil
}
