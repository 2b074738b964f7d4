// File: internal/filestorage/service.go
package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service stores uploaded verification documents on local disk. Files are
// renamed to UUIDs so originals never leak user-supplied names into paths.
type Service struct {
	storagePath  string
	maxSizeBytes int64
	logger       *zap.Logger
}

// NewService creates the document storage service rooted at storagePath.
// maxSizeMB bounds a single upload; zero disables the check.
func NewService(storagePath string, maxSizeMB int, logger *zap.Logger) (*Service, error) {
	if storagePath == "" {
		return nil, fmt.Errorf("storage path cannot be empty")
	}
	if err := os.MkdirAll(storagePath, os.ModePerm); err != nil {
		logger.Error("Failed to create storage path directory", zap.String("path", storagePath), zap.Error(err))
		return nil, fmt.Errorf("failed to create storage path %s: %w", storagePath, err)
	}
	logger.Info("Document storage initialized", zap.String("storagePath", storagePath))
	return &Service{
		storagePath:  storagePath,
		maxSizeBytes: int64(maxSizeMB) * 1024 * 1024,
		logger:       logger,
	}, nil
}

// allowedExtension maps the document formats we accept to themselves; the
// map doubles as the allow-list.
var allowedExtension = map[string]struct{}{
	".pdf":  {},
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// SaveDocument saves a multipart upload under storagePath/subDir and returns
// the relative path of the stored file (e.g. "documents/<uuid>.pdf").
func (s *Service) SaveDocument(fileHeader *multipart.FileHeader, subDir string) (string, error) {
	if fileHeader == nil {
		return "", fmt.Errorf("fileHeader cannot be nil")
	}
	if s.maxSizeBytes > 0 && fileHeader.Size > s.maxSizeBytes {
		return "", fmt.Errorf("file exceeds maximum size of %d bytes", s.maxSizeBytes)
	}

	extension := strings.ToLower(filepath.Ext(filepath.Base(fileHeader.Filename)))
	if extension == "" {
		switch contentType := fileHeader.Header.Get("Content-Type"); {
		case strings.HasPrefix(contentType, "application/pdf"):
			extension = ".pdf"
		case strings.HasPrefix(contentType, "image/jpeg"):
			extension = ".jpg"
		case strings.HasPrefix(contentType, "image/png"):
			extension = ".png"
		default:
			return "", fmt.Errorf("unsupported file type or missing extension: %s", contentType)
		}
	}
	if _, ok := allowedExtension[extension]; !ok {
		return "", fmt.Errorf("unsupported document format: %s", extension)
	}

	src, err := fileHeader.Open()
	if err != nil {
		s.logger.Error("Failed to open uploaded file", zap.Error(err))
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	cleanSubDir := filepath.Clean(subDir)
	if strings.HasPrefix(cleanSubDir, "..") {
		return "", fmt.Errorf("invalid subDir path")
	}

	destinationDir := filepath.Join(s.storagePath, cleanSubDir)
	if err := os.MkdirAll(destinationDir, os.ModePerm); err != nil {
		s.logger.Error("Failed to create sub-directory", zap.String("path", destinationDir), zap.Error(err))
		return "", fmt.Errorf("failed to create directory %s: %w", destinationDir, err)
	}

	uniqueFilename := uuid.New().String() + extension
	destinationPath := filepath.Join(destinationDir, uniqueFilename)

	dst, err := os.Create(destinationPath)
	if err != nil {
		s.logger.Error("Failed to create destination file", zap.String("path", destinationPath), zap.Error(err))
		return "", fmt.Errorf("failed to create file %s: %w", destinationPath, err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		s.logger.Error("Failed to write uploaded file", zap.String("path", destinationPath), zap.Error(err))
		os.Remove(destinationPath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return filepath.ToSlash(filepath.Join(cleanSubDir, uniqueFilename)), nil
}

// DeleteDocument removes a previously stored file by its relative path.
// Missing files are not an error; abandoned drafts may already be cleaned.
func (s *Service) DeleteDocument(relativePath string) error {
	if relativePath == "" {
		return fmt.Errorf("relative path cannot be empty")
	}
	cleanRelativePath := filepath.Clean(relativePath)
	if strings.Contains(cleanRelativePath, "..") || filepath.IsAbs(cleanRelativePath) {
		return fmt.Errorf("invalid relative path")
	}

	fullPath := filepath.Join(s.storagePath, cleanRelativePath)
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		s.logger.Error("Failed to delete document", zap.String("path", fullPath), zap.Error(err))
		return fmt.Errorf("failed to delete file %s: %w", fullPath, err)
	}
	return nil
}
