package filestorage

import (
	"mime/multipart"
)

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveFileWithPath stores the upload under a subdirectory and returns
	// the storage-relative path to persist
	SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error)

	// DeleteFile removes a stored file; missing files are not an error
	DeleteFile(storedPath string) error

	// GetFullPath resolves a stored path to a filesystem path inside the storage root
	GetFullPath(storedPath string) (string, error)
}
