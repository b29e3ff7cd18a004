package utils

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

const uploadRoot = "uploads"

// EnsureUploadDir creates the local upload root used as the fallback store
// for badge artwork when R2 is not configured.
func EnsureUploadDir() error {
	return os.MkdirAll(filepath.Join(uploadRoot, "badges"), os.ModePerm)
}

// SaveUpload writes an uploaded file under the local upload root and returns
// the path it was written to, relative to the working directory.
func SaveUpload(fileHeader *multipart.FileHeader, key string) (string, error) {
	destPath := filepath.Join(uploadRoot, key)
	if err := os.MkdirAll(filepath.Dir(destPath), os.ModePerm); err != nil {
		return "", err
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return destPath, nil
}
