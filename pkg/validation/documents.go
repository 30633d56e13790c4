package validation

import (
	"errors"
	"path"
	"strings"
)

// Document types an applicant may attach (strict whitelist)
var allowedDocumentExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

var (
	ErrDocumentNoExtension = errors.New("file has no extension")
	ErrDocumentExtension   = errors.New("file extension not allowed")
	ErrDocumentPath        = errors.New("file path must stay inside the upload area")
)

// ValidateDocumentRef checks an attached document reference. The upload
// itself happens elsewhere; only the stored name and path are checked here.
func ValidateDocumentRef(fileName, filePath string) error {
	if filePath != "" {
		if strings.HasPrefix(filePath, "/") || strings.Contains(filePath, "\\") {
			return ErrDocumentPath
		}
		for _, seg := range strings.Split(filePath, "/") {
			if seg == ".." {
				return ErrDocumentPath
			}
		}
	}

	name := fileName
	if name == "" {
		name = path.Base(filePath)
	}
	ext := strings.ToLower(path.Ext(name))
	if ext == "" {
		return ErrDocumentNoExtension
	}
	if !allowedDocumentExtensions[ext] {
		return ErrDocumentExtension
	}
	return nil
}
