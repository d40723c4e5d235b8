package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/rpupo63/project-showcase/errs"
)

const (
	DefaultUploadMaxBytes int64 = 200 << 20
	UploadURLPrefix             = "/uploads/"
	sniffLen                    = 3072
)

// AllowedUploadTypes are the media types accepted for project images and videos.
var AllowedUploadTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"video/mp4",
	"video/webm",
	"video/ogg",
	"video/quicktime",
	"application/ogg",
}

// StoredFile describes an upload written to disk.
type StoredFile struct {
	Name     string `json:"filename"`
	URL      string `json:"fileUrl"`
	Size     int64  `json:"size"`
	MIMEType string `json:"mimeType"`
}

// UploadStore saves uploads under a single directory with generated names.
type UploadStore struct {
	dir      string
	maxBytes int64
}

func NewUploadStore(dir string, maxBytes int64) (*UploadStore, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultUploadMaxBytes
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory %s: %w", dir, err)
	}
	return &UploadStore{dir: dir, maxBytes: maxBytes}, nil
}

func (s *UploadStore) Dir() string { return s.dir }

func (s *UploadStore) MaxBytes() int64 { return s.maxBytes }

// Save sniffs the content type from the first bytes of r, rejects anything
// outside AllowedUploadTypes and writes the file as file-<uuid><ext>.
func (s *UploadStore) Save(r io.Reader, originalName string) (StoredFile, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return StoredFile{}, errs.NewMaxBodySizeExceededError(s.maxBytes)
		}
		return StoredFile{}, errs.NewMalformedPayloadError("file", err)
	}
	head = head[:n]
	if n == 0 {
		return StoredFile{}, errs.NewBadRequestErrorWithField("uploaded file is empty", "file", "")
	}

	detected, mimeType, err := SniffUpload(head)
	if err != nil {
		return StoredFile{}, err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return StoredFile{}, errs.NewInternalErrorWithCause("failed to store upload", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	body := io.MultiReader(bytes.NewReader(head), r)
	written, err := io.Copy(tmp, io.LimitReader(body, s.maxBytes+1))
	closeErr := tmp.Close()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return StoredFile{}, errs.NewMaxBodySizeExceededError(s.maxBytes)
		}
		return StoredFile{}, errs.NewInternalErrorWithCause("failed to store upload", err)
	}
	if closeErr != nil {
		return StoredFile{}, errs.NewInternalErrorWithCause("failed to store upload", closeErr)
	}
	if written > s.maxBytes {
		return StoredFile{}, errs.NewMaxBodySizeExceededError(s.maxBytes)
	}

	name := UploadName(originalName, detected)
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		return StoredFile{}, errs.NewInternalErrorWithCause("failed to store upload", err)
	}

	return StoredFile{
		Name:     name,
		URL:      UploadURLPrefix + name,
		Size:     written,
		MIMEType: mimeType,
	}, nil
}

// Remove deletes a stored upload by name. Missing files are not an error.
func (s *UploadStore) Remove(name string) error {
	base := filepath.Base(name)
	if base != name || base == "." || base == string(filepath.Separator) {
		return errs.NewInvalidFieldError("filename", "must be a bare file name")
	}
	if err := os.Remove(filepath.Join(s.dir, base)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing upload %s: %w", base, err)
	}
	return nil
}

// SniffUpload detects the media type of an upload from its leading bytes and
// returns it with the accepted type it matched.
func SniffUpload(head []byte) (*mimetype.MIME, string, error) {
	detected := mimetype.Detect(head)
	mimeType, ok := allowedType(detected)
	if !ok {
		return nil, "", errs.NewUnsupportedMediaTypeError(detected.String(), AllowedUploadTypes)
	}
	return detected, mimeType, nil
}

// UploadName generates the stored name file-<uuid><ext> for an upload.
func UploadName(originalName string, detected *mimetype.MIME) string {
	return "file-" + uuid.NewString() + extensionFor(originalName, detected)
}

// allowedType walks up the detected type's hierarchy, so aliases and
// parents such as application/ogg are matched too.
func allowedType(detected *mimetype.MIME) (string, bool) {
	for m := detected; m != nil; m = m.Parent() {
		for _, allowed := range AllowedUploadTypes {
			if m.Is(allowed) {
				return allowed, true
			}
		}
	}
	return "", false
}

// A short alphanumeric client extension is kept, otherwise the sniffed one is used.
func extensionFor(originalName string, detected *mimetype.MIME) string {
	ext := strings.ToLower(path.Ext(filepath.Base(originalName)))
	if ext != "" && len(ext) <= 6 && isAlnum(ext[1:]) {
		return ext
	}
	return detected.Extension()
}

func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
