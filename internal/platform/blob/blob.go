// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package blob stores uploaded post images and returns the path under which they
are served. Callers treat the returned path as opaque.
*/
package blob

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/taibuivan/circleblog/internal/platform/validate"
)

const fieldImage = "image"

// # Upload Policy

// Policy limits what may be uploaded.
type Policy struct {
	AllowedTypes []string
	MaxSize      int64
}

/*
Check validates an upload by extension, declared size and sniffed content.

Parameters:
  - filename: string (client-supplied, used only for its extension)
  - size: int64 (declared size in bytes)
  - head: []byte (first bytes of the file, up to 512)

Returns:
  - string: Normalized lowercase extension
  - error: validation error with a client-facing message
*/
func (policy Policy) Check(filename string, size int64, head []byte) (string, error) {
	extension := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))

	if !slices.Contains(policy.AllowedTypes, extension) {
		return "", validate.Invalid(fieldImage, "Invalid file type. Allowed: "+strings.Join(policy.AllowedTypes, ", "))
	}

	if size > policy.MaxSize {
		return "", validate.Invalid(fieldImage, fmt.Sprintf("File too large. Max size: %gMB", float64(policy.MaxSize)/(1<<20)))
	}

	if !strings.HasPrefix(http.DetectContentType(head), "image/") {
		return "", validate.Invalid(fieldImage, "Invalid file type. Allowed: "+strings.Join(policy.AllowedTypes, ", "))
	}

	return extension, nil
}

// # Local Store

// LocalStore writes blobs to a directory served under a URL prefix.
type LocalStore struct {
	directory string
	urlPrefix string
}

// NewLocalStore creates directory if needed.
func NewLocalStore(directory, urlPrefix string) (*LocalStore, error) {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("blob: create upload dir: %w", err)
	}
	return &LocalStore{directory: directory, urlPrefix: strings.Trim(urlPrefix, "/")}, nil
}

// Directory returns the filesystem root, for static serving.
func (store *LocalStore) Directory() string {
	return store.directory
}

// URLPrefix returns the path prefix that saved blobs are served under.
func (store *LocalStore) URLPrefix() string {
	return store.urlPrefix
}

/*
Save writes content under a fresh random name with the given extension.

Returns:
  - string: Path such as "uploads/0190c1e4-....jpg"
  - error: I/O failures
*/
func (store *LocalStore) Save(_ context.Context, content io.Reader, extension string) (string, error) {
	name := uuid.NewString() + "." + extension
	target := filepath.Join(store.directory, name)

	file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("blob_save_open_failed: %w", err)
	}

	if _, err := io.Copy(file, content); err != nil {
		_ = file.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("blob_save_write_failed: %w", err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("blob_save_close_failed: %w", err)
	}

	return path.Join(store.urlPrefix, name), nil
}

// Delete removes a blob previously returned by Save. Missing files are ignored.
func (store *LocalStore) Delete(_ context.Context, blobPath string) error {
	if blobPath == "" {
		return nil
	}

	// Only the base name is trusted, so a stored path can never escape the directory
	target := filepath.Join(store.directory, path.Base(blobPath))
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("blob_delete_failed: %w", err)
	}
	return nil
}

// Sniff returns the first bytes of content for [Policy.Check] and a reader
// that still yields the whole stream.
func Sniff(content io.Reader) ([]byte, io.Reader, error) {
	buffered := bufio.NewReaderSize(content, 512)
	head, err := buffered.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, nil, fmt.Errorf("blob_sniff_failed: %w", err)
	}
	return head, buffered, nil
}
