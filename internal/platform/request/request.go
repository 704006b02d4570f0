// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and body
decoding, so handlers accept JSON from scripts and urlencoded forms from plain
HTML pages through one call.
*/
package requestutil

import (
	"encoding/json"
	"mime"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/circleblog/internal/platform/ctxutil"
	"github.com/taibuivan/circleblog/internal/platform/sec"
	"github.com/taibuivan/circleblog/internal/platform/validate"
)

// maxBodyBytes bounds JSON and urlencoded bodies. Multipart uploads have their own limit.
const maxBodyBytes = 1 << 20

// FormDecoder is implemented by request structs that can also be filled from an HTML form.
type FormDecoder interface {
	DecodeForm(values url.Values)
}

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - writer: http.ResponseWriter (used to enforce the body limit)
  - request: *http.Request
  - target: any (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target any) error {
	request.Body = http.MaxBytesReader(writer, request.Body, maxBodyBytes)
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Decode fills target from a JSON body, or from form values when the request
was submitted as application/x-www-form-urlencoded or multipart/form-data.
*/
func Decode(writer http.ResponseWriter, request *http.Request, target FormDecoder) error {
	if !IsForm(request) {
		return DecodeJSON(writer, request, target)
	}

	request.Body = http.MaxBytesReader(writer, request.Body, maxBodyBytes)
	if err := ParseForm(request, maxBodyBytes); err != nil {
		return validate.Invalid("form", "Invalid form submission")
	}

	target.DecodeForm(request.Form)
	return nil
}

// IsForm reports whether the body is an HTML form submission.
func IsForm(request *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(request.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data"
}

// ParseForm parses urlencoded or multipart bodies, keeping up to maxMemory bytes of files in memory.
// Calling it twice is harmless.
func ParseForm(request *http.Request, maxMemory int64) error {
	mediaType, _, _ := mime.ParseMediaType(request.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if request.MultipartForm != nil {
			return nil
		}
		return request.ParseMultipartForm(maxMemory)
	}
	return request.ParseForm()
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
ID parses a positive int64 URL parameter.

Returns:
  - int64: The identifier
  - error: validation error carrying message when absent or not a positive integer
*/
func ID(request *http.Request, name, message string) (int64, error) {
	id, ok := validate.PositiveID(chi.URLParam(request, name))
	if !ok {
		return 0, validate.Invalid(name, message)
	}
	return id, nil
}

/*
Identity extracts the session-resolved caller from the request context.

Returns nil if the request is anonymous.
*/
func Identity(request *http.Request) *sec.Identity {
	return ctxutil.GetIdentity(request.Context())
}
