package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/mdsetiawan/facility-directory/internal/application/services"
)

// multipartMemory is the in-memory threshold for multipart parsing; the
// request body itself is already capped by the router.
const multipartMemory = 10 << 20

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// formFile reads an uploaded file field into an AssetUpload. A missing
// field yields nil, not an error.
func formFile(r *http.Request, field string) (*services.AssetUpload, error) {
	file, header, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &services.AssetUpload{
		Filename: header.Filename,
		Data:     data,
	}, nil
}

// formStrings reads a repeatable form field. A single value holding a JSON
// array is unpacked, matching what map clients send.
func formStrings(r *http.Request, field string) []string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[field]
	if !ok {
		return nil
	}
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var parsed []string
		if err := json.Unmarshal([]byte(values[0]), &parsed); err == nil {
			return parsed
		}
	}
	return values
}

// formString reads a single form field, reporting presence separately so
// partial updates can tell absent from empty.
func formString(r *http.Request, field string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	values, ok := r.MultipartForm.Value[field]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}
