package testutil

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
)

// Upload is a file part of a multipart form.
type Upload struct {
	Field    string
	Filename string
	Data     []byte
}

// MultipartRequest builds a multipart/form-data request with the given
// fields and optional file.
func MultipartRequest(t testing.TB, method, target string, fields map[string]string, file *Upload) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if file != nil {
		fw, err := mw.CreateFormFile(file.Field, file.Filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := io.Copy(fw, bytes.NewReader(file.Data)); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// WithCookies copies the cookies set on a previous response onto req.
func WithCookies(req *http.Request, resp *http.Response) *http.Request {
	for _, c := range resp.Cookies() {
		req.AddCookie(c)
	}
	return req
}
