package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func TestLogger(t *testing.T) {
	logger, buf := bufferLogger()
	handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	out := buf.String()
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, out, "method=GET")
	assert.Contains(t, out, "path=/test")
	assert.Contains(t, out, "status=418")
	assert.Contains(t, out, "bytes=15")
	assert.Contains(t, out, "duration=")
}

func TestLoggerDefaultsToOK(t *testing.T) {
	logger, buf := bufferLogger()
	handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, buf.String(), "status=200")
}

func TestRecoverer(t *testing.T) {
	logger, buf := bufferLogger()
	panicky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	})

	t.Run("default response", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Recoverer(logger, nil)(panicky).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal Server Error\n", rec.Body.String())
		assert.Contains(t, buf.String(), "test panic")
	})

	t.Run("custom response", func(t *testing.T) {
		rec := httptest.NewRecorder()
		onPanic := func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, "custom error page")
		}
		Recoverer(logger, onPanic)(panicky).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, "custom error page", rec.Body.String())
	})

	t.Run("no panic", func(t *testing.T) {
		rec := httptest.NewRecorder()
		ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("success")) })
		Recoverer(logger, nil)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "success", rec.Body.String())
	})
}

func echoMethod(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, r.Method)
	})
}

func TestMethodOverride(t *testing.T) {
	handler := MethodOverride(echoMethod(t))

	t.Run("form field", func(t *testing.T) {
		form := url.Values{"_method": {"delete"}}
		req := httptest.NewRequest(http.MethodPost, "/posts/1", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.MethodDelete, rec.Body.String())
	})

	t.Run("multipart field keeps the file readable", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		require.NoError(t, mw.WriteField("_method", "PUT"))
		fw, err := mw.CreateFormFile("image", "a.png")
		require.NoError(t, err)
		fw.Write([]byte("png bytes"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/posts/1", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()

		MethodOverride(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseMultipartForm(MaxBodyBytes))
			f, _, err := r.FormFile("image")
			require.NoError(t, err)
			defer f.Close()
			data, _ := io.ReadAll(f)
			io.WriteString(w, r.Method+" "+string(data))
		})).ServeHTTP(rec, req)
		assert.Equal(t, "PUT png bytes", rec.Body.String())
	})

	t.Run("header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/posts/1", nil)
		req.Header.Set("X-HTTP-Method-Override", "PATCH")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.MethodPatch, rec.Body.String())
	})

	t.Run("only overrides post", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/posts/1?_method=DELETE", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.MethodGet, rec.Body.String())
	})

	t.Run("ignores unsupported methods", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/posts", nil)
		req.Header.Set("X-HTTP-Method-Override", "TRACE")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.MethodPost, rec.Body.String())
	})
}

func TestBodyLimit(t *testing.T) {
	handler := BodyLimit(4)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("abc")))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("abcdef")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	// Unknown length is cut off while reading.
	chunked := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("abcdef"))
	chunked.ContentLength = -1
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, chunked)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
