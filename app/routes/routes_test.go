package routes

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"postboard/app/controllers"
	"postboard/app/repositories"
	"postboard/app/services"
	"postboard/app/storage"
	"postboard/app/testutil"
	"postboard/app/views"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	handler http.Handler
	repo    repositories.PostRepository
	root    string
	logs    *bytes.Buffer
}

func setupTestApp(t *testing.T) *testApp {
	t.Helper()
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, nil))

	db, err := repositories.OpenBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := repositories.NewBadgerPostRepository(db)

	root := t.TempDir()
	files, err := storage.NewLocalStore(root, "/storage")
	require.NoError(t, err)

	postService := services.NewPostService(repo, files, logger)
	renderer, err := views.New(views.Options{SessionSecret: "routes-test-secret", ImageURL: postService.ImageURL})
	require.NoError(t, err)

	handler := Handler(Deps{
		Posts:       controllers.NewPostController(postService, renderer, logger),
		Views:       renderer,
		Logger:      logger,
		StorageRoot: root,
		StoragePath: "/storage",
	})
	return &testApp{handler: handler, repo: repo, root: root, logs: logs}
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func formRequest(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestRootRedirects(t *testing.T) {
	app := setupTestApp(t)
	rec := app.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/posts", rec.Header().Get("Location"))
}

func TestResourceRoutes(t *testing.T) {
	app := setupTestApp(t)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/posts", http.StatusOK},
		{http.MethodGet, "/posts/create", http.StatusOK},
		{http.MethodGet, "/posts/1", http.StatusNotFound},
		{http.MethodGet, "/posts/1/edit", http.StatusNotFound},
		{http.MethodDelete, "/posts/1", http.StatusNotFound},
		{http.MethodGet, "/posts/abc", http.StatusNotFound},
		{http.MethodGet, "/nowhere", http.StatusNotFound},
		{http.MethodPost, "/posts/1", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := app.do(httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestFormLifecycle(t *testing.T) {
	app := setupTestApp(t)
	ctx := context.Background()

	// Create through a real multipart form post.
	rec := app.do(testutil.MultipartRequest(t, http.MethodPost, "/posts",
		map[string]string{"title": "Hello World", "content": "This is content"},
		&testutil.Upload{Field: "image", Filename: "cat.jpg", Data: testutil.JPEG(t, 1024)}))
	require.Equal(t, http.StatusFound, rec.Code)

	post, err := app.repo.GetByID(ctx, 1)
	require.NoError(t, err)
	stored := filepath.Join(app.root, "posts", post.Image)
	_, err = os.Stat(stored)
	require.NoError(t, err)

	// The stored image is publicly reachable.
	img := app.do(httptest.NewRequest(http.MethodGet, "/storage/posts/"+post.Image, nil))
	assert.Equal(t, http.StatusOK, img.Code)
	assert.Equal(t, "image/jpeg", img.Header().Get("Content-Type"))

	// Directory listings are hidden.
	assert.Equal(t, http.StatusNotFound, app.do(httptest.NewRequest(http.MethodGet, "/storage/posts/", nil)).Code)

	// Update tunnels PUT through POST with _method in the multipart body.
	rec = app.do(testutil.MultipartRequest(t, http.MethodPost, "/posts/1",
		map[string]string{"_method": "PUT", "title": "Hello Again", "content": "Updated content"},
		&testutil.Upload{Field: "image", Filename: "dog.png", Data: testutil.PNG(t)}))
	require.Equal(t, http.StatusFound, rec.Code)

	updated, err := app.repo.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Hello Again", updated.Title)
	assert.True(t, strings.HasSuffix(updated.Image, ".png"))
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err), "old image should be removed")

	// Delete tunnels DELETE through an urlencoded form.
	rec = app.do(formRequest("/posts/1", url.Values{"_method": {"DELETE"}}))
	require.Equal(t, http.StatusFound, rec.Code)
	_, err = app.repo.GetByID(ctx, 1)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = os.Stat(filepath.Join(app.root, "posts", updated.Image))
	assert.True(t, os.IsNotExist(err))

	flashed := app.do(testutil.WithCookies(httptest.NewRequest(http.MethodGet, "/posts", nil), rec.Result()))
	assert.Contains(t, flashed.Body.String(), controllers.FlashDeleted)

	assert.Contains(t, app.logs.String(), "method=DELETE")
}

func TestOversizedBodyIsRejected(t *testing.T) {
	app := setupTestApp(t)
	huge := bytes.Repeat([]byte{0xff}, 9<<20)
	rec := app.do(testutil.MultipartRequest(t, http.MethodPost, "/posts",
		map[string]string{"title": "Hello World", "content": "This is content"},
		&testutil.Upload{Field: "image", Filename: "huge.jpg", Data: huge}))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestPanicsRenderErrorPage(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	renderer, err := views.New(views.Options{SessionSecret: "panic-secret"})
	require.NoError(t, err)

	h := Handler(Deps{Views: renderer, Logger: logger, Posts: nil})
	rec := httptest.NewRecorder()
	// A nil controller panics on first use.
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/posts", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "500 | Server Error")
}
