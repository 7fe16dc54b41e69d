package controllers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"postboard/app/middleware"
	"postboard/app/models"
	"postboard/app/repositories"
	"postboard/app/services"
	"postboard/app/views"

	"github.com/gorilla/mux"
)

// Flash messages shown after a successful write.
const (
	FlashCreated = "Data Berhasil Disimpan!"
	FlashUpdated = "Data Berhasil Diubah!"
	FlashDeleted = "Data Berhasil Dihapus!"
)

// PostController handles HTTP requests for posts
type PostController struct {
	postService *services.PostService
	views       *views.Renderer
	logger      *slog.Logger
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService, renderer *views.Renderer, logger *slog.Logger) *PostController {
	return &PostController{
		postService: postService,
		views:       renderer,
		logger:      logger,
	}
}

// Index handles listing posts, five per page
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	result, err := pc.postService.ListPosts(r.Context(), page)
	if err != nil {
		pc.sendError(w, r, err)
		return
	}
	pc.render(w, r, http.StatusOK, views.PostsIndex, views.Data{"Page": result})
}

// Create displays the form for creating a new post
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	pc.render(w, r, http.StatusOK, views.PostsCreate, formData(nil, nil, "", ""))
}

// Store handles creating a new post
func (pc *PostController) Store(w http.ResponseWriter, r *http.Request) {
	form, err := readPostForm(r)
	if err != nil {
		pc.sendError(w, r, err)
		return
	}

	_, err = pc.postService.CreatePost(r.Context(), models.CreatePostInput{
		Image:   form.image,
		Title:   form.title,
		Content: form.content,
	})
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		pc.render(w, r, http.StatusUnprocessableEntity, views.PostsCreate, formData(nil, verr, form.title, form.content))
		return
	}
	if err != nil {
		pc.sendError(w, r, err)
		return
	}
	pc.redirect(w, r, FlashCreated)
}

// Show handles displaying a single post
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	post, ok := pc.findPost(w, r)
	if !ok {
		return
	}
	pc.render(w, r, http.StatusOK, views.PostsShow, views.Data{"Post": post})
}

// Edit displays the form for editing a post
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	post, ok := pc.findPost(w, r)
	if !ok {
		return
	}
	pc.render(w, r, http.StatusOK, views.PostsEdit, formData(post, nil, post.Title, post.Content))
}

// Update handles updating an existing post
func (pc *PostController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		pc.views.NotFound(w, r)
		return
	}
	form, err := readPostForm(r)
	if err != nil {
		pc.sendError(w, r, err)
		return
	}

	_, err = pc.postService.UpdatePost(r.Context(), id, models.UpdatePostInput{
		Image:   form.image,
		Title:   form.title,
		Content: form.content,
	})
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		post, err := pc.postService.GetPost(r.Context(), id)
		if err != nil {
			pc.sendError(w, r, err)
			return
		}
		pc.render(w, r, http.StatusUnprocessableEntity, views.PostsEdit, formData(post, verr, form.title, form.content))
		return
	}
	if err != nil {
		pc.sendError(w, r, err)
		return
	}
	pc.redirect(w, r, FlashUpdated)
}

// Destroy handles deleting a post and its image
func (pc *PostController) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		pc.views.NotFound(w, r)
		return
	}
	if err := pc.postService.DeletePost(r.Context(), id); err != nil {
		pc.sendError(w, r, err)
		return
	}
	pc.redirect(w, r, FlashDeleted)
}

func (pc *PostController) findPost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	id, ok := postID(r)
	if !ok {
		pc.views.NotFound(w, r)
		return nil, false
	}
	post, err := pc.postService.GetPost(r.Context(), id)
	if err != nil {
		pc.sendError(w, r, err)
		return nil, false
	}
	return post, true
}

func postID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func formData(post *models.Post, verr *models.ValidationError, title, content string) views.Data {
	return views.Data{
		"Post":   post,
		"Errors": verr,
		"Old":    map[string]string{"title": title, "content": content},
	}
}

type postForm struct {
	title   string
	content string
	image   *models.ImageUpload
}

// readPostForm parses a multipart or urlencoded post form. A missing file
// leaves image nil.
func readPostForm(r *http.Request) (*postForm, error) {
	if err := r.ParseMultipartForm(middleware.MaxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, fmt.Errorf("parsing form: %w", err)
	}
	form := &postForm{
		title:   strings.TrimSpace(r.PostFormValue("title")),
		content: strings.TrimSpace(r.PostFormValue("content")),
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return form, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	form.image = models.NewImageUpload(header.Filename, data)
	return form, nil
}

func (pc *PostController) render(w http.ResponseWriter, r *http.Request, status int, page string, data views.Data) {
	if err := pc.views.Render(w, r, status, page, data); err != nil {
		pc.sendError(w, r, err)
	}
}

func (pc *PostController) redirect(w http.ResponseWriter, r *http.Request, flash string) {
	if err := pc.views.Redirect(w, r, "posts.index", flash); err != nil {
		pc.sendError(w, r, err)
	}
}

// sendError maps err onto a response: 404 for unknown posts, 413 for
// oversized bodies and the generic error page for everything else.
func (pc *PostController) sendError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		pc.views.NotFound(w, r)
	case errors.As(err, &tooLarge):
		http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
	default:
		pc.logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		pc.views.ServerError(w, r)
	}
}
