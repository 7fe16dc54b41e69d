package routes

import (
	"log/slog"
	"net/http"
	"strings"

	"postboard/app/controllers"
	"postboard/app/middleware"
	"postboard/app/views"

	"github.com/gorilla/mux"
)

// Deps holds what the router needs to dispatch requests.
type Deps struct {
	Posts  *controllers.PostController
	Views  *views.Renderer
	Logger *slog.Logger

	// StorageRoot, when set, is served read-only under StoragePath.
	StorageRoot string
	StoragePath string
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(d Deps) *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(d.Views.NotFound)

	if d.StorageRoot != "" && strings.HasPrefix(d.StoragePath, "/") {
		prefix := strings.TrimRight(d.StoragePath, "/") + "/"
		files := http.StripPrefix(prefix, http.FileServer(http.Dir(d.StorageRoot)))
		router.PathPrefix(prefix).Handler(noDirListing(files, d.Views.NotFound)).Methods("GET", "HEAD")
	}

	router.Handle("/", http.RedirectHandler("/posts", http.StatusFound)).Methods("GET")

	// Posts resource
	posts := router.PathPrefix("/posts").Subrouter()
	posts.HandleFunc("", d.Posts.Index).Methods("GET")
	posts.HandleFunc("/create", d.Posts.Create).Methods("GET")
	posts.HandleFunc("", d.Posts.Store).Methods("POST")
	posts.HandleFunc("/{id:[0-9]+}", d.Posts.Show).Methods("GET")
	posts.HandleFunc("/{id:[0-9]+}/edit", d.Posts.Edit).Methods("GET")
	posts.HandleFunc("/{id:[0-9]+}", d.Posts.Update).Methods("PUT", "PATCH")
	posts.HandleFunc("/{id:[0-9]+}", d.Posts.Destroy).Methods("DELETE")

	return router
}

// Handler wraps the router with the global middleware. Method override runs
// outside the router so the rewritten method takes part in route matching.
func Handler(d Deps) http.Handler {
	var h http.Handler = SetupRoutes(d)
	h = middleware.MethodOverride(h)
	h = middleware.BodyLimit(middleware.MaxBodyBytes)(h)
	h = middleware.Logger(d.Logger)(h)
	h = middleware.Recoverer(d.Logger, d.Views.ServerError)(h)
	return h
}

func noDirListing(next http.Handler, notFound http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			notFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
