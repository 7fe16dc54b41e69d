// Package views renders the embedded HTML pages and carries flash messages
// across redirects in a signed session cookie.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
)

//go:embed templates
var templateFS embed.FS

const (
	sessionName = "postboard_session"
	flashKey    = "success"
)

// Page names accepted by Render.
const (
	PostsIndex   = "posts/index"
	PostsCreate  = "posts/create"
	PostsShow    = "posts/show"
	PostsEdit    = "posts/edit"
	NotFoundPage = "errors/404"
	ErrorPage    = "errors/500"
)

var pageNames = []string{PostsIndex, PostsCreate, PostsShow, PostsEdit, NotFoundPage, ErrorPage}

// Routes maps route names to paths for Redirect.
var Routes = map[string]string{
	"posts.index":  "/posts",
	"posts.create": "/posts/create",
}

// Options configures a Renderer.
type Options struct {
	SessionSecret string
	CookieSecure  bool
	// ImageURL turns a stored image name into a public URL.
	ImageURL func(name string) string
}

// Renderer executes page templates and issues redirects with flash messages.
type Renderer struct {
	pages    map[string]*template.Template
	sessions sessions.Store
}

// Data is the context passed to a page template.
type Data map[string]any

func New(opts Options) (*Renderer, error) {
	if opts.SessionSecret == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	imageURL := opts.ImageURL
	if imageURL == nil {
		imageURL = func(name string) string { return "/storage/posts/" + name }
	}
	funcs := template.FuncMap{
		"imageURL": imageURL,
		"route":    routePath,
		"excerpt":  excerpt,
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New("layout").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parsing page %s: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Renderer{pages: pages, sessions: newSessionStore(opts)}, nil
}

func newSessionStore(opts Options) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(opts.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		MaxAge:   60 * 60 * 12,
		SameSite: http.SameSiteLaxMode,
		Secure:   opts.CookieSecure,
	}
	return store
}

// Render writes page name with status. Any pending flash message is consumed
// and exposed to the template as .Flash.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, data Data) error {
	tmpl, ok := rd.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %s", name)
	}
	if data == nil {
		data = Data{}
	}
	data["Flash"] = rd.popFlash(w, r)

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Redirect sends a 302 to the named route, carrying flash to the next page.
func (rd *Renderer) Redirect(w http.ResponseWriter, r *http.Request, route, flash string) error {
	target := routePath(route)
	if flash != "" {
		sess, _ := rd.sessions.Get(r, sessionName)
		sess.AddFlash(flash, flashKey)
		if err := sess.Save(r, w); err != nil {
			return fmt.Errorf("saving flash: %w", err)
		}
	}
	http.Redirect(w, r, target, http.StatusFound)
	return nil
}

// NotFound renders the 404 page.
func (rd *Renderer) NotFound(w http.ResponseWriter, r *http.Request) {
	if err := rd.Render(w, r, http.StatusNotFound, NotFoundPage, nil); err != nil {
		http.NotFound(w, r)
	}
}

// ServerError renders the generic failure page.
func (rd *Renderer) ServerError(w http.ResponseWriter, r *http.Request) {
	if err := rd.Render(w, r, http.StatusInternalServerError, ErrorPage, nil); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (rd *Renderer) popFlash(w http.ResponseWriter, r *http.Request) string {
	// A cookie that fails to decode yields a fresh session, which is fine here.
	sess, _ := rd.sessions.Get(r, sessionName)
	flashes := sess.Flashes(flashKey)
	if len(flashes) == 0 {
		return ""
	}
	_ = sess.Save(r, w)
	msg, _ := flashes[len(flashes)-1].(string)
	return msg
}

func routePath(name string) string {
	if p, ok := Routes[name]; ok {
		return p
	}
	return "/"
}

// excerpt shortens s to at most n runes, appending an ellipsis when cut.
func excerpt(n int, s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "..."
}
