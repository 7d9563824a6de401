package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/a-h/templ"
)

//go:embed templates/*.html
var templateFS embed.FS

type navItem struct {
	Key   string
	Href  string
	Label string
}

var navigation = []navItem{
	{"index", "/", "Acasă"},
	{"despre", "/despre/", "Despre"},
	{"programe", "/programe/", "Programe"},
	{"ima", "/ima/", "IMA"},
	{"istorii-de-succes", "/istorii-de-succes/", "Istorii de succes"},
	{"parteneri", "/parteneri/", "Parteneri"},
	{"comunicate", "/comunicate/", "Comunicate"},
	{"galerie", "/galerie/", "Galerie"},
	{"contacte", "/contacte/", "Contacte"},
}

// staticPages are the informational pages without dynamic content
var staticPages = map[string]string{
	"planuri":     "Planuri",
	"rapoarte":    "Rapoarte",
	"achizitii":   "Achiziții publice",
	"cariera":     "Carieră",
	"deplasari":   "Deplasări",
	"integritate": "Integritate",
	"structura":   "Structura",
	"echipa":      "Echipa",
	"buget":       "Buget",
}

// view is the data every page template receives
type view struct {
	ActivePage string
	Title      string
	Data       map[string]any
}

// pages holds one template set per page, each combining the layout with the
// page's "content" block
type pages map[string]*template.Template

var pageFiles = []string{
	"index", "despre", "programe", "ima", "contacte", "galerie",
	"stories", "story", "parteneri", "news_list", "news_detail",
	"static", "not_found",
}

func parsePages(funcs template.FuncMap) (pages, error) {
	p := make(pages, len(pageFiles))
	for _, name := range pageFiles {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		p[name] = t.Lookup("layout")
	}
	return p, nil
}

// component wraps a parsed page as a templ component
func (p pages) component(name string, v view) (templ.Component, error) {
	t, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("unknown page %q", name)
	}
	return templ.FromGoHTML(t, v), nil
}

func (s *Server) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"media": s.files.URL,
		"raw": func(html string) template.HTML {
			return template.HTML(html)
		},
		"date": func(t time.Time) string {
			return t.Format("02.01.2006")
		},
		"nav": navHTML,
	}
}

// render writes the named page. Output is buffered so a template error can
// still produce a 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, v view) {
	c, err := s.pages.component(name, v)
	if err != nil {
		s.serverError(w, "Failed to render page", err)
		return
	}

	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		s.serverError(w, "Failed to render page", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
