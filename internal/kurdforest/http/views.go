package http

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/aussiebroadwan/kurdforest/internal/kurdforest/domain"
	"github.com/aussiebroadwan/kurdforest/pkg/httpx"
	"github.com/aussiebroadwan/kurdforest/pkg/slogx"
)

//go:embed views/*.html
var viewsFS embed.FS

// Views renders the embedded HTML pages.
type Views struct {
	Site string
	tmpl *template.Template
}

func NewViews(site string) *Views {
	return &Views{
		Site: site,
		tmpl: template.Must(template.ParseFS(viewsFS, "views/*.html")),
	}
}

type viewData struct {
	Title string
	Site  string
	User  *domain.Session
	Error string
	Token string
}

// Render executes page into a buffer so a template failure can still be
// reported as a 500.
func (v *Views) Render(w http.ResponseWriter, r *http.Request, status int, page string, data viewData) {
	data.Site = v.Site
	data.User = SessionFromContext(r.Context())

	var buf bytes.Buffer
	if err := v.tmpl.ExecuteTemplate(&buf, page+".html", data); err != nil {
		slogx.FromContext(r.Context()).Error("failed to render view", "view", page, "error", err)
		http.Error(w, serverErrorText, http.StatusInternalServerError)
		return
	}

	httpx.NoCache(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
