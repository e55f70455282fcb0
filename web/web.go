// Package web holds the embedded page templates and static assets.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

// Pages lists every page template; each is parsed together with base.html.
var Pages = []string{"dashboard", "setup", "reports"}

// LoadTemplates parses each page paired with the base layout, keyed by page name.
func LoadTemplates(funcs template.FuncMap) (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template, len(Pages))
	for _, page := range Pages {
		tmpl, err := template.New("").Funcs(funcs).ParseFS(templatesFS,
			"templates/base.html",
			"templates/"+page+".html",
		)
		if err != nil {
			return nil, err
		}
		templates[page] = tmpl
	}
	return templates, nil
}

// Static serves the embedded assets; mount it under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
