package dashboard

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/ziadkadry99/netviz/internal/category"
	"github.com/ziadkadry99/netviz/internal/diagrams"
)

//go:embed index.html
var indexHTML string

var indexTmpl = template.Must(template.New("index").Parse(indexHTML))

// indexData is the state the page shows before the websocket delivers its
// first frame.
type indexData struct {
	SVG        template.HTML
	Categories []category.Category
}

// ServeIndex serves the dashboard page with the current network inlined.
func (d *Dashboard) ServeIndex(w http.ResponseWriter, r *http.Request) {
	data := indexData{
		// diagrams.SVG escapes every label it writes.
		SVG:        template.HTML(diagrams.SVG(d.session.Frame())),
		Categories: d.session.Store().Get(),
	}

	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, data); err != nil {
		d.logger.Error("rendering dashboard", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
