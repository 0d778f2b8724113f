package cmd

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
	"gonum.org/v1/plot"

	"github.com/zalepa/delinquance/chart"
	"github.com/zalepa/delinquance/dashboard"
	"github.com/zalepa/delinquance/dataset"
	"github.com/zalepa/delinquance/pipeline"
	"github.com/zalepa/delinquance/session"
)

//go:embed web.html
var htmlContent embed.FS

const sessionCookie = "delinquance_session"

// server is the web dashboard. Every request reloads the session selection,
// reruns the pipeline over the cached tables and renders the result.
type server struct {
	load  func() (*dashboard.Dashboard, error)
	store *session.Store
	tmpl  *template.Template
	log   *zap.Logger
}

func newServer(load func() (*dashboard.Dashboard, error), store *session.Store, log *zap.Logger) (*server, error) {
	tmpl, err := template.New("web.html").Funcs(template.FuncMap{
		"count": chart.FormatCount,
		"rate":  chart.FormatRate,
		"year":  dataset.YearLabel,
	}).ParseFS(htmlContent, "web.html")
	if err != nil {
		return nil, err
	}
	return &server{load: load, store: store, tmpl: tmpl, log: log}, nil
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("POST /select", s.handleSelect)
	mux.HandleFunc("POST /api/selection", s.handleSelection)
	mux.HandleFunc("GET /api/metadata", s.handleMetadata)
	mux.HandleFunc("GET /api/temporal", s.handleTemporal)
	mux.HandleFunc("GET /api/territorial", s.handleTerritorial)
	mux.HandleFunc("GET /api/choropleth", s.handleChoropleth)
	mux.HandleFunc("GET /chart/{name}", s.handleChart)
	return s.logRequests(mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

// session returns the caller's selection, starting a session when the
// cookie is missing or stale.
func (s *server) session(w http.ResponseWriter, r *http.Request) (string, *session.Selection) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if sel, ok := s.store.Update(c.Value, nil); ok {
			return c.Value, sel
		}
	}
	id, sel := s.store.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id, sel.Clone()
}

func (s *server) update(w http.ResponseWriter, r *http.Request, fn func(*session.Selection)) *session.Selection {
	id, sel := s.session(w, r)
	if updated, ok := s.store.Update(id, fn); ok {
		return updated
	}
	fn(sel)
	return sel
}

// dashboard returns the loaded tables or writes a 503.
func (s *server) dashboard(w http.ResponseWriter) (*dashboard.Dashboard, bool) {
	d, err := s.load()
	if err != nil {
		s.log.Error("data unavailable", zap.Error(err))
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return nil, false
	}
	return d, true
}

type pageData struct {
	Mode        dashboard.Mode
	Modes       []dashboard.Mode
	Selection   *session.Selection
	Home        dashboard.HomeView
	Temporal    dashboard.TemporalView
	Territorial dashboard.TerritorialView
	Stamp       int64
}

func (pd pageData) Selected(class string) bool {
	return pd.Selection.ClassSet()[class]
}

// ScatterYear reports whether year is part of the scatter plot.
func (pd pageData) ScatterYear(year int) bool {
	for _, y := range pd.Selection.ScatterYears() {
		if y == year {
			return true
		}
	}
	return false
}

func (s *server) handlePage(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dashboard(w)
	if !ok {
		return
	}
	_, sel := s.session(w, r)

	pd := pageData{
		Mode:      dashboard.ParseMode(r.URL.Query().Get("mode")),
		Modes:     dashboard.Modes,
		Selection: sel,
		Stamp:     time.Now().UnixNano(),
	}
	switch pd.Mode {
	case dashboard.ModeTemporal:
		pd.Temporal = d.Temporal(sel)
	case dashboard.ModeTerritorial:
		pd.Territorial = d.Territorial(sel)
	default:
		pd.Home = d.Home()
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, pd); err != nil {
		s.log.Error("render page", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// handleSelect takes the HTML forms: class and year multi-selects on the
// temporal page, a single year on the map page. It redirects back to the
// page it came from.
func (s *server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	year := 0
	if v := r.PostForm.Get("year"); v != "" {
		y, err := dataset.NormalizeYear(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		year = y
	}
	years := make([]int, 0, len(r.PostForm["years"]))
	for _, v := range r.PostForm["years"] {
		y, err := dataset.NormalizeYear(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		years = append(years, y)
	}
	s.update(w, r, func(sel *session.Selection) {
		if _, ok := r.PostForm["classes_present"]; ok {
			sel.SelectClasses(r.PostForm["classes"])
		}
		if _, ok := r.PostForm["years_present"]; ok {
			sel.SelectYears(years)
		}
		if _, ok := r.PostForm["year"]; ok {
			sel.SelectYear(year)
		}
		if v, ok := r.PostForm["department"]; ok && len(v) > 0 {
			sel.SelectDepartment(v[0])
		}
	})
	mode := dashboard.ParseMode(r.PostForm.Get("mode"))
	http.Redirect(w, r, "/?mode="+string(mode), http.StatusSeeOther)
}

// selectionRequest is a partial update: absent fields keep their value.
type selectionRequest struct {
	Department *string   `json:"department"`
	Year       *int      `json:"year"`
	Years      *[]int    `json:"years"`
	Classes    *[]string `json:"classes"`
}

func (s *server) handleSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		http.Error(w, "invalid selection: "+err.Error(), http.StatusBadRequest)
		return
	}
	sel := s.update(w, r, func(sel *session.Selection) {
		if req.Department != nil {
			sel.SelectDepartment(*req.Department)
		}
		if req.Year != nil {
			sel.SelectYear(*req.Year)
		}
		if req.Years != nil {
			sel.SelectYears(*req.Years)
		}
		if req.Classes != nil {
			sel.SelectClasses(*req.Classes)
		}
	})
	s.log.Debug("selection", zap.String("department", sel.Department), zap.Int("year", sel.Year), zap.Ints("years", sel.Years), zap.Strings("classes", sel.Classes))
	writeJSON(w, sel)
}

type metadata struct {
	Modes   []labelValue `json:"modes"`
	Classes []string     `json:"classes"`
	Years   []int        `json:"years"`
	Rows    int          `json:"rows"`
}

type labelValue struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func (s *server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dashboard(w)
	if !ok {
		return
	}
	home := d.Home()
	meta := metadata{Classes: home.Classes, Years: home.Years, Rows: home.Rows}
	for _, m := range dashboard.Modes {
		meta.Modes = append(meta.Modes, labelValue{Value: string(m), Label: m.Title()})
	}
	writeJSON(w, meta)
}

type seriesData struct {
	Name   string     `json:"name"`
	Values []*float64 `json:"values"`
}

type temporalResponse struct {
	dashboard.TemporalView
	Series      []seriesData `json:"series"`
	Correlation *float64     `json:"correlation"`
}

func (s *server) handleTemporal(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dashboard(w)
	if !ok {
		return
	}
	_, sel := s.session(w, r)
	v := d.Temporal(sel)

	resp := temporalResponse{TemporalView: v, Series: []seriesData{}, Correlation: dataset.NullableFloat(v.R)}
	for _, class := range v.Selected.Classes {
		vals, ok := v.Series[class]
		if !ok {
			continue
		}
		sd := seriesData{Name: class, Values: make([]*float64, len(vals))}
		for i, x := range vals {
			sd.Values[i] = dataset.NullableFloat(x)
		}
		resp.Series = append(resp.Series, sd)
	}
	writeJSON(w, resp)
}

func (s *server) handleTerritorial(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dashboard(w)
	if !ok {
		return
	}
	_, sel := s.session(w, r)
	writeJSON(w, d.Territorial(sel))
}

// handleChoropleth serves the joined departments as GeoJSON for the
// interactive map.
func (s *server) handleChoropleth(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dashboard(w)
	if !ok {
		return
	}
	_, sel := s.session(w, r)
	fc := choropleth(d.Territorial(sel).Regions)
	data, err := json.Marshal(fc)
	if err != nil {
		s.log.Error("encode choropleth", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(data)
}

func choropleth(regions []pipeline.Region) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(regions))}
	for _, r := range regions {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       r.Code,
			Geometry: r.Geometry,
			Properties: map[string]interface{}{
				"code":    r.Code,
				"nom":     r.Name,
				"faits":   r.Facts,
				"hasData": r.HasData,
			},
		})
	}
	return fc
}

func (s *server) handleChart(w http.ResponseWriter, r *http.Request) {
	d, ok := s.dashboard(w)
	if !ok {
		return
	}
	_, sel := s.session(w, r)

	p, err := buildChart(d, sel, r.PathValue("name"))
	switch {
	case errors.Is(err, errUnknownChart):
		http.NotFound(w, r)
		return
	case errors.Is(err, chart.ErrNoData):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		s.log.Error("build chart", zap.String("chart", r.PathValue("name")), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := chart.Render(&buf, p, "png", chart.Width, chart.Height); err != nil {
		s.log.Error("render chart", zap.String("chart", r.PathValue("name")), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

var errUnknownChart = errors.New("unknown chart")

// buildChart draws one named chart of the dashboard for sel.
func buildChart(d *dashboard.Dashboard, sel *session.Selection, name string) (*plot.Plot, error) {
	switch name {
	case "line", "bars", "scatter":
		v := d.Temporal(sel)
		switch name {
		case "line":
			return chart.Line(v.SeriesYears, v.Series)
		case "bars":
			return chart.StackedBars(v.SeriesYears, v.Series)
		}
		return chart.Scatter(v.Scatter)
	case "pie", "ranking":
		v := d.Territorial(sel)
		if !sel.HasDepartment() {
			return nil, chart.ErrNoData
		}
		if name == "pie" {
			return chart.Pie(v.DepartmentLabel(), v.Year, v.Breakdown)
		}
		return chart.Ranking(v.DepartmentLabel(), v.Ranking)
	case "density":
		return chart.DensityMap(d.DensityRegions())
	}
	return nil, errUnknownChart
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
