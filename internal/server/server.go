// Package server serves the dashboard web UI and its JSON API.
package server

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/iwvelando/safety-dashboard/internal/accidents"
	"github.com/iwvelando/safety-dashboard/internal/dashboard"
	"github.com/iwvelando/safety-dashboard/internal/risk"
	"github.com/iwvelando/safety-dashboard/pkg/output"
	"go.uber.org/zap"
)

//go:embed static/*
var staticFiles embed.FS

//go:embed templates/*.html
var templateFiles embed.FS

// Page names used by the sidebar menu.
const (
	pageAccidents = "acidentes"
	pageRisk      = "riscos"
)

// DatasetSource returns the current snapshot of the accident data at path.
type DatasetSource interface {
	Get(path string) (*accidents.Dataset, error)
}

// Options configures the handler.
type Options struct {
	DataPath string
	TopK     int
	Mode     string
	Version  string
}

type handler struct {
	logger    *zap.Logger
	source    DatasetSource
	opts      Options
	risk      risk.Page
	templates map[string]*template.Template
}

type pageData struct {
	Title     string
	Active    string
	Version   string
	Dashboard *dashboard.Page
	Risk      *risk.Page
	Error     string
}

// NewHandler constructs the HTTP handler that serves the web UI and the
// dashboard API.
func NewHandler(logger *zap.Logger, source DatasetSource, opts Options) (http.Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if source == nil {
		return nil, errors.New("dataset source is required")
	}

	opts.Version = strings.TrimSpace(opts.Version)
	if opts.Version == "" {
		opts.Version = "dev"
	}

	riskPage, err := risk.Load()
	if err != nil {
		return nil, err
	}

	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare embedded static files: %w", err)
	}

	h := &handler{
		logger:    logger,
		source:    source,
		opts:      opts,
		risk:      riskPage,
		templates: templates,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(h.logRequests)
	r.Use(h.recoverPanics)

	r.Get("/", h.handleAccidents)
	r.Get("/"+pageAccidents, h.handleAccidents)
	r.Get("/"+pageRisk, h.handleRisk)

	r.Get("/api/dashboard", h.handleDashboard)
	r.Get("/api/records.csv", h.handleRecordsCSV)
	r.Get("/api/version", h.handleVersion)
	r.Get("/healthz", h.handleHealth)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(sub))))

	return r, nil
}

func parseTemplates() (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template)
	for _, name := range []string{pageAccidents, pageRisk, "erro"} {
		t, err := template.New(name).ParseFS(templateFiles, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		templates[name] = t
	}
	return templates, nil
}

// loadPage builds the accident view model from the current snapshot.
func (h *handler) loadPage() (*accidents.Dataset, dashboard.Page, error) {
	ds, err := h.source.Get(h.opts.DataPath)
	if err != nil {
		return nil, dashboard.Page{}, err
	}
	page := dashboard.Build(ds, dashboard.Options{TopK: h.opts.TopK, Mode: h.opts.Mode})
	page.Source = filepath.Base(ds.Source)
	return ds, page, nil
}

// sourceError is the single user-visible message shown when the data file
// cannot be read.
func (h *handler) sourceError(err error) string {
	return fmt.Sprintf("Erro ao ler o arquivo %s: %v", filepath.Base(h.opts.DataPath), err)
}

func (h *handler) handleAccidents(w http.ResponseWriter, r *http.Request) {
	_, page, err := h.loadPage()
	if err != nil {
		msg := h.sourceError(err)
		h.logger.Error("failed to load accident data",
			zap.String("op", "server.handleAccidents"),
			zap.String("path", h.opts.DataPath),
			zap.Error(err),
		)
		h.render(w, http.StatusInternalServerError, "erro", pageData{
			Title:  page.Title,
			Active: pageAccidents,
			Error:  msg,
		})
		return
	}

	h.render(w, http.StatusOK, pageAccidents, pageData{
		Title:     page.Title,
		Active:    pageAccidents,
		Dashboard: &page,
	})
}

func (h *handler) handleRisk(w http.ResponseWriter, r *http.Request) {
	page := h.risk
	h.render(w, http.StatusOK, pageRisk, pageData{
		Title:  page.Title,
		Active: pageRisk,
		Risk:   &page,
	})
}

func (h *handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	_, page, err := h.loadPage()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, h.sourceError(err), "server.handleDashboard")
		return
	}
	h.writeJSON(w, http.StatusOK, page)
}

func (h *handler) handleRecordsCSV(w http.ResponseWriter, r *http.Request) {
	ds, _, err := h.loadPage()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, h.sourceError(err), "server.handleRecordsCSV")
		return
	}

	var buf bytes.Buffer
	if err := output.WriteCSV(&buf, ds); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), "server.handleRecordsCSV")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="acidentes_normalizados.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"version": h.opts.Version})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) render(w http.ResponseWriter, status int, name string, data pageData) {
	data.Version = h.opts.Version
	if data.Title == "" {
		data.Title = "Segurança do Trabalho"
	}

	var buf bytes.Buffer
	if err := h.templates[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.Error("failed to render template",
			zap.String("op", "server.render"),
			zap.String("template", name),
			zap.Error(err),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("dashboard request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			h.logger.Info("request served",
				zap.String("op", "server.logRequests"),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestID", middleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

func (h *handler) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.logger.Error("panic while serving request",
					zap.String("op", "server.recoverPanics"),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()),
				)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
