package handlers

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/orggate/orggate/internal/config"
)

//go:embed templates/*
var templatesFS embed.FS

// HomeHandler serves the landing page. The page's script decides what
// to show purely from the current URL (the error marker) and the /user
// endpoint; the server renders no per-request state into it.
type HomeHandler struct {
	cfg      config.Config
	logger   *slog.Logger
	template *template.Template
}

func NewHomeHandler(cfg config.Config, logger *slog.Logger) (*HomeHandler, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/home.html")
	if err != nil {
		return nil, err
	}

	return &HomeHandler{
		cfg:      cfg,
		logger:   logger,
		template: tmpl,
	}, nil
}

type homePageData struct {
	PageTitle     string
	ProviderName  string
	DenialMessage string
}

func (h *HomeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := homePageData{
		PageTitle:     h.cfg.UI.Title,
		ProviderName:  h.cfg.Provider.Name,
		DenialMessage: h.cfg.UI.DenialMessage,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.template.Execute(w, data); err != nil {
		h.logger.Error("failed to render template", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
