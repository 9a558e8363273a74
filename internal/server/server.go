package server

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/paperchat/paperchat/config"
	"github.com/paperchat/paperchat/docstore"
	"github.com/paperchat/paperchat/internal/qa"
)

// Run starts the HTTP API server. The caller-provided addr overrides the
// configured listen address when set.
func Run(cfg *config.Config, addr string) error {
	e, err := New(cfg)
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.General.Listen
		if addr == "" {
			addr = ":8080"
		}
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}

// New assembles the echo application: middleware, error handling, metrics and
// the documents API wired to the configured store.
func New(cfg *config.Config) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	e.HTTPErrorHandler = httpErrorHandler(log.New(log.Writer(), "[HTTP] ", log.LstdFlags))

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	store, err := docstore.NewStore(cfg.Storage)
	if err != nil {
		return nil, err
	}

	qaLogger := log.New(log.Writer(), "[QA] ", log.LstdFlags)
	orch := qa.NewOrchestrator(store, cfg, qaLogger)

	api := e.Group("/api")
	dh := &DocumentsHandler{
		Store:     store,
		Orch:      orch,
		Providers: cfg.Providers,
		Logger:    log.New(log.Writer(), "[DOCS] ", log.LstdFlags),
	}
	dh.Register(api.Group("/documents"))

	return e, nil
}

// httpErrorHandler turns typed pipeline errors into the structured error
// object, preserving the error kind; echo's own errors keep their status.
// Request bodies carry API keys and are never logged.
func httpErrorHandler(logger *log.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		var body errorBody
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			body = errorBody{ErrorKind: "bad_request", Message: fmt.Sprint(he.Message)}
			if code >= 500 {
				body.ErrorKind = "internal_error"
			}
		} else {
			code, body = classify(err)
		}
		req := c.Request()
		logger.Printf("%d %s %s: %s %s", code, req.Method, req.URL.Path, body.ErrorKind, body.Message)
		if !c.Response().Committed {
			_ = c.JSON(code, body)
		}
	}
}
