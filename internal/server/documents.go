package server

import (
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/paperchat/paperchat/config"
	"github.com/paperchat/paperchat/docstore"
	"github.com/paperchat/paperchat/internal/extract"
	"github.com/paperchat/paperchat/internal/qa"
	"github.com/paperchat/paperchat/models"
)

// DocumentsHandler serves document upload, management and question answering.
type DocumentsHandler struct {
	Store     docstore.Store
	Orch      *qa.Orchestrator
	Providers config.ProvidersConfig
	Logger    *log.Logger
}

func (h *DocumentsHandler) Register(g *echo.Group) {
	g.POST("", h.upload)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/ask", h.ask)
}

// documentSummary is the list/detail shape; page text is only returned on
// the detail endpoint.
type documentSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	PageCount  int       `json:"page_count"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func summarize(doc models.Document) documentSummary {
	return documentSummary{ID: doc.ID, Name: doc.Name, PageCount: len(doc.Pages), UploadedAt: doc.UploadedAt}
}

// upload accepts either a multipart PDF (field "file") or a JSON body with
// pre-extracted page texts.
func (h *DocumentsHandler) upload(c echo.Context) error {
	doc := models.Document{ID: uuid.NewString(), UploadedAt: time.Now().UTC()}

	if file, err := c.FormFile("file"); err == nil {
		src, err := file.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "cannot read uploaded file: "+err.Error())
		}
		defer src.Close()
		content, err := io.ReadAll(src)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "cannot read uploaded file: "+err.Error())
		}
		pages, err := extract.Pages(content)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "cannot extract PDF text: "+err.Error())
		}
		doc.Name = file.Filename
		doc.Pages = pages
	} else {
		var req struct {
			Name  string   `json:"name"`
			Pages []string `json:"pages"`
		}
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "expected a PDF upload or a JSON body with pages")
		}
		if len(req.Pages) == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "pages must not be empty")
		}
		doc.Name = req.Name
		for i, text := range req.Pages {
			doc.Pages = append(doc.Pages, models.Page{Number: i + 1, Text: text})
		}
	}

	if strings.TrimSpace(doc.Name) == "" {
		doc.Name = "untitled"
	}

	if err := h.Store.Put(c.Request().Context(), doc); err != nil {
		return err
	}
	documentsUploaded.Inc()
	h.Logger.Printf("stored document %s (%q, %d pages)", doc.ID, doc.Name, len(doc.Pages))
	return c.JSON(http.StatusCreated, summarize(doc))
}

func (h *DocumentsHandler) list(c echo.Context) error {
	docs, err := h.Store.List(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]documentSummary, 0, len(docs))
	for _, doc := range docs {
		out = append(out, summarize(doc))
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DocumentsHandler) get(c echo.Context) error {
	doc, err := h.Store.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, doc)
}

func (h *DocumentsHandler) delete(c echo.Context) error {
	if err := h.Store.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type askRequest struct {
	Question string                `json:"question"`
	Provider models.ProviderConfig `json:"provider"`
	TopK     int                   `json:"top_k,omitempty"`
}

// ask runs the retrieval pipeline for one question. Request-level credentials
// win; configured deployment keys only fill the gaps.
func (h *DocumentsHandler) ask(c echo.Context) error {
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body: "+err.Error())
	}
	if strings.TrimSpace(req.Question) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question required")
	}
	if req.Provider.Kind == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "provider.kind required")
	}

	pc := h.withDefaultCredentials(req.Provider)

	start := time.Now()
	result, err := h.Orch.Ask(c.Request().Context(), c.Param("id"), req.Question, pc, req.TopK)
	questionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		_, body := classify(err)
		questionsTotal.WithLabelValues(body.ErrorKind).Inc()
		return err
	}
	questionsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, result)
}

func (h *DocumentsHandler) withDefaultCredentials(pc models.ProviderConfig) models.ProviderConfig {
	if pc.APIKey == "" {
		switch pc.Kind {
		case models.ProviderOpenAI:
			pc.APIKey = h.Providers.OpenAI.APIKey
		case models.ProviderAnthropic:
			pc.APIKey = h.Providers.Anthropic.APIKey
		}
	}
	if pc.Kind == models.ProviderAnthropic && pc.EmbeddingAPIKey == "" {
		pc.EmbeddingAPIKey = h.Providers.Voyage.APIKey
	}
	return pc
}
