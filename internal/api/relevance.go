package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/st3v3nmw/focusguard/internal/guard"
	"github.com/st3v3nmw/focusguard/internal/i18n"
	"github.com/st3v3nmw/focusguard/internal/relevance"
	"github.com/st3v3nmw/focusguard/internal/similarity"
	"github.com/st3v3nmw/focusguard/internal/sites"
	"github.com/st3v3nmw/focusguard/internal/types"
)

type relevanceRequest struct {
	PageContext relevance.PageContext `json:"pageContext"`
	Topics      []string              `json:"topics"`
}

// checkRelevance scores a page against the topics in the request.
func (s *APIService) checkRelevance(c echo.Context) error {
	var req relevanceRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := s.Scorer.Score(c.Request().Context(), req.PageContext, req.Topics)
	switch {
	case errors.Is(err, similarity.ErrNotReady):
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
	case err != nil:
		slog.Warn("Relevance check failed", "url", req.PageContext.URL, "error", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}

type siteCheckRequest struct {
	URL string `json:"url" validate:"required"`
}

func (s *APIService) checkSite(c echo.Context) error {
	var req siteCheckRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	settings, err := s.Store.SiteSettings(c.Request().Context())
	if err != nil {
		return internalError(err)
	}

	return c.JSON(http.StatusOK, sites.NewEngine(settings).Classify(req.URL))
}

// tabCheckRequest carries either the page HTML or the already extracted fields.
type tabCheckRequest struct {
	URL             string `json:"url" validate:"required,url"`
	HTML            string `json:"html"`
	Title           string `json:"title"`
	Genre           string `json:"genre"`
	Description     string `json:"description"`
	Heading         string `json:"heading"`
	MetaDescription string `json:"metaDescription"`
}

func (r tabCheckRequest) page() (relevance.PageContext, error) {
	if r.HTML != "" {
		return relevance.FromHTML(r.URL, strings.NewReader(r.HTML))
	}

	return relevance.PageContext{
		URL:             r.URL,
		Title:           r.Title,
		Genre:           r.Genre,
		Description:     r.Description,
		Heading:         r.Heading,
		MetaDescription: r.MetaDescription,
	}, nil
}

type tabCheckResponse struct {
	guard.Decision
	Message string `json:"message,omitempty"`
}

func (s *APIService) checkTab(c echo.Context) error {
	tab, err := tabParam(c)
	if err != nil {
		return err
	}

	var req tabCheckRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	page, err := req.page()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	decision, err := s.Checker.Check(ctx, tab, page)
	if err != nil {
		return internalError(err)
	}

	resp := tabCheckResponse{Decision: decision}
	if decision.Action != types.ActionAllow {
		lang, err := s.Store.Language(ctx)
		if err != nil {
			return internalError(err)
		}

		messages := i18n.For(lang)
		switch decision.Action {
		case types.ActionBlock:
			resp.Message = messages.Blocked(sites.ExtractDomain(req.URL))
		case types.ActionWarn:
			resp.Message = messages.Score(*decision.Score)
		}
	}

	return c.JSON(http.StatusOK, resp)
}

type scoreRequest struct {
	Score    float64 `json:"score"`
	RawScore float64 `json:"rawScore"`
}

type scoreResponse struct {
	guard.ScoreSnapshot
	Level types.ScoreLevel `json:"level"`
}

func (s *APIService) reportScore(c echo.Context) error {
	tab, err := tabParam(c)
	if err != nil {
		return err
	}

	var req scoreRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	snapshot := s.Scores.Report(tab, req.Score, req.RawScore, s.Clock.Now())
	return c.JSON(http.StatusOK, scoreResponse{ScoreSnapshot: snapshot, Level: relevance.Level(snapshot.Score)})
}

func (s *APIService) getScore(c echo.Context) error {
	tab, err := tabParam(c)
	if err != nil {
		return err
	}

	snapshot, ok := s.Scores.Current(tab)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no score for this tab")
	}

	return c.JSON(http.StatusOK, scoreResponse{ScoreSnapshot: snapshot, Level: relevance.Level(snapshot.Score)})
}
