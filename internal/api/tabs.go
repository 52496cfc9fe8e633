package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/st3v3nmw/focusguard/internal/tracker"
)

type tabEventRequest struct {
	WindowID int    `json:"windowId"`
	URL      string `json:"url"`
}

func (s *APIService) tabActivated(c echo.Context) error {
	tab, err := tabParam(c)
	if err != nil {
		return err
	}

	var req tabEventRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	s.Tracker.Activated(c.Request().Context(), tab, tracker.WindowID(req.WindowID), req.URL)
	return c.NoContent(http.StatusNoContent)
}

func (s *APIService) tabNavigated(c echo.Context) error {
	tab, err := tabParam(c)
	if err != nil {
		return err
	}

	var req tabEventRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.URL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "url is required")
	}

	s.Tracker.Navigated(c.Request().Context(), tab, tracker.WindowID(req.WindowID), req.URL)
	return c.NoContent(http.StatusNoContent)
}

func (s *APIService) tabRemoved(c echo.Context) error {
	tab, err := tabParam(c)
	if err != nil {
		return err
	}

	s.Tracker.Removed(c.Request().Context(), tab)
	return c.NoContent(http.StatusNoContent)
}

type focusRequest struct {
	// WindowID is -1 when the browser lost focus.
	WindowID int `json:"windowId" validate:"min=-1"`
}

func (s *APIService) windowFocused(c echo.Context) error {
	var req focusRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	s.Tracker.FocusChanged(c.Request().Context(), tracker.WindowID(req.WindowID))
	return c.NoContent(http.StatusNoContent)
}

type patienceRequest struct {
	Domain string `json:"domain" validate:"required"`
}

func (s *APIService) recordPatience(c echo.Context) error {
	var req patienceRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	recorded, err := s.Recorder.RecordPatience(c.Request().Context(), req.Domain)
	if err != nil {
		return internalError(err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"recorded": recorded})
}
