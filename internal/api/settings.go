package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/st3v3nmw/focusguard/internal/guard"
	"github.com/st3v3nmw/focusguard/internal/i18n"
	"github.com/st3v3nmw/focusguard/internal/sites"
	"github.com/st3v3nmw/focusguard/internal/stats"
	"github.com/st3v3nmw/focusguard/internal/topics"
)

// Extension toggle

type extensionRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

func (s *APIService) getExtension(c echo.Context) error {
	enabled, err := s.Store.ExtensionEnabled(c.Request().Context())
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"enabled": enabled})
}

func (s *APIService) setExtension(c echo.Context) error {
	var req extensionRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := s.Store.SetExtensionEnabled(c.Request().Context(), *req.Enabled); err != nil {
		return internalError(err)
	}

	s.Broadcaster.Broadcast(guard.Event{Type: guard.EventExtensionToggled, Enabled: *req.Enabled})
	return c.JSON(http.StatusOK, map[string]bool{"enabled": *req.Enabled})
}

// Language

type languageRequest struct {
	Language string `json:"language" validate:"required"`
}

type languageResponse struct {
	Language string        `json:"language"`
	Messages i18n.Messages `json:"messages"`
}

func (s *APIService) getLanguage(c echo.Context) error {
	lang, err := s.Store.Language(c.Request().Context())
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, languageResponse{Language: lang, Messages: i18n.For(lang)})
}

func (s *APIService) setLanguage(c echo.Context) error {
	var req languageRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	lang := i18n.Match(req.Language)
	if err := s.Store.SetLanguage(c.Request().Context(), lang); err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, languageResponse{Language: lang, Messages: i18n.For(lang)})
}

// Topics

type topicRequest struct {
	Text string `json:"text" validate:"required"`
}

func topicParam(c echo.Context) string {
	text, err := url.PathUnescape(c.Param("text"))
	if err != nil {
		return c.Param("text")
	}
	return text
}

func (s *APIService) getTopics(c echo.Context) error {
	list, err := s.Store.Topics(c.Request().Context())
	if err != nil {
		return internalError(err)
	}
	if list == nil {
		list = []topics.Topic{}
	}
	return c.JSON(http.StatusOK, list)
}

func (s *APIService) addTopic(c echo.Context) error {
	var req topicRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "topic must not be blank")
	}

	var added bool
	list, err := s.Store.UpdateTopics(c.Request().Context(), func(list []topics.Topic) ([]topics.Topic, bool) {
		list, added = topics.Add(list, text)
		return list, added
	})
	if err != nil {
		return internalError(err)
	}
	if !added {
		return echo.NewHTTPError(http.StatusConflict, "topic already exists")
	}

	return c.JSON(http.StatusCreated, list)
}

func (s *APIService) removeTopic(c echo.Context) error {
	text := topicParam(c)

	var removed bool
	list, err := s.Store.UpdateTopics(c.Request().Context(), func(list []topics.Topic) ([]topics.Topic, bool) {
		list, removed = topics.Remove(list, text)
		return list, removed
	})
	if err != nil {
		return internalError(err)
	}
	if !removed {
		return echo.NewHTTPError(http.StatusNotFound, "topic not found")
	}

	return c.JSON(http.StatusOK, list)
}

func (s *APIService) toggleTopic(c echo.Context) error {
	text := topicParam(c)

	var found bool
	list, err := s.Store.UpdateTopics(c.Request().Context(), func(list []topics.Topic) ([]topics.Topic, bool) {
		_, found = topics.Toggle(list, text)
		return list, found
	})
	if err != nil {
		return internalError(err)
	}
	if !found {
		return echo.NewHTTPError(http.StatusNotFound, "topic not found")
	}

	return c.JSON(http.StatusOK, list)
}

// Site settings

type domainRequest struct {
	Domain string `json:"domain" validate:"required"`
}

type patternRequest struct {
	Domain      string `json:"domain" validate:"required"`
	PathPattern string `json:"pathPattern" validate:"required,startswith=/"`
}

func (s *APIService) getSites(c echo.Context) error {
	settings, err := s.Store.SiteSettings(c.Request().Context())
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, settings)
}

func (s *APIService) updateSites(c echo.Context, fn func(*sites.Settings) bool) error {
	settings, err := s.Store.UpdateSiteSettings(c.Request().Context(), fn)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, settings)
}

func (s *APIService) domainUpdate(c echo.Context, fn func(*sites.Settings, string) bool) error {
	var req domainRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	return s.updateSites(c, func(settings *sites.Settings) bool {
		return fn(settings, req.Domain)
	})
}

func (s *APIService) addAllowed(c echo.Context) error {
	return s.domainUpdate(c, (*sites.Settings).AddAllowed)
}

func (s *APIService) removeAllowed(c echo.Context) error {
	return s.domainUpdate(c, (*sites.Settings).RemoveAllowed)
}

func (s *APIService) addBlocked(c echo.Context) error {
	return s.domainUpdate(c, (*sites.Settings).AddBlocked)
}

func (s *APIService) removeBlocked(c echo.Context) error {
	return s.domainUpdate(c, (*sites.Settings).RemoveBlocked)
}

func (s *APIService) patternUpdate(c echo.Context, fn func(*sites.Settings, string, string) bool) error {
	var req patternRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	return s.updateSites(c, func(settings *sites.Settings) bool {
		return fn(settings, req.Domain, req.PathPattern)
	})
}

func (s *APIService) addPattern(c echo.Context) error {
	return s.patternUpdate(c, (*sites.Settings).AddPattern)
}

func (s *APIService) removePattern(c echo.Context) error {
	return s.patternUpdate(c, (*sites.Settings).RemovePattern)
}

// Recording settings

func (s *APIService) getRecording(c echo.Context) error {
	settings, err := s.Store.RecordingSettings(c.Request().Context())
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, settings)
}

// setRecording applies the fields present in the body over the stored settings.
func (s *APIService) setRecording(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := s.Store.RecordingSettings(ctx)
	if err != nil {
		return internalError(err)
	}
	if err := bind(c, &req); err != nil {
		return err
	}

	for _, tz := range []string{req.TimezoneRegion, req.TimezoneManual} {
		if tz == "" {
			continue
		}
		if _, err := stats.ParseTimezone(tz, s.Location); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	saved, err := s.Store.SetRecordingSettings(ctx, req)
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, saved)
}
