package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/st3v3nmw/focusguard/internal/i18n"
	"github.com/st3v3nmw/focusguard/internal/stats"
	"github.com/st3v3nmw/focusguard/internal/types"
)

const maxImportSize = 64 << 20

func boolParam(c echo.Context, name string, fallback bool) (bool, error) {
	v := c.QueryParam(name)
	if v == "" {
		return fallback, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s: %s", name, v))
	}
	return b, nil
}

func attachment(c echo.Context, name string) {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
}

func (s *APIService) exportData(c echo.Context) error {
	opts := stats.DefaultExportOptions()
	opts.StartDate = c.QueryParam("start")
	opts.EndDate = c.QueryParam("end")

	var err error
	if opts.IncludePatience, err = boolParam(c, "patience", true); err != nil {
		return err
	}
	if opts.IncludeBrowsing, err = boolParam(c, "browsing", true); err != nil {
		return err
	}
	if opts.IncludeSettings, err = boolParam(c, "settings", true); err != nil {
		return err
	}

	doc, err := s.Recorder.Export(c.Request().Context(), opts)
	if err != nil {
		return internalError(err)
	}

	attachment(c, fmt.Sprintf("focusguard-export-%s.json", s.Clock.Now().Format("2006-01-02")))
	return c.JSON(http.StatusOK, doc)
}

func (s *APIService) importData(c echo.Context) error {
	mode := types.ImportMode(c.QueryParam("mode"))

	data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxImportSize))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	doc, err := stats.ParseExport(data)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := s.Recorder.Import(c.Request().Context(), doc, mode)
	switch {
	case errors.Is(err, stats.ErrInvalidImport):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		return internalError(err)
	}

	return c.JSON(http.StatusOK, result)
}

type csvWriter func(ctx context.Context, w io.Writer, start, end string, header []string) error

func (s *APIService) exportCSV(c echo.Context, name string, write csvWriter, header func(i18n.Messages) []string) error {
	ctx := c.Request().Context()

	lang, err := s.Store.Language(ctx)
	if err != nil {
		return internalError(err)
	}

	var buf bytes.Buffer
	if err := write(ctx, &buf, c.QueryParam("start"), c.QueryParam("end"), header(i18n.For(lang))); err != nil {
		return internalError(err)
	}

	attachment(c, fmt.Sprintf("%s-%s.csv", name, s.Clock.Now().Format("2006-01-02")))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (s *APIService) exportBrowsingCSV(c echo.Context) error {
	return s.exportCSV(c, "browsing-time", s.Recorder.BrowsingCSV, func(m i18n.Messages) []string {
		return m.BrowsingCSVHeader
	})
}

func (s *APIService) exportPatienceCSV(c echo.Context) error {
	return s.exportCSV(c, "patience-count", s.Recorder.PatienceCSV, func(m i18n.Messages) []string {
		return m.PatienceCSVHeader
	})
}

func (s *APIService) deleteRange(c echo.Context) error {
	result, err := s.Recorder.DeleteRange(c.Request().Context(), c.QueryParam("start"), c.QueryParam("end"))
	switch {
	case errors.Is(err, stats.ErrInvalidRange):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		return internalError(err)
	}

	return c.JSON(http.StatusOK, result)
}

func (s *APIService) deleteAll(c echo.Context) error {
	if err := s.Recorder.DeleteAll(c.Request().Context()); err != nil {
		return internalError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
