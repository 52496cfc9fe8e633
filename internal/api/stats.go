package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/st3v3nmw/focusguard/internal/stats"
	"github.com/st3v3nmw/focusguard/internal/types"
)

func (s *APIService) getStats(c echo.Context) error {
	ctx := c.Request().Context()

	groupBy := types.Granularity(c.QueryParam("group_by"))
	switch groupBy {
	case "":
		groupBy = types.GranularityDay
	case types.GranularityDay, types.GranularityMonth, types.GranularityHour:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "group_by must be one of day, month, hour")
	}

	opts := stats.Options{
		GroupBy:   groupBy,
		StartDate: c.QueryParam("start"),
		EndDate:   c.QueryParam("end"),
	}

	if blockingStr := c.QueryParam("blocking"); blockingStr != "" {
		blocking, err := strconv.ParseBool(blockingStr)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		opts.FilterBlocking = &blocking
	}

	if tz := c.QueryParam("tz"); tz != "" {
		loc, err := stats.ParseTimezone(tz, s.Location)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		opts.Location = loc
	} else {
		settings, err := s.Store.RecordingSettings(ctx)
		if err != nil {
			return internalError(err)
		}
		opts.Location = stats.ResolveLocation(settings.Timezone(), s.Location)
	}

	report, err := s.Recorder.Report(ctx, opts)
	if err != nil {
		return internalError(err)
	}

	return c.JSON(http.StatusOK, report)
}
