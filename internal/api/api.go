package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/st3v3nmw/focusguard/internal/config"
	"github.com/st3v3nmw/focusguard/internal/guard"
	"github.com/st3v3nmw/focusguard/internal/relevance"
	"github.com/st3v3nmw/focusguard/internal/similarity"
	"github.com/st3v3nmw/focusguard/internal/stats"
	"github.com/st3v3nmw/focusguard/internal/storage"
	"github.com/st3v3nmw/focusguard/internal/tracker"
)

// Deps are the components the API routes messages to.
type Deps struct {
	Store       *storage.Store
	Recorder    *stats.Recorder
	Tracker     *tracker.Tracker
	Checker     *guard.Checker
	Scorer      *relevance.Scorer
	Scores      *guard.Scores
	Broadcaster *guard.Broadcaster
	Similarity  similarity.Provider
	Checks      config.ChecksConfig
	Location    *time.Location
	Clock       clockwork.Clock
}

type APIService struct {
	Deps

	address string
	echo    *echo.Echo
}

func New(addr string, deps Deps) *APIService {
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
	}))

	e.Validator = &customValidator{validator: validator.New()}

	s := &APIService{Deps: deps, address: addr, echo: e}
	s.routes()

	return s
}

func (s *APIService) routes() {
	e := s.echo

	e.GET("/", home)
	e.GET("/watch", s.watch)
	e.GET("/status", s.getStatus)
	e.GET("/config", s.getConfig)

	// Relevance & site decisions
	e.POST("/relevance", s.checkRelevance)
	e.POST("/sites/check", s.checkSite)
	e.POST("/tabs/:tab/check", s.checkTab)
	e.GET("/tabs/:tab/score", s.getScore)
	e.POST("/tabs/:tab/score", s.reportScore)

	// Tab & window events
	e.POST("/tabs/:tab/activated", s.tabActivated)
	e.POST("/tabs/:tab/navigated", s.tabNavigated)
	e.DELETE("/tabs/:tab", s.tabRemoved)
	e.POST("/windows/focus", s.windowFocused)
	e.POST("/patience", s.recordPatience)

	// Settings
	e.GET("/extension", s.getExtension)
	e.PUT("/extension", s.setExtension)
	e.GET("/language", s.getLanguage)
	e.PUT("/language", s.setLanguage)
	e.GET("/topics", s.getTopics)
	e.POST("/topics", s.addTopic)
	e.DELETE("/topics/:text", s.removeTopic)
	e.POST("/topics/:text/toggle", s.toggleTopic)
	e.GET("/sites", s.getSites)
	e.POST("/sites/allowlist", s.addAllowed)
	e.DELETE("/sites/allowlist", s.removeAllowed)
	e.POST("/sites/blocklist", s.addBlocked)
	e.DELETE("/sites/blocklist", s.removeBlocked)
	e.POST("/sites/patterns", s.addPattern)
	e.DELETE("/sites/patterns", s.removePattern)
	e.GET("/recording", s.getRecording)
	e.PUT("/recording", s.setRecording)

	// Statistics & data management
	e.GET("/stats", s.getStats)
	e.GET("/export", s.exportData)
	e.POST("/import", s.importData)
	e.GET("/export/browsing.csv", s.exportBrowsingCSV)
	e.GET("/export/patience.csv", s.exportPatienceCSV)
	e.DELETE("/data", s.deleteRange)
	e.DELETE("/data/all", s.deleteAll)
}

func (s *APIService) Start() error {
	err := s.echo.Start(s.address)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *APIService) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *APIService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// validator
type customValidator struct {
	validator *validator.Validate
}

func (cv *customValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.Validate(v)
}

func internalError(err error) error {
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func tabParam(c echo.Context) (tracker.TabID, error) {
	id, err := strconv.Atoi(c.Param("tab"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid tab id")
	}
	return tracker.TabID(id), nil
}

func home(c echo.Context) error {
	return c.String(http.StatusOK, "Focus Guard API")
}
