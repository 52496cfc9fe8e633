package api

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/st3v3nmw/focusguard/internal/guard"
)

var (
	upgrader = websocket.Upgrader{
		CheckOrigin: checkOrigin,
	}
)

func checkOrigin(r *http.Request) bool {
	return true
}

// watch streams extension toggles to a tab, starting with the current state.
func (s *APIService) watch(c echo.Context) error {
	enabled, err := s.Store.ExtensionEnabled(c.Request().Context())
	if err != nil {
		return internalError(err)
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	defer ws.Close()

	ch := s.Broadcaster.Subscribe()
	defer s.Broadcaster.Unsubscribe(ch)

	if err := ws.WriteJSON(guard.Event{Type: guard.EventExtensionToggled, Enabled: enabled}); err != nil {
		return nil
	}

	// Tabs never send anything; a failed read means they went away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			if err := ws.WriteJSON(event); err != nil {
				return nil
			}
		case <-closed:
			return nil
		}
	}
}
