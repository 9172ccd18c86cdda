package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/freelancehub/tracker/internal/api/ws"
)

// ReminderHandler upgrades requests to the websocket reminder feed.
type ReminderHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewReminderHandler(hub *ws.Hub, log zerolog.Logger) *ReminderHandler {
	return &ReminderHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log: log.With().Str("component", "reminder_feed").Logger(),
	}
}

// Subscribe handles GET /reminders/ws.
//
// @Summary      Deadline reminder feed
// @Description  Websocket stream of deadline reminders. The token may be passed as ?access_token=.
// @Tags         reminders
// @Security     BearerAuth
// @Success      101
// @Router       /reminders/ws [get]
func (h *ReminderHandler) Subscribe(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return nil
	}

	client := ws.NewClient(conn, h.log)
	client.Serve(h.hub)
	return nil
}
