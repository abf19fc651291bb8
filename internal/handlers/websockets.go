package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"expense_tracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 2 * time.Second
	minInterval      = 100 * time.Millisecond
	maxInterval      = time.Minute
	maxIntervalMilli = 60_000
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data"`
	Error string      `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary      Live expense feed
// @Description  WebSocket. Sends {"type":"expenses","data":[...]} on connect and every interval. Accepts ?token= instead of the Authorization header.
// @Tags         expenses
// @Param        month     query  int     false  "Month 1-12"
// @Param        year      query  int     false  "Year"
// @Param        interval  query  string  false  "Push interval, e.g. 2s (100ms-1m)"
// @Param        token     query  string  false  "Bearer token"
// @Success      101
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /api/expenses/ws [get]
func (h *Handler) expenseFeed(c *gin.Context) {
	uid := userID(c)
	filter := service.ListFilter{Month: c.Query("month"), Year: c.Query("year")}
	interval := h.parseInterval(c)

	// Reject a bad filter as plain HTTP before upgrading.
	initial, err := h.services.Expenses.List(c.Request.Context(), uid, filter)
	if err != nil {
		h.fail(c, "ws_list_failed", err, "user_id", uid)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader goroutine to handle control frames and detect disconnects.
	done := make(chan struct{})
	go h.startReader(conn, done)

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	if err := writeEnvelope(conn, wsEnvelope{Type: "expenses", Data: initial}); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err)
		}
		return
	}

	ctx := c.Request.Context()
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case <-ticker.C:
			if err := h.sendExpenses(ctx, conn, uid, filter); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "user_id", uid, "err", err)
				}
				return
			}
		}
	}
}

// parseInterval reads ?interval=2s or ?interval_ms=2000 with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d >= minInterval && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v >= int(minInterval/time.Millisecond) && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}

	return defaultInterval
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Debugw("ws_read_closed", "err", err)
			}
			return
		}
	}
}

// sendExpenses pushes the current list. A failed read is reported to the
// client as an error frame and keeps the connection open.
func (h *Handler) sendExpenses(ctx context.Context, conn *websocket.Conn, uid int64, f service.ListFilter) error {
	list, err := h.services.Expenses.List(ctx, uid, f)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_list_failed", "user_id", uid, "err", err)
		}
		return writeEnvelope(conn, wsEnvelope{Type: "error", Error: msgServerError})
	}
	return writeEnvelope(conn, wsEnvelope{Type: "expenses", Data: list})
}

func writeEnvelope(conn *websocket.Conn, env wsEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}
