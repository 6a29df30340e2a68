package handler

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/domain"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/middleware"
	"github.com/Ekta-2312/Copy-Innovate-Backend/internal/service/hub"
)

// heartbeatInterval keeps idle SSE connections alive through proxies that
// reap silent streams.
const heartbeatInterval = 30 * time.Second

type StreamHandler struct {
	hub *hub.Hub
}

func NewStreamHandler(notifHub *hub.Hub) *StreamHandler {
	return &StreamHandler{hub: notifHub}
}

// Events streams dashboard notifications as server-sent events. Hospital
// staff get their hospital's events plus platform-wide broadcasts; admins
// subscribe globally and see everything.
func (h *StreamHandler) Events(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return middleware.Unauthorized("User not authenticated")
	}

	// Only admins subscribe globally; everyone else must carry a hospital
	// so a missing assignment never widens their view.
	var scope *uuid.UUID
	if user.Role != string(domain.RoleAdmin) {
		if user.HospitalID == nil {
			return middleware.Forbidden("No hospital assigned")
		}
		scope = user.HospitalID
	}

	sub := h.hub.Subscribe(scope)

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer sub.Close()

		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case n, ok := <-sub.Events():
				if !ok {
					return
				}
				payload, err := json.Marshal(n)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", n.Type, payload)
				if err := w.Flush(); err != nil {
					// Client went away; unsubscribing stops the fan-out.
					return
				}
			case <-ticker.C:
				fmt.Fprint(w, ": heartbeat\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))

	return nil
}
