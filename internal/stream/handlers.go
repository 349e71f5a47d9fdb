package stream

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// RegisterRoutes exposes the live feed. The route sits behind the JWT
// middleware and a client may only subscribe to its own feed: the records
// carry raw GPS traces.
func RegisterRoutes(r fiber.Router, hub *Hub, authMiddleware fiber.Handler) {
	r.Get("/ws/:ownerID", authMiddleware, websocket.New(func(c *websocket.Conn) {
		ownerID := c.Params("ownerID")
		userID, _ := c.Locals("user_id").(string)
		if userID == "" || userID != ownerID {
			_ = c.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "feed belongs to another user"))
			return
		}

		client := hub.Register(ownerID)
		defer hub.Unregister(client)

		done := make(chan struct{})
		go func() {
			for msg := range client.Send {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					break
				}
			}
			close(done)
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
		<-done
	}))
}
