package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	ipAddressKey = "request_ip"
	userAgentKey = "request_user_agent"
)

// RequestInfo captures the caller's IP and user agent early so audit trails
// see the real client even behind a reverse proxy.
func RequestInfo() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if fwd := c.Get("X-Forwarded-For"); fwd != "" {
			if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
				ip = first
			}
		} else if real := c.Get("X-Real-IP"); real != "" {
			ip = real
		}

		c.Locals(ipAddressKey, ip)
		c.Locals(userAgentKey, c.Get("User-Agent"))

		return c.Next()
	}
}

func GetIPAddress(c *fiber.Ctx) *string {
	if ip, ok := c.Locals(ipAddressKey).(string); ok && ip != "" {
		return &ip
	}
	return nil
}

func GetUserAgent(c *fiber.Ctx) *string {
	if ua, ok := c.Locals(userAgentKey).(string); ok && ua != "" {
		return &ua
	}
	return nil
}
