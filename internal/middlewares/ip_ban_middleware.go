package middlewares

import (
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const bannedIPSetKey = "banned_ips"

// IPBanMiddleware rejects requests from IPs present in the Redis ban set.
// Redis failures fail open; blocking all traffic on a cache outage is
// worse than letting a banned IP through.
func IPBanMiddleware(client *redis.Client) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		banned, err := client.SIsMember(ctx.RequestCtx(), bannedIPSetKey, ctx.IP()).Result()
		if err != nil {
			log.Warn().Err(err).Msg("IP ban check failed")
			return ctx.Next()
		}

		if banned {
			return fiber.NewError(fiber.StatusForbidden, "Access denied")
		}

		return ctx.Next()
	}
}
