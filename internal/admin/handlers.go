package admin

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service) {
	r.Get("/overview", func(c *fiber.Ctx) error {
		out, err := svc.Overview(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(out)
	})

	r.Get("/users/:id/daily", func(c *fiber.Ctx) error {
		stats, err := svc.UserDaily(c.Context(), c.Params("id"), c.QueryInt("days", 7))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if stats == nil {
			stats = []DailyStat{}
		}
		return c.JSON(stats)
	})

	r.Get("/regions/top", func(c *fiber.Ctx) error {
		stats, err := svc.TopRegions(c.Context(), c.QueryInt("limit", 10))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if stats == nil {
			stats = []RegionStat{}
		}
		return c.JSON(stats)
	})
}
