package movement

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/", authMiddleware, func(c *fiber.Ctx) error {
		var req Submission
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		ownerID := ownerFromLocals(c)
		if ownerID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing user identity")
		}
		accepted, err := svc.Submit(c.Context(), ownerID, req)
		if err != nil {
			return submitError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(accepted)
	})

	// registered before /:id so the path segment is not taken for a record id
	r.Get("/quota", authMiddleware, func(c *fiber.Ctx) error {
		ownerID := ownerFromLocals(c)
		if ownerID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing user identity")
		}
		status, err := svc.CheckQuota(c.Context(), ownerID, time.Now())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(status)
	})

	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		ownerID := ownerFromLocals(c)
		if ownerID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing user identity")
		}
		records, err := svc.ListByOwner(c.Context(), ownerID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(records)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		rec, err := svc.Get(c.Context(), c.Params("id"))
		if errors.Is(err, ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(rec)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		ownerID := ownerFromLocals(c)
		if ownerID == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing user identity")
		}
		err := svc.SoftDelete(c.Context(), c.Params("id"), ownerID)
		if errors.Is(err, ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func ownerFromLocals(c *fiber.Ctx) string {
	ownerID, _ := c.Locals("user_id").(string)
	return ownerID
}

func submitError(c *fiber.Ctx, err error) error {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":  "validation failed",
			"fields": vErr.Fields,
		})
	}
	var qErr *QuotaError
	if errors.As(err, &qErr) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error": qErr.Error(),
			"count": qErr.Count,
			"limit": qErr.Limit,
		})
	}
	if errors.Is(err, ErrOwnerNotFound) || errors.Is(err, ErrOwnerInactive) {
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
