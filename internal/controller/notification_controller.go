package controller

import (
	"notetrack-be/internal/dto"
	"notetrack-be/internal/pkg/serverutils"
	"notetrack-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type INotificationController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Summary(ctx *fiber.Ctx) error
	GetPreference(ctx *fiber.Ctx) error
	SetPreference(ctx *fiber.Ctx) error
	SendTest(ctx *fiber.Ctx) error
	RunSweep(ctx *fiber.Ctx) error
}

type notificationController struct {
	deadlineService service.IDeadlineService
}

func NewNotificationController(deadlineService service.IDeadlineService) INotificationController {
	return &notificationController{
		deadlineService: deadlineService,
	}
}

func (c *notificationController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/notifications")
	h.Use(auth)
	h.Get("deadlines", c.Summary)
	h.Get("preferences", c.GetPreference)
	h.Put("preferences", c.SetPreference)
	h.Post("test", c.SendTest)
	h.Post("sweep", serverutils.RequireAdmin, c.RunSweep)
}

// Summary returns the caller's overdue and upcoming counts. ?days= overrides the upcoming window.
func (c *notificationController) Summary(ctx *fiber.Ctx) error {
	actor, err := serverutils.ActorFromContext(ctx)
	if err != nil {
		return err
	}

	overdue, err := c.deadlineService.GetOverdueCount(ctx.Context(), actor.UserId)
	if err != nil {
		return err
	}
	upcoming, err := c.deadlineService.GetUpcomingCount(ctx.Context(), actor.UserId, ctx.QueryInt("days", 0))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get deadline summary", dto.DeadlineSummaryResponse{
		Overdue:  overdue,
		Upcoming: upcoming,
	}))
}

func (c *notificationController) GetPreference(ctx *fiber.Ctx) error {
	actor, err := serverutils.ActorFromContext(ctx)
	if err != nil {
		return err
	}

	res, err := c.deadlineService.GetPreference(ctx.Context(), actor.UserId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get notification preference", res))
}

func (c *notificationController) SetPreference(ctx *fiber.Ctx) error {
	actor, err := serverutils.ActorFromContext(ctx)
	if err != nil {
		return err
	}

	var req dto.DeadlinePreferenceRequest
	if err := serverutils.ParseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.deadlineService.SetPreference(ctx.Context(), actor.UserId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update notification preference", res))
}

func (c *notificationController) SendTest(ctx *fiber.Ctx) error {
	actor, err := serverutils.ActorFromContext(ctx)
	if err != nil {
		return err
	}

	res, err := c.deadlineService.SendTestNotification(ctx.Context(), actor.UserId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success send test notification", res))
}

func (c *notificationController) RunSweep(ctx *fiber.Ctx) error {
	res, err := c.deadlineService.RunSweep(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success run deadline sweep", res))
}
