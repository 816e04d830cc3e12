package controller

import (
	"notetrack-be/internal/dto"
	"notetrack-be/internal/entity"
	"notetrack-be/internal/pkg/serverutils"
	"notetrack-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuditController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	List(ctx *fiber.Ctx) error
	Count(ctx *fiber.Ctx) error
	LogAction(ctx *fiber.Ctx) error
	Clear(ctx *fiber.Ctx) error
}

type auditController struct {
	auditService service.IAuditService
}

func NewAuditController(auditService service.IAuditService) IAuditController {
	return &auditController{
		auditService: auditService,
	}
}

func (c *auditController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/audit")
	h.Use(auth)
	h.Get("", c.List)
	h.Get("count", c.Count)
	h.Post("", c.LogAction)
	h.Delete("", serverutils.RequireAdmin, c.Clear)
}

func (c *auditController) List(ctx *fiber.Ctx) error {
	var req dto.ListAuditLogsRequest
	if err := serverutils.ParseQuery(ctx, &req); err != nil {
		return err
	}

	res, err := c.auditService.GetAuditLogs(ctx.Context(), req.NoteId, req.Limit, req.Offset)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list audit logs", res))
}

func (c *auditController) Count(ctx *fiber.Ctx) error {
	var req dto.ListAuditLogsRequest
	if err := serverutils.ParseQuery(ctx, &req); err != nil {
		return err
	}

	total, err := c.auditService.GetAuditLogsCount(ctx.Context(), req.NoteId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success count audit logs", fiber.Map{"total": total}))
}

// LogAction records a custom entry. Built-in actions are written by the services themselves.
func (c *auditController) LogAction(ctx *fiber.Ctx) error {
	actor, err := serverutils.ActorFromContext(ctx)
	if err != nil {
		return err
	}

	var req dto.LogActionRequest
	if err := serverutils.ParseBody(ctx, &req); err != nil {
		return err
	}

	id, err := c.auditService.LogAction(ctx.Context(), actor, req.NoteId, entity.CustomDetails{
		Tag:     entity.AuditAction(req.Action),
		Message: req.Message,
		Data:    req.Data,
	})
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success log action", fiber.Map{"id": id}))
}

func (c *auditController) Clear(ctx *fiber.Ctx) error {
	actor, err := serverutils.ActorFromContext(ctx)
	if err != nil {
		return err
	}

	var req dto.ClearAuditLogsRequest
	if len(ctx.Body()) > 0 {
		if err := serverutils.ParseBody(ctx, &req); err != nil {
			return err
		}
	}

	deleted, err := c.auditService.ClearLogs(ctx.Context(), actor, req.OlderThanDays)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success clear audit logs", dto.ClearAuditLogsResponse{Deleted: deleted}))
}
