package controller

import (
	"notetrack-be/internal/dto"
	"notetrack-be/internal/pkg/serverutils"
	"notetrack-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IStageController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Default(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Seed(ctx *fiber.Ctx) error
}

type stageController struct {
	stageService service.IStageService
}

func NewStageController(stageService service.IStageService) IStageController {
	return &stageController{
		stageService: stageService,
	}
}

func (c *stageController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/stages")
	h.Use(auth)
	h.Get("", c.List)
	h.Get("default", c.Default)
	h.Get(":id", c.Show)

	// Mutations are administrator only
	h.Post("", serverutils.RequireAdmin, c.Create)
	h.Post("seed", serverutils.RequireAdmin, c.Seed)
	h.Put(":id", serverutils.RequireAdmin, c.Update)
	h.Delete(":id", serverutils.RequireAdmin, c.Delete)
}

func (c *stageController) List(ctx *fiber.Ctx) error {
	res, err := c.stageService.List(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list stages", res))
}

func (c *stageController) Show(ctx *fiber.Ctx) error {
	id, err := serverutils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.stageService.Get(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show stage", res))
}

func (c *stageController) Default(ctx *fiber.Ctx) error {
	res, err := c.stageService.GetDefault(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show default stage", res))
}

func (c *stageController) Create(ctx *fiber.Ctx) error {
	actor, err := serverutils.ActorFromContext(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateStageRequest
	if err := serverutils.ParseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.stageService.Create(ctx.Context(), actor, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create stage", res))
}

func (c *stageController) Update(ctx *fiber.Ctx) error {
	actor, err := serverutils.ActorFromContext(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateStageRequest
	if err := serverutils.ParseBody(ctx, &req); err != nil {
		return err
	}
	req.Id = id

	res, err := c.stageService.Update(ctx.Context(), actor, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update stage", res))
}

func (c *stageController) Delete(ctx *fiber.Ctx) error {
	actor, err := serverutils.ActorFromContext(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.stageService.Delete(ctx.Context(), actor, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete stage", nil))
}

func (c *stageController) Seed(ctx *fiber.Ctx) error {
	created, err := c.stageService.CreateDefaultStages(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success seed stages", dto.SeedStagesResponse{Created: created}))
}
