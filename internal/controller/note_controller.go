package controller

import (
	"context"

	"notetrack-be/internal/dto"
	"notetrack-be/internal/entity"
	"notetrack-be/internal/pkg/serverutils"
	"notetrack-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type INoteController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Count(ctx *fiber.Ctx) error
	Statistics(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	UpdateFields(ctx *fiber.Ctx) error
	Archive(ctx *fiber.Ctx) error
	Restore(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type noteController struct {
	noteService service.INoteService
}

func NewNoteController(noteService service.INoteService) INoteController {
	return &noteController{
		noteService: noteService,
	}
}

func (c *noteController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/notes")
	h.Use(auth)
	h.Get("", c.List)
	h.Get("count", c.Count)
	h.Get("statistics", c.Statistics)
	h.Post("", c.Create)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Patch(":id/fields", c.UpdateFields)
	h.Post(":id/archive", c.Archive)
	h.Post(":id/restore", c.Restore)
	h.Delete(":id", c.Delete)
}

func (c *noteController) Create(ctx *fiber.Ctx) error {
	actor, err := serverutils.ActorFromContext(ctx)
	if err != nil {
		return err
	}

	var req dto.CreateNoteRequest
	if err := serverutils.ParseBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.noteService.Create(ctx.Context(), actor, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create note", res))
}

func (c *noteController) Show(ctx *fiber.Ctx) error {
	id, err := serverutils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.noteService.Show(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show note", res))
}

// List picks one filter, in order: stage, assignee, author, context. No filter lists every live note.
func (c *noteController) List(ctx *fiber.Ctx) error {
	var req dto.ListNotesRequest
	if err := serverutils.ParseQuery(ctx, &req); err != nil {
		return err
	}

	var (
		res *dto.NoteListResponse
		err error
	)
	switch {
	case req.StageId != nil:
		res, err = c.noteService.ListByStage(ctx.Context(), *req.StageId, req.Limit, req.Offset)
	case req.AssigneeId != nil:
		res, err = c.noteService.ListByAssignee(ctx.Context(), *req.AssigneeId, req.Limit, req.Offset)
	case req.AuthorId != nil:
		res, err = c.noteService.ListByAuthor(ctx.Context(), *req.AuthorId, req.Limit, req.Offset)
	case req.ContextType != "":
		res, err = c.noteService.ListByContext(ctx.Context(), entity.ContextType(req.ContextType), req.ContextId, req.Limit, req.Offset)
	default:
		res, err = c.noteService.ListAll(ctx.Context(), req.Limit, req.Offset)
	}
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list notes", res))
}

func (c *noteController) Count(ctx *fiber.Ctx) error {
	var req dto.ListNotesRequest
	if err := serverutils.ParseQuery(ctx, &req); err != nil {
		return err
	}

	var (
		total int64
		err   error
	)
	switch {
	case req.StageId != nil:
		total, err = c.noteService.CountByStage(ctx.Context(), *req.StageId)
	case req.AssigneeId != nil:
		total, err = c.noteService.CountByAssignee(ctx.Context(), *req.AssigneeId)
	case req.AuthorId != nil:
		total, err = c.noteService.CountByAuthor(ctx.Context(), *req.AuthorId)
	case req.ContextType != "":
		total, err = c.noteService.CountByContext(ctx.Context(), entity.ContextType(req.ContextType), req.ContextId)
	default:
		total, err = c.noteService.CountAll(ctx.Context())
	}
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success count notes", fiber.Map{"total": total}))
}

func (c *noteController) Statistics(ctx *fiber.Ctx) error {
	res, err := c.noteService.GetStatistics(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get note statistics", res))
}

func (c *noteController) Update(ctx *fiber.Ctx) error {
	actor, err := serverutils.ActorFromContext(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateNoteRequest
	if err := serverutils.ParseBody(ctx, &req); err != nil {
		return err
	}
	req.Id = id

	res, err := c.noteService.Update(ctx.Context(), actor, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update note", res))
}

func (c *noteController) UpdateFields(ctx *fiber.Ctx) error {
	actor, err := serverutils.ActorFromContext(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}

	var req dto.UpdateNoteFieldsRequest
	if err := serverutils.ParseBody(ctx, &req); err != nil {
		return err
	}
	req.Id = id

	res, err := c.noteService.UpdateFields(ctx.Context(), actor, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update note", res))
}

func (c *noteController) Archive(ctx *fiber.Ctx) error {
	return c.transition(ctx, c.noteService.Archive, "Success archive note")
}

func (c *noteController) Restore(ctx *fiber.Ctx) error {
	return c.transition(ctx, c.noteService.Restore, "Success restore note")
}

func (c *noteController) Delete(ctx *fiber.Ctx) error {
	return c.transition(ctx, c.noteService.Delete, "Success delete note")
}

type noteTransition func(ctx context.Context, actor entity.Actor, id uuid.UUID) error

func (c *noteController) transition(ctx *fiber.Ctx, fn noteTransition, message string) error {
	actor, err := serverutils.ActorFromContext(ctx)
	if err != nil {
		return err
	}
	id, err := serverutils.ParseUUIDParam(ctx, "id")
	if err != nil {
		return err
	}

	if err := fn(ctx.Context(), actor, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any](message, nil))
}
