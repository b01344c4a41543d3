package inventory

import (
	"depo-backend/internal/auth"
	"depo-backend/internal/lifecycle"
	"depo-backend/internal/movement"

	"github.com/gofiber/fiber/v2"
)

type approveBody struct {
	Items []movement.ApproveItem `json:"items"`
}

type componentsBody struct {
	Components []movement.ComponentUse `json:"components"`
}

type removeBody struct {
	Components []movement.RemoveItem `json:"components"`
}

type exitBody struct {
	Items []movement.ExitItem `json:"items"`
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
	}
	return nil
}

func productID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Geçersiz ürün id")
	}
	return uint(id), nil
}

// POST /api/approve/:scope
func ApproveHandler(svc *movement.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorID(c)
		if err != nil {
			return err
		}
		var body approveBody
		if err := parseBody(c, &body); err != nil {
			return err
		}

		res, err := svc.Approve(c.UserContext(), movement.ApproveRequest{
			Scope: lifecycle.Scope(c.Params("scope")),
			Items: body.Items,
		}, actor)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// POST /api/components
func CreateComponentHandler(svc *movement.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorID(c)
		if err != nil {
			return err
		}
		var body movement.CreateComponentRequest
		if err := parseBody(c, &body); err != nil {
			return err
		}

		res, err := svc.CreateComponent(c.UserContext(), body, actor)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// POST /api/products/assemble
func AssembleHandler(svc *movement.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorID(c)
		if err != nil {
			return err
		}
		var body movement.AssembleRequest
		if err := parseBody(c, &body); err != nil {
			return err
		}

		res, err := svc.Assemble(c.UserContext(), body, actor)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// POST /api/products/:id/components
func AddComponentsHandler(svc *movement.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorID(c)
		if err != nil {
			return err
		}
		id, err := productID(c)
		if err != nil {
			return err
		}
		var body componentsBody
		if err := parseBody(c, &body); err != nil {
			return err
		}

		res, err := svc.AddComponents(c.UserContext(), id, body.Components, actor)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// POST /api/products/:id/components/remove
func RemoveComponentsHandler(svc *movement.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorID(c)
		if err != nil {
			return err
		}
		id, err := productID(c)
		if err != nil {
			return err
		}
		var body removeBody
		if err := parseBody(c, &body); err != nil {
			return err
		}

		res, err := svc.RemoveComponents(c.UserContext(), id, body.Components, actor)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// POST /api/components/exit
func ExitHandler(svc *movement.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorID(c)
		if err != nil {
			return err
		}
		var body exitBody
		if err := parseBody(c, &body); err != nil {
			return err
		}

		res, err := svc.Exit(c.UserContext(), body.Items, actor)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// DELETE /api/items/:type/:id
func DeleteItemHandler(svc *movement.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorID(c)
		if err != nil {
			return err
		}
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz id")
		}

		batchID, err := svc.DeleteItem(c.UserContext(), lifecycle.ItemType(c.Params("type")), uint(id), actor)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"batch_id": batchID, "deleted": true})
	}
}
