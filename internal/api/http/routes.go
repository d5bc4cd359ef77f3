package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/lromero/covid-data-pipeline/internal/store"
)

// RegisterRoutes wires the status handlers into the Fiber app. The surface
// exists only in scheduled mode, for operators checking on the job between
// runs.
func RegisterRoutes(app *fiber.App, history *store.RunHistory) {
	v1 := app.Group("/api/v1")

	v1.Get("/runs", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"runs": history.All(),
		})
	})

	v1.Get("/runs/latest", func(c *fiber.Ctx) error {
		latest, err := history.Latest()
		if err != nil {
			if errors.Is(err, store.ErrNoRuns) {
				return fiber.NewError(fiber.StatusNotFound, "no pipeline run has completed yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read run history")
		}

		return c.JSON(latest)
	})
}
