package subscriptionValidator

import (
	"courseforge/middleware"
	"courseforge/models"
	"strings"

	"github.com/gofiber/fiber/v2"
)

func Subscribe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Plan string `json:"plan"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Plan = strings.ToUpper(strings.TrimSpace(reqData.Plan))
		if reqData.Plan != models.PeriodMonthly && reqData.Plan != models.PeriodYearly {
			errors["plan"] = "Plan must be MONTHLY or YEARLY!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedSubscribe", reqData)
		return c.Next()
	}
}
