package exerciseValidator

import (
	"courseforge/middleware"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Source submissions above this size are rejected before reaching the
// interpreter.
const maxSourceBytes = 64 * 1024

// ExerciseID validates the :id route param and stores it as exerciseID
func ExerciseID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		exerciseIDStr := strings.TrimSpace(c.Params("id"))
		if exerciseIDStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Exercise ID is required!", nil)
		}

		exerciseID, err := strconv.Atoi(exerciseIDStr)
		if err != nil || exerciseID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Exercise ID!", nil)
		}

		c.Locals("exerciseID", exerciseID)
		return c.Next()
	}
}

// RunCode validates a source payload for both run and submit endpoints
func RunCode() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Source string `json:"source"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Source) == "" {
			errors["source"] = "Source code is required!"
		} else if len(reqData.Source) > maxSourceBytes {
			errors["source"] = "Source code is too large!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedRunCode", reqData)
		return c.Next()
	}
}

func UpdateExercise() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Difficulty  string `json:"difficulty"`
			StarterCode string `json:"starter_code"`
			IsPublished *bool  `json:"is_published"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.Title != "" && len(strings.TrimSpace(reqData.Title)) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		if reqData.Difficulty != "" {
			reqData.Difficulty = strings.ToUpper(strings.TrimSpace(reqData.Difficulty))
			switch reqData.Difficulty {
			case "BEGINNER", "INTERMEDIATE", "ADVANCED":
			default:
				errors["difficulty"] = "Difficulty must be BEGINNER, INTERMEDIATE or ADVANCED!"
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedExerciseUpdate", reqData)
		return c.Next()
	}
}

func CreateExercise() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Difficulty  string `json:"difficulty"`
			StarterCode string `json:"starter_code"`
			TestCases   []struct {
				Description    string `json:"description"`
				Input          string `json:"input"`
				ExpectedOutput string `json:"expected_output"`
			} `json:"test_cases"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		} else if len(strings.TrimSpace(reqData.Title)) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		if strings.TrimSpace(reqData.Description) == "" {
			errors["description"] = "Description is required!"
		}

		reqData.Difficulty = strings.ToUpper(strings.TrimSpace(reqData.Difficulty))
		switch reqData.Difficulty {
		case "BEGINNER", "INTERMEDIATE", "ADVANCED":
		default:
			errors["difficulty"] = "Difficulty must be BEGINNER, INTERMEDIATE or ADVANCED!"
		}

		if len(reqData.TestCases) == 0 {
			errors["test_cases"] = "At least one test case is required!"
		}
		for i, tc := range reqData.TestCases {
			if strings.TrimSpace(tc.ExpectedOutput) == "" {
				errors["test_cases"] = "Test case " + strconv.Itoa(i+1) + " is missing an expected output!"
				break
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedExercise", reqData)
		return c.Next()
	}
}
