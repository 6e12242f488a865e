package exerciseController

import (
	"courseforge/database"
	"courseforge/middleware"
	"courseforge/models"
	exerciseModels "courseforge/models/exercise"
	"courseforge/services/sandbox"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
)

// runtime is the process-wide interpreter capability, set from main
var runtime *sandbox.Runtime

// SetRuntime wires the sandbox runtime used by the run/submit handlers
func SetRuntime(rt *sandbox.Runtime) {
	runtime = rt
}

func GetAllExercises(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	// Optional difficulty filter
	difficulty := c.Query("difficulty")
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&exerciseModels.Exercise{}).Where("is_deleted = ? AND is_published = ?", false, true)
	if difficulty != "" {
		db = db.Where("difficulty = ?", difficulty)
	}

	var total int64
	db.Count(&total)

	var exercises []exerciseModels.Exercise
	if err := db.Offset(offset).Limit(limit).Order("created_at desc").Find(&exercises).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch exercises!", nil)
	}

	response := map[string]interface{}{
		"exercises": exercises,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exercises fetched successfully!", response)
}

// GetExerciseDetails returns an exercise with its test cases. Expected
// outputs stay visible: grading is by exact output, not hidden answers.
func GetExerciseDetails(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	exerciseID := c.Locals("exerciseID").(int)

	var exercise exerciseModels.Exercise
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND is_published = ?", exerciseID, false, true).First(&exercise).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exercise not found!", nil)
	}

	var testCases []exerciseModels.TestCase
	database.Database.Db.Where("exercise_id = ? AND is_deleted = ?", exerciseID, false).Order("position asc").Find(&testCases)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exercise fetched successfully!", fiber.Map{
		"exercise":   exercise,
		"test_cases": testCases,
	})
}

// RunExerciseCode executes submitted source in the sandbox and returns
// captured stdout/stderr. Errors in the learner's code are data, not
// failures of this endpoint.
func RunExerciseCode(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	exerciseID := c.Locals("exerciseID").(int)
	var exercise exerciseModels.Exercise
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND is_published = ?", exerciseID, false, true).First(&exercise).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exercise not found!", nil)
	}

	reqData, ok := c.Locals("validatedRunCode").(*struct {
		Source string `json:"source"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	result, err := runtime.RunCode(c.Context(), reqData.Source)
	if err != nil {
		if errors.Is(err, sandbox.ErrNotReady) || errors.Is(err, sandbox.ErrRuntimeUnavailable) {
			return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Code runtime is not available right now!", nil)
		}
		log.Printf("Sandbox execution error: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to run code!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Code executed successfully!", result)
}

// SubmitSolution grades submitted source against the exercise's stored
// test cases and persists a Solution row with the result summary.
func SubmitSolution(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	exerciseID := c.Locals("exerciseID").(int)

	var exercise exerciseModels.Exercise
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND is_published = ?", exerciseID, false, true).First(&exercise).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exercise not found!", nil)
	}

	if exercise.Language != "GO" {
		return middleware.ValidationErrorResponse(c, map[string]string{
			"language": "Only Go exercises can be graded right now!",
		})
	}

	reqData, ok := c.Locals("validatedRunCode").(*struct {
		Source string `json:"source"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var stored []exerciseModels.TestCase
	if err := database.Database.Db.Where("exercise_id = ? AND is_deleted = ?", exerciseID, false).Order("position asc").Find(&stored).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch test cases!", nil)
	}

	cases := make([]sandbox.TestCase, 0, len(stored))
	for _, tc := range stored {
		cases = append(cases, sandbox.TestCase{
			Description:    tc.Description,
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
		})
	}

	results, err := runtime.RunTests(c.Context(), reqData.Source, cases)
	if err != nil {
		if errors.Is(err, sandbox.ErrNotReady) || errors.Is(err, sandbox.ErrRuntimeUnavailable) {
			return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Code runtime is not available right now!", nil)
		}
		log.Printf("Sandbox grading error: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to grade solution!", nil)
	}

	passed := 0
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}

	solution := exerciseModels.Solution{
		ExerciseID:  uint(exerciseID),
		UserID:      userID,
		Source:      reqData.Source,
		PassedCases: passed,
		TotalCases:  len(results),
	}
	if err := database.Database.Db.Create(&solution).Error; err != nil {
		log.Printf("Error saving solution: %v", err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Solution graded successfully!", fiber.Map{
		"results":      results,
		"passed_cases": passed,
		"total_cases":  len(results),
	})
}

// AuthorCreateExercise creates a new exercise with its test cases
func AuthorCreateExercise(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedExercise").(*struct {
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
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	exercise := exerciseModels.Exercise{
		AuthorID:    userID,
		Title:       reqData.Title,
		Description: reqData.Description,
		Difficulty:  reqData.Difficulty,
		StarterCode: reqData.StarterCode,
		IsPublished: true,
	}

	tx := database.Database.Db.Begin()
	if err := tx.Create(&exercise).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create exercise!", nil)
	}
	for i, tc := range reqData.TestCases {
		testCase := exerciseModels.TestCase{
			ExerciseID:     exercise.ID,
			Description:    tc.Description,
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
			Position:       i + 1,
		}
		if err := tx.Create(&testCase).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create test cases!", nil)
		}
	}
	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Exercise created successfully!", exercise)
}

// AuthorUpdateExercise updates exercise fields, including publish state
func AuthorUpdateExercise(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	exerciseID := c.Locals("exerciseID").(int)

	var exercise exerciseModels.Exercise
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", exerciseID, false).First(&exercise).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exercise not found!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if exercise.AuthorID != userID && user.Role != "ADMIN" {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not own this exercise!", nil)
	}

	reqData, ok := c.Locals("validatedExerciseUpdate").(*struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Difficulty  string `json:"difficulty"`
		StarterCode string `json:"starter_code"`
		IsPublished *bool  `json:"is_published"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Update only provided fields
	if reqData.Title != "" {
		exercise.Title = reqData.Title
	}
	if reqData.Description != "" {
		exercise.Description = reqData.Description
	}
	if reqData.Difficulty != "" {
		exercise.Difficulty = reqData.Difficulty
	}
	if reqData.StarterCode != "" {
		exercise.StarterCode = reqData.StarterCode
	}
	if reqData.IsPublished != nil {
		exercise.IsPublished = *reqData.IsPublished
	}

	if err := database.Database.Db.Save(&exercise).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update exercise!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exercise updated successfully!", exercise)
}

// AuthorDeleteExercise soft deletes an exercise and its test cases
func AuthorDeleteExercise(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	exerciseID := c.Locals("exerciseID").(int)

	var exercise exerciseModels.Exercise
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", exerciseID, false).First(&exercise).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Exercise not found!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if exercise.AuthorID != userID && user.Role != "ADMIN" {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not own this exercise!", nil)
	}

	tx := database.Database.Db.Begin()
	if err := tx.Model(&exercise).Update("is_deleted", true).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete exercise!", nil)
	}
	if err := tx.Model(&exerciseModels.TestCase{}).Where("exercise_id = ?", exerciseID).Update("is_deleted", true).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete test cases!", nil)
	}
	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exercise deleted successfully!", nil)
}
