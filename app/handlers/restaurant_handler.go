// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/tavolo/tavolo/app/dto"
	businessflow "github.com/tavolo/tavolo/business_flow"
	"github.com/tavolo/tavolo/utils"
)

// RestaurantHandlerInterface defines the contract for restaurant profile handlers
type RestaurantHandlerInterface interface {
	GetRestaurant(c fiber.Ctx) error
	UpsertRestaurant(c fiber.Ctx) error
	DeleteAccount(c fiber.Ctx) error
}

// RestaurantHandler handles restaurant profile HTTP requests
type RestaurantHandler struct {
	restaurantFlow businessflow.RestaurantFlow
	validator      *validator.Validate
}

func (h *RestaurantHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *RestaurantHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewRestaurantHandler creates a new restaurant handler
func NewRestaurantHandler(restaurantFlow businessflow.RestaurantFlow) *RestaurantHandler {
	return &RestaurantHandler{
		restaurantFlow: restaurantFlow,
		validator:      validator.New(),
	}
}

// GetRestaurant returns the authenticated owner's restaurant profile
// @Summary Get Restaurant Profile
// @Description Get the restaurant profile owned by the authenticated user
// @Tags Restaurants
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.RestaurantResponse} "Restaurant retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "No restaurant profile yet"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/me/restaurant [get]
func (h *RestaurantHandler) GetRestaurant(c fiber.Ctx) error {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	ownerUserID, ok := c.Locals("owner_user_id").(string)
	if !ok || ownerUserID == "" {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Owner ID not found in context", "MISSING_OWNER_ID", nil)
	}

	result, err := h.restaurantFlow.GetRestaurant(h.createRequestContext(c, "/api/v1/me/restaurant"), ownerUserID, metadata)
	if err != nil {
		if businessflow.IsRestaurantNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Restaurant profile not found", "RESTAURANT_NOT_FOUND", nil)
		}

		log.Printf("Getting restaurant failed: %v", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get restaurant", "GET_RESTAURANT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Restaurant retrieved successfully", result)
}

// UpsertRestaurant creates or replaces the owner's restaurant profile
// @Summary Upsert Restaurant Profile
// @Description Create the restaurant profile on first call and update it on later calls. Each owner has exactly one profile.
// @Tags Restaurants
// @Accept json
// @Produce json
// @Param request body dto.UpsertRestaurantRequest true "Restaurant profile data"
// @Success 200 {object} dto.APIResponse{data=dto.RestaurantResponse} "Restaurant saved successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/me/restaurant [put]
func (h *RestaurantHandler) UpsertRestaurant(c fiber.Ctx) error {
	var req dto.UpsertRestaurantRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	// Validate request
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	ownerUserID, ok := c.Locals("owner_user_id").(string)
	if !ok || ownerUserID == "" {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Owner ID not found in context", "MISSING_OWNER_ID", nil)
	}
	req.OwnerUserID = ownerUserID

	result, err := h.restaurantFlow.UpsertRestaurant(h.createRequestContext(c, "/api/v1/me/restaurant"), &req, metadata)
	if err != nil {
		if businessflow.IsRestaurantNameRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Restaurant name is required", "RESTAURANT_NAME_REQUIRED", nil)
		}

		log.Printf("Saving restaurant failed: %v", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save restaurant", "SAVE_RESTAURANT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Restaurant saved successfully", result)
}

// DeleteAccount removes the owner's restaurant together with its campaigns
// @Summary Delete Account Data
// @Description Delete the restaurant profile, all of its campaigns and their recipients
// @Tags Restaurants
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.DeleteAccountResponse} "Account data deleted successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "No restaurant profile yet"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/me/delete-account [delete]
func (h *RestaurantHandler) DeleteAccount(c fiber.Ctx) error {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	ownerUserID, ok := c.Locals("owner_user_id").(string)
	if !ok || ownerUserID == "" {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Owner ID not found in context", "MISSING_OWNER_ID", nil)
	}

	result, err := h.restaurantFlow.DeleteAccount(h.createRequestContext(c, "/api/v1/me/delete-account"), ownerUserID, metadata)
	if err != nil {
		if businessflow.IsRestaurantNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Restaurant profile not found", "RESTAURANT_NOT_FOUND", nil)
		}

		log.Printf("Deleting account data failed: %v", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete account data", "DELETE_ACCOUNT_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

func (h *RestaurantHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *RestaurantHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
