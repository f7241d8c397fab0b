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

// AuthHandlerInterface defines the contract for identity handlers
type AuthHandlerInterface interface {
	CheckEmail(c fiber.Ctx) error
}

// AuthHandler handles identity related HTTP requests
type AuthHandler struct {
	authFlow  businessflow.AuthFlow
	validator *validator.Validate
}

func (h *AuthHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AuthHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authFlow businessflow.AuthFlow) *AuthHandler {
	return &AuthHandler{
		authFlow:  authFlow,
		validator: validator.New(),
	}
}

// CheckEmail reports whether an account already exists for an email
// @Summary Check Email
// @Description Check against the identity provider whether an account exists for the given email
// @Tags Auth
// @Produce json
// @Param email query string true "Email to check"
// @Success 200 {object} dto.APIResponse{data=dto.CheckEmailResponse} "Email checked successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Router /api/v1/auth/check-email [get]
func (h *AuthHandler) CheckEmail(c fiber.Ctx) error {
	req := dto.CheckEmailRequest{
		Email: c.Query("email"),
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

	result, err := h.authFlow.CheckEmail(h.createRequestContext(c, "/api/v1/auth/check-email"), &req, metadata)
	if err != nil {
		log.Printf("Email check failed: %v", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Email check failed", "EMAIL_CHECK_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Email checked successfully", result)
}

func (h *AuthHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *AuthHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
