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

// OfferHandlerInterface defines the contract for offer copy handlers
type OfferHandlerInterface interface {
	GenerateOffer(c fiber.Ctx) error
}

// OfferHandler handles AI assisted offer copy HTTP requests
type OfferHandler struct {
	offerFlow businessflow.OfferFlow
	validator *validator.Validate
}

func (h *OfferHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *OfferHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewOfferHandler creates a new offer handler
func NewOfferHandler(offerFlow businessflow.OfferFlow) *OfferHandler {
	return &OfferHandler{
		offerFlow: offerFlow,
		validator: validator.New(),
	}
}

// GenerateOffer produces marketing copy for the requested channel
// @Summary Generate Offer Copy
// @Description Generate channel appropriate offer copy. Falls back to a template when the language model is unavailable.
// @Tags Offers
// @Accept json
// @Produce json
// @Param request body dto.GenerateOfferRequest true "Offer generation parameters"
// @Success 200 {object} dto.APIResponse{data=dto.GenerateOfferResponse} "Offer copy generated successfully"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/ai/offer [post]
func (h *OfferHandler) GenerateOffer(c fiber.Ctx) error {
	var req dto.GenerateOfferRequest
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

	result, err := h.offerFlow.GenerateOffer(h.createRequestContext(c, "/api/v1/ai/offer"), &req, metadata)
	if err != nil {
		if businessflow.IsInvalidCampaignChannel(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Channel must be email or sms", "INVALID_OFFER_CHANNEL", nil)
		}

		log.Printf("Offer generation failed: %v", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Offer generation failed", "OFFER_GENERATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Offer copy generated successfully", result)
}

func (h *OfferHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *OfferHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
