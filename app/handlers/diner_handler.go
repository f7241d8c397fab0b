// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/tavolo/tavolo/app/dto"
	businessflow "github.com/tavolo/tavolo/business_flow"
	"github.com/tavolo/tavolo/utils"
)

// DinerHandlerInterface defines the contract for diner directory handlers
type DinerHandlerInterface interface {
	SearchDiners(c fiber.Ctx) error
	GetFilterOptions(c fiber.Ctx) error
}

// DinerHandler handles diner directory HTTP requests
type DinerHandler struct {
	dinerFlow businessflow.DinerFlow
	validator *validator.Validate
}

func (h *DinerHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *DinerHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewDinerHandler creates a new diner handler
func NewDinerHandler(dinerFlow businessflow.DinerFlow) *DinerHandler {
	return &DinerHandler{
		dinerFlow: dinerFlow,
		validator: validator.New(),
	}
}

// SearchDiners runs a structured search over the diner directory
// @Summary Search Diners
// @Description Search the shared diner directory with structured filters. Contact details are never returned.
// @Tags Diners
// @Produce json
// @Param city query string false "City substring filter"
// @Param state query string false "Two letter state code"
// @Param interests query string false "Comma separated interest list"
// @Param match query string false "Interest match mode: any or all"
// @Param seniority query string false "Comma separated seniority tiers"
// @Param channel query string false "Restrict to diners eligible for a channel: email or sms"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.SearchDinersResponse} "Diners retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Validation error or invalid filter"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/diners [get]
func (h *DinerHandler) SearchDiners(c fiber.Ctx) error {
	req, err := parseSearchDinersQuery(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_REQUEST", nil)
	}

	// Validate request
	if err := h.validator.Struct(req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))

	result, err := h.dinerFlow.SearchDiners(h.createRequestContext(c, "/api/v1/diners"), req, metadata)
	if err != nil {
		if businessflow.IsInvalidSeniority(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Unknown seniority value", "INVALID_SENIORITY", nil)
		}
		if businessflow.IsInvalidMatchMode(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Match must be any or all", "INVALID_MATCH_MODE", nil)
		}
		if businessflow.IsInvalidCampaignChannel(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Channel must be email or sms", "INVALID_CHANNEL", nil)
		}
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_PAGINATION", nil)
		}

		log.Printf("Diner search failed: %v", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Diner search failed", "DINER_SEARCH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Diners retrieved successfully", result)
}

func parseSearchDinersQuery(c fiber.Ctx) (*dto.SearchDinersRequest, error) {
	var req dto.SearchDinersRequest

	if city := strings.TrimSpace(c.Query("city")); city != "" {
		req.City = &city
	}
	if state := strings.TrimSpace(c.Query("state")); state != "" {
		req.State = &state
	}
	req.Interests = splitQueryList(c.Query("interests"))
	req.Match = strings.TrimSpace(c.Query("match"))
	req.Seniority = splitQueryList(c.Query("seniority"))
	req.Channel = strings.TrimSpace(c.Query("channel"))

	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("page must be an integer")
		}
		req.Page = page
	}
	if raw := c.Query("pageSize"); raw != "" {
		pageSize, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("pageSize must be an integer")
		}
		req.PageSize = pageSize
	}

	return &req, nil
}

func splitQueryList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// GetFilterOptions returns the distinct values usable in search filters
// @Summary Get Filter Options
// @Description List the distinct cities, states, interests and seniority tiers present in the directory
// @Tags Diners
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.FilterOptionsResponse} "Filter options retrieved successfully"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/diners/filter-options [get]
func (h *DinerHandler) GetFilterOptions(c fiber.Ctx) error {
	result, err := h.dinerFlow.GetFilterOptions(h.createRequestContext(c, "/api/v1/diners/filter-options"))
	if err != nil {
		log.Printf("Getting filter options failed: %v", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get filter options", "GET_FILTER_OPTIONS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Filter options retrieved successfully", result)
}

func (h *DinerHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *DinerHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
