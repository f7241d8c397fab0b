package router

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavolo/tavolo/app/middleware"
)

// noopHandlers satisfies every handler interface so route registration can
// be exercised without a database.
type noopHandlers struct{}

func (noopHandlers) CheckEmail(c fiber.Ctx) error           { return c.SendStatus(fiber.StatusOK) }
func (noopHandlers) GetRestaurant(c fiber.Ctx) error        { return c.SendStatus(fiber.StatusOK) }
func (noopHandlers) UpsertRestaurant(c fiber.Ctx) error     { return c.SendStatus(fiber.StatusOK) }
func (noopHandlers) DeleteAccount(c fiber.Ctx) error        { return c.SendStatus(fiber.StatusOK) }
func (noopHandlers) SearchDiners(c fiber.Ctx) error         { return c.SendStatus(fiber.StatusOK) }
func (noopHandlers) GetFilterOptions(c fiber.Ctx) error     { return c.SendStatus(fiber.StatusOK) }
func (noopHandlers) CreateCampaign(c fiber.Ctx) error       { return c.SendStatus(fiber.StatusOK) }
func (noopHandlers) ListCampaigns(c fiber.Ctx) error        { return c.SendStatus(fiber.StatusOK) }
func (noopHandlers) GetCampaign(c fiber.Ctx) error          { return c.SendStatus(fiber.StatusOK) }
func (noopHandlers) UpdateCampaignStatus(c fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
func (noopHandlers) DeleteCampaign(c fiber.Ctx) error       { return c.SendStatus(fiber.StatusOK) }
func (noopHandlers) ExportCampaign(c fiber.Ctx) error       { return c.SendStatus(fiber.StatusOK) }
func (noopHandlers) GenerateOffer(c fiber.Ctx) error        { return c.SendStatus(fiber.StatusOK) }

func newTestRouter() Router {
	h := noopHandlers{}
	r := NewFiberRouter(h, h, h, h, h, middleware.NewAuthMiddleware(nil))
	r.SetupRoutes()
	return r
}

func TestHealthRoute(t *testing.T) {
	r := newTestRouter()

	t.Run("RootPath", func(t *testing.T) {
		resp, err := r.GetApp().Test(httptest.NewRequest("GET", "/health", nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("NotUnderVersionedPrefix", func(t *testing.T) {
		resp, err := r.GetApp().Test(httptest.NewRequest("GET", "/api/v1/health", nil))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}
