// Package restapi provides the main router and initialization for REST API endpoints.
package restapi

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/graphql-go/graphql"

	"github.com/dephealth/dha-backend/events"
	"github.com/dephealth/dha-backend/restapi/modules/audits"
)

// SetupRoutes configures all REST API routes, the GraphQL endpoint and the
// audit event stream. CORS is handled globally in internal/api/fiber.go.
func SetupRoutes(app *fiber.App, svc *audits.Service, hub *events.Hub, schema graphql.Schema) {

	// API Group /api/v1
	api := app.Group("/api/v1")

	// GraphQL Route - Mounted within the api group to inherit path prefixes
	api.Post("/graphql", GraphQLHandler(schema))

	// Audit Routes
	api.Post("/audits/upload", audits.PostUploadAudit(svc))
	api.Post("/audits/github", audits.PostGitHubAudit(svc))
	api.Get("/audits", audits.ListAudits(svc))

	// Event stream. Registered before the :id routes so "events" is not
	// captured as an audit id, and gated on a websocket upgrade request.
	api.Use("/audits/events", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	api.Get("/audits/events", hub.Handler())

	api.Get("/audits/:id", audits.GetAudit(svc))
	api.Get("/audits/:id/export", audits.ExportAudit(svc))

	log.Println("API routes initialized successfully")
}
