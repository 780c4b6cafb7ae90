package audits

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/dephealth/dha-backend/model"
	"github.com/dephealth/dha-backend/restapi/modules/github"
	"github.com/dephealth/dha-backend/scoring"
)

// RunAudit encapsulates the core audit pipeline: analyze the manifest's
// merged dependency map, store the report, broadcast its completion. Shared
// by the upload and GitHub handlers to ensure identical behavior.
func RunAudit(ctx context.Context, svc *Service, manifest *model.PackageManifest, source string) (*model.AuditReport, error) {
	records, err := svc.analyzer().AnalyzeAll(ctx, manifest.MergedDependencies())
	if err != nil {
		return nil, err
	}

	report := model.NewAuditReport(source, records)
	if err := svc.Store.Put(ctx, *report); err != nil {
		return nil, fmt.Errorf("store audit: %w", err)
	}

	if svc.Hub != nil {
		svc.Hub.Broadcast(report.Summary())
	}

	return report, nil
}

// PostUploadAudit handles multipart manifest uploads. The package.json goes
// in the "file" form field ("manifest" is accepted as an alias).
func PostUploadAudit(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			fileHeader, err = c.FormFile("manifest")
		}
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "A package.json upload is required in the \"file\" form field",
			})
		}

		f, err := fileHeader.Open()
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Failed to open uploaded file: " + err.Error(),
			})
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Failed to read uploaded file: " + err.Error(),
			})
		}

		manifest, err := model.ParseManifest(data)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid package.json: " + err.Error(),
			})
		}

		return respondWithAudit(c, svc, manifest, model.SourceUpload)
	}
}

// PostGitHubAudit audits the package.json of a GitHub repository given by
// URL, SSH reference or owner/repo shorthand.
func PostGitHubAudit(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req github.AuditRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid request body: " + err.Error(),
			})
		}

		if req.URL == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Repository url is required",
			})
		}

		repo, err := github.ParseRepoURL(req.URL)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": err.Error(),
			})
		}

		data, err := svc.GitHub.FetchManifest(c.Context(), repo, req.Ref)
		if err != nil {
			if errors.Is(err, github.ErrManifestNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"success": false,
					"message": err.Error(),
				})
			}
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"success": false,
				"message": "Failed to fetch manifest: " + err.Error(),
			})
		}

		manifest, err := model.ParseManifest(data)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid package.json in " + repo.Label() + ": " + err.Error(),
			})
		}

		return respondWithAudit(c, svc, manifest, repo.Label())
	}
}

func respondWithAudit(c *fiber.Ctx, svc *Service, manifest *model.PackageManifest, source string) error {
	report, err := RunAudit(c.Context(), svc, manifest, source)
	if err != nil {
		if errors.Is(err, scoring.ErrNoDependencies) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Manifest declares no dependencies",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Audit failed: " + err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(report)
}

// ListAudits returns stored audit summaries, newest first.
func ListAudits(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 20)

		summaries, err := svc.Store.List(c.Context(), limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to list audits: " + err.Error(),
			})
		}
		if summaries == nil {
			summaries = []model.AuditSummary{}
		}

		return c.JSON(summaries)
	}
}

// GetAudit returns one full audit report by identifier.
func GetAudit(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		report, ok, err := svc.Store.Get(c.Context(), c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to load audit: " + err.Error(),
			})
		}
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Audit not found",
			})
		}

		return c.JSON(report)
	}
}

// ExportAudit serves the same report payload as a file download.
func ExportAudit(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		report, ok, err := svc.Store.Get(c.Context(), id)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"message": "Failed to load audit: " + err.Error(),
			})
		}
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"success": false,
				"message": "Audit not found",
			})
		}

		c.Attachment("audit-" + id + ".json")
		return c.JSON(report)
	}
}
