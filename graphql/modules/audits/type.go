// Package audits defines the GraphQL types for audit reports.
package audits

import (
	"github.com/graphql-go/graphql"
)

// HealthRecordType represents one scored dependency within an audit
var HealthRecordType = graphql.NewObject(graphql.ObjectConfig{
	Name: "HealthRecord",
	Fields: graphql.Fields{
		"dependency":     &graphql.Field{Type: graphql.String},
		"version":        &graphql.Field{Type: graphql.String},
		"license":        &graphql.Field{Type: graphql.String},
		"last_release":   &graphql.Field{Type: graphql.String},
		"health_score":   &graphql.Field{Type: graphql.Float},
		"maintainers":    &graphql.Field{Type: graphql.Int},
		"downloads":      &graphql.Field{Type: graphql.Int},
		"repository":     &graphql.Field{Type: graphql.String},
		"purl":           &graphql.Field{Type: graphql.String},
		"latest_version": &graphql.Field{Type: graphql.String},
		"outdated":       &graphql.Field{Type: graphql.Boolean},
		"advisories":     &graphql.Field{Type: graphql.NewList(graphql.String)},
		"error":          &graphql.Field{Type: graphql.String},
	},
})

// AuditReportType represents a full stored audit including its records
var AuditReportType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AuditReport",
	Fields: graphql.Fields{
		"audit_id":           &graphql.Field{Type: graphql.String},
		"created_at":         &graphql.Field{Type: graphql.DateTime},
		"source":             &graphql.Field{Type: graphql.String},
		"total_dependencies": &graphql.Field{Type: graphql.Int},
		"records":            &graphql.Field{Type: graphql.NewList(HealthRecordType)},
	},
})

// AuditSummaryType represents the listing projection of a stored audit
var AuditSummaryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AuditSummary",
	Fields: graphql.Fields{
		"audit_id":           &graphql.Field{Type: graphql.String},
		"created_at":         &graphql.Field{Type: graphql.DateTime},
		"source":             &graphql.Field{Type: graphql.String},
		"total_dependencies": &graphql.Field{Type: graphql.Int},
		"mean_score":         &graphql.Field{Type: graphql.Float},
	},
})
