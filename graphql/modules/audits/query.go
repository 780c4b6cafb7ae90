// Package audits defines the GraphQL queries for stored audit reports.
package audits

import (
	"github.com/graphql-go/graphql"

	"github.com/dephealth/dha-backend/database"
)

// GetQueryFields returns the audit queries to be mounted in the root schema
func GetQueryFields(store database.ReportStore) graphql.Fields {
	return graphql.Fields{
		// Single report lookup by identifier
		"audit": &graphql.Field{
			Type: AuditReportType,
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				id := p.Args["id"].(string)
				return ResolveAudit(store, id)
			},
		},
		// Newest-first listing of stored audits
		"audits": &graphql.Field{
			Type: graphql.NewList(AuditSummaryType),
			Args: graphql.FieldConfigArgument{
				"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				limit := p.Args["limit"].(int)
				return ResolveAudits(store, limit)
			},
		},
		// Lowest scoring dependencies of one audit
		"riskiestDependencies": &graphql.Field{
			Type: graphql.NewList(HealthRecordType),
			Args: graphql.FieldConfigArgument{
				"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 10},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				id := p.Args["id"].(string)
				limit := p.Args["limit"].(int)
				return ResolveRiskiestDependencies(store, id, limit)
			},
		},
	}
}
