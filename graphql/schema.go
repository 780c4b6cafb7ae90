// Package graphql assembles the root query schema served at /api/v1/graphql.
package graphql

import (
	gql "github.com/graphql-go/graphql"

	"github.com/dephealth/dha-backend/database"
	"github.com/dephealth/dha-backend/graphql/modules/audits"
)

var store database.ReportStore

// InitStore sets the report store consumed by all resolvers. Must be called
// before CreateSchema.
func InitStore(s database.ReportStore) {
	store = s
}

// CreateSchema builds the root GraphQL schema from the module query fields.
func CreateSchema() (gql.Schema, error) {
	fields := gql.Fields{}
	for name, field := range audits.GetQueryFields(store) {
		fields[name] = field
	}

	return gql.NewSchema(gql.SchemaConfig{
		Query: gql.NewObject(gql.ObjectConfig{
			Name:   "RootQuery",
			Fields: fields,
		}),
	})
}
