package database

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/arangodb/go-driver/v2/connection"
	"github.com/cenkalti/backoff"

	"github.com/dephealth/dha-backend/model"
)

const (
	databaseName    = "depaudit"
	auditCollection = "audit"
)

// DBConnection is the structure that defined the database engine and collections
type DBConnection struct {
	Collections map[string]arangodb.Collection
	Database    arangodb.Database
}

// Define a struct to hold the index definition
type indexConfig struct {
	Collection string
	IdxName    string
	IdxField   string
}

var initDone = false          // has the data been initialized
var dbConnection DBConnection // database connection definition

func dbConnectionConfig(endpoint connection.Endpoint, dbuser string, dbpass string) connection.HttpConfiguration {
	return connection.HttpConfiguration{
		Authentication: connection.NewBasicAuth(dbuser, dbpass),
		Endpoint:       endpoint,
		ContentType:    connection.ApplicationJSON,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: true, // #nosec G402
			},
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 90 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// InitializeDatabase is the function for connecting to the db engine, creating the database and collections
func InitializeDatabase() DBConnection {
	const initialInterval = 10 * time.Second
	const maxInterval = 2 * time.Minute

	var db arangodb.Database
	var collections map[string]arangodb.Collection

	ctx := context.Background()

	if initDone {
		return dbConnection
	}

	False := false
	dbhost := GetEnvDefault("ARANGO_HOST", "localhost")
	dbport := GetEnvDefault("ARANGO_PORT", "8529")
	dbuser := GetEnvDefault("ARANGO_USER", "root")
	dbpass := GetEnvDefault("ARANGO_PASS", "mypassword")
	dburl := GetEnvDefault("ARANGO_URL", "http://"+dbhost+":"+dbport)

	var client arangodb.Client

	//
	// Database connection with backoff retry
	//

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialInterval
	bo.MaxInterval = maxInterval
	bo.MaxElapsedTime = 0 // Set to 0 for indefinite retries

	err := backoff.RetryNotify(func() error {
		endpoint := connection.NewRoundRobinEndpoints([]string{dburl})
		conn := connection.NewHttpConnection(dbConnectionConfig(endpoint, dbuser, dbpass))

		client = arangodb.NewClient(conn)

		versionInfo, err := client.Version(context.Background())
		if err != nil {
			return err
		}

		logger.Sugar().Infof("Database has version '%s' and license '%s'\n", versionInfo.Version, versionInfo.License)
		return nil

	}, bo, func(err error, _ time.Duration) {
		logger.Sugar().Infof("Retrying connection to ArangoDB: %v", err)
	})

	if err != nil {
		logger.Sugar().Fatalf("Backoff Error %v\n", err)
	}

	//
	// Database creation
	//

	exists := false
	dblist, _ := client.Databases(ctx)

	for _, dbinfo := range dblist {
		if dbinfo.Name() == databaseName {
			exists = true
			break
		}
	}

	if exists {
		var options arangodb.GetDatabaseOptions
		if db, err = client.GetDatabase(ctx, databaseName, &options); err != nil {
			logger.Sugar().Fatalf("Failed to get Database: %v", err)
		}
	} else {
		if db, err = client.CreateDatabase(ctx, databaseName, nil); err != nil {
			logger.Sugar().Fatalf("Failed to create Database: %v", err)
		}
	}

	//
	// Collection creation for document storage
	//

	collections = make(map[string]arangodb.Collection)
	collectionNames := []string{auditCollection}

	for _, collectionName := range collectionNames {
		var col arangodb.Collection

		exists, _ = db.CollectionExists(ctx, collectionName)
		if exists {
			var options arangodb.GetCollectionOptions
			if col, err = db.GetCollection(ctx, collectionName, &options); err != nil {
				logger.Sugar().Fatalf("Failed to use collection: %v", err)
			}
		} else {
			if col, err = db.CreateCollection(ctx, collectionName, nil); err != nil {
				logger.Sugar().Fatalf("Failed to create collection: %v", err)
			}
		}

		collections[collectionName] = col
	}

	//
	// Index creation
	//

	idxList := []indexConfig{
		{Collection: auditCollection, IdxName: "audit_id", IdxField: "audit_id"},
		{Collection: auditCollection, IdxName: "audit_created_at", IdxField: "created_at"},
		{Collection: auditCollection, IdxName: "audit_source", IdxField: "source"},
	}

	for _, idx := range idxList {
		found := false

		if indexes, err := collections[idx.Collection].Indexes(ctx); err == nil {
			for _, index := range indexes {
				if idx.IdxName == index.Name {
					found = true
					break
				}
			}
		}

		if !found {
			indexOptions := arangodb.CreatePersistentIndexOptions{
				Unique: &False,
				Sparse: &False,
				Name:   idx.IdxName,
			}

			_, _, err = collections[idx.Collection].EnsurePersistentIndex(ctx, []string{idx.IdxField}, &indexOptions)
			if err != nil {
				logger.Sugar().Fatalln("Error creating index:", err)
			} else {
				logger.Sugar().Infof("Created index: %s on %s.%s", idx.IdxName, idx.Collection, idx.IdxField)
			}
		}
	}

	dbConnection = DBConnection{Collections: collections, Database: db}
	initDone = true

	return dbConnection
}

// ArangoStore backs the report store with an ArangoDB collection. Selecting
// this backing does not add durability guarantees to the product contract;
// it only substitutes where the reports live.
type ArangoStore struct {
	conn DBConnection
}

// NewArangoStore connects to ArangoDB (retrying until reachable) and ensures
// the audit database, collection and indexes exist.
func NewArangoStore() *ArangoStore {
	return &ArangoStore{conn: InitializeDatabase()}
}

// Put stores a report as one audit document.
func (s *ArangoStore) Put(ctx context.Context, report model.AuditReport) error {
	if _, err := s.conn.Collections[auditCollection].CreateDocument(ctx, report); err != nil {
		return fmt.Errorf("store audit %s: %w", report.ID, err)
	}
	return nil
}

// Get looks a report up by audit identifier.
func (s *ArangoStore) Get(ctx context.Context, id string) (model.AuditReport, bool, error) {
	query := `FOR a IN audit FILTER a.audit_id == @id LIMIT 1 RETURN a`

	cursor, err := s.conn.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{
			"id": id,
		},
	})
	if err != nil {
		return model.AuditReport{}, false, fmt.Errorf("query audit %s: %w", id, err)
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return model.AuditReport{}, false, nil
	}

	var report model.AuditReport
	if _, err := cursor.ReadDocument(ctx, &report); err != nil {
		return model.AuditReport{}, false, fmt.Errorf("read audit %s: %w", id, err)
	}

	return report, true, nil
}

// List returns report summaries newest first. A limit below 1 returns all.
func (s *ArangoStore) List(ctx context.Context, limit int) ([]model.AuditSummary, error) {
	query := `FOR a IN audit SORT a.created_at DESC RETURN a`
	bindVars := map[string]interface{}{}

	if limit > 0 {
		query = `FOR a IN audit SORT a.created_at DESC LIMIT @limit RETURN a`
		bindVars["limit"] = limit
	}

	cursor, err := s.conn.Database.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
	if err != nil {
		return nil, fmt.Errorf("list audits: %w", err)
	}
	defer cursor.Close()

	var summaries []model.AuditSummary
	for cursor.HasMore() {
		var report model.AuditReport
		if _, err := cursor.ReadDocument(ctx, &report); err != nil {
			continue
		}
		summaries = append(summaries, report.Summary())
	}

	return summaries, nil
}
