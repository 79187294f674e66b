package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/gocql/gocql"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/cassandra"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/KB-iGOT/cb-external-enrollment-service/common/cassandra"
	"github.com/KB-iGOT/cb-external-enrollment-service/common/config"
	"github.com/KB-iGOT/cb-external-enrollment-service/common/db"
)

const defaultMigrationsPath = "enrollment/cmd/migrate/migrations"

func main() {
	config.LoadEnvFile()

	path := os.Getenv("MIGRATIONS_PATH")
	if path == "" {
		path = defaultMigrationsPath
	}

	migratePostgres(config.LoadDBConfig(), path+"/postgres")
	migrateCassandra(config.LoadCassandraConfig(), path+"/cassandra")
}

func migratePostgres(c config.DBConfig, path string) {
	sqlDB, err := db.InitDB(c)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer sqlDB.Close()

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		log.Fatalf("postgres driver: %v", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+path, c.Name, driver)
	if err != nil {
		log.Fatalf("postgres migrations: %v", err)
	}

	up(m, "postgres")
}

func migrateCassandra(c config.CassandraConfig, path string) {
	if err := bootstrapKeyspace(c); err != nil {
		log.Fatalf("cassandra keyspace: %v", err)
	}

	dsn := fmt.Sprintf("cassandra://%s/%s?consistency=%s&x-multi-statement=true", c.Hosts[0], c.Keyspace, c.Consistency)

	m, err := migrate.New("file://"+path, dsn)
	if err != nil {
		log.Fatalf("cassandra migrations: %v", err)
	}

	up(m, "cassandra")
}

// bootstrapKeyspace creates the keyspace the migration driver connects to.
func bootstrapKeyspace(c config.CassandraConfig) error {
	cluster := gocql.NewCluster(c.Hosts...)
	cluster.Keyspace = "system"

	session, err := cluster.CreateSession()
	if err != nil {
		return err
	}
	defer session.Close()

	return cassandra.CreateKeyspace(session, c.Keyspace, c.ReplicationFactor)
}

func up(m *migrate.Migrate, name string) {
	defer m.Close()

	err := m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("%s migrations: %v", name, err)
	}

	log.Printf("%s schema up to date", name)
}
