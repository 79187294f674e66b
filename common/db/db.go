package db

import (
	"database/sql"
	"fmt"

	"github.com/juju/errors"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/KB-iGOT/cb-external-enrollment-service/common/config"
)

func ConnString(c config.DBConfig) string {
	return fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=%s sslmode=disable", c.User, c.Password, c.Name, c.Host, c.Port)
}

func InitDB(c config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", ConnString(c))
	if err != nil {
		return nil, errors.Trace(err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, errors.Annotatef(err, "pinging postgres at %s:%s", c.Host, c.Port)
	}

	return db, nil
}

// OpenGorm puts a gorm handle on top of an already opened postgres pool so
// migrations and repositories share the same connections.
func OpenGorm(sqlDB *sql.DB) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, errors.Trace(err)
	}

	return gdb, nil
}
