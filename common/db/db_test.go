package db

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KB-iGOT/cb-external-enrollment-service/common/config"
)

func TestConnString(t *testing.T) {
	c := config.DBConfig{User: "cios", Password: "secret", Name: "sunbird", Host: "localhost", Port: "5432"}

	assert.Equal(t, "user=cios password=secret dbname=sunbird host=localhost port=5432 sslmode=disable", ConnString(c))
}
