package config

import (
	"errors"

	"github.com/twissamodiofficial/MediQuery-Assist/internal/models"
)

// MigratePostgres creates the durable tables and the pgvector extension.
// Safe to run on every boot.
func MigratePostgres() error {
	if PostgresDB == nil {
		return errors.New("PostgresDB is nil; call InitPostgres() first")
	}

	if err := PostgresDB.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return err
	}

	return PostgresDB.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.DocumentChunk{},
		&models.DocumentClassification{},
	)
}
