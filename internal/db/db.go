package db

import (
	"log"

	"burrow/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init(dsn string) {
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=burrow port=5432 sslmode=disable"
	}

	var err error
	// TranslateError turns unique index violations into gorm.ErrDuplicatedKey,
	// which the vote upsert path relies on.
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	if err := Migrate(DB); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")
}

// Migrate creates or updates the schema for every model. Shared with the
// test suite, which runs it against SQLite.
func Migrate(database *gorm.DB) error {
	return database.AutoMigrate(
		&models.User{},
		&models.Thread{},
		&models.Comment{},
		&models.ThreadVote{},
		&models.CommentVote{},
		&models.Announcement{},
	)
}
