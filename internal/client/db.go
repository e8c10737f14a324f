package client

import (
	"log"
	"time"

	"github.com/Aazukvid2000/Pyxolotl/internal/model"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func InitMysqlClient(databaseURL string) *gorm.DB {
	var err error
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal(err)
	}

	// Connection pool (catalog browsing is read heavy)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&model.User{},
		&model.VerificationToken{},
		&model.Game{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderLine{},
		&model.LibraryItem{},
		&model.Review{},
		&model.DownloadLog{},
	); err != nil {
		log.Fatal(err)
	}

	return db
}
