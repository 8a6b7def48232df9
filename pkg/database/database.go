package database

import (
	"fmt"
	"log"

	"github.com/SthembisoGit/Yo-Score-sub002/internal/config"
	"github.com/SthembisoGit/Yo-Score-sub002/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		dbCfg.User,
		dbCfg.Password,
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.DBName,
		dbCfg.Charset,
		dbCfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if !shouldMigrate(cfg.Server.Mode, cfg.ForceMigrate) {
		log.Println("Skipping database migration (release mode, no -migrate flag)")
		return db, nil
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Challenge{},
		&model.TestCase{},
		&model.LanguageBaseline{},
		&model.Submission{},
		&model.JudgeRun{},
		&model.ProctoringSession{},
		&model.ProctoringSnapshot{},
		&model.TrustScore{},
		&model.WorkExperience{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	return db, nil
}

// shouldMigrate gates AutoMigrate: always in debug/test, only on explicit
// request in release mode so production schema changes stay deliberate.
func shouldMigrate(mode string, force bool) bool {
	if force {
		return true
	}
	return mode != "release"
}
