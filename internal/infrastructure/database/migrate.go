package database

import (
	"fmt"

	"gbr-security-service/internal/domain/models"
	"gbr-security-service/pkg/logger"

	"gorm.io/gorm"
)

// Migrate 根据迁移模式更新表结构
// "drop" 删除并重建所有表，其余模式只添加新列和新表
func Migrate(db *gorm.DB, mode string) error {
	if mode == "drop" {
		logger.Warning("在drop模式下运行，将删除并重建所有表")
		if err := db.Migrator().DropTable(&models.Sensor{}, &models.Property{}); err != nil {
			return fmt.Errorf("drop tables: %w", err)
		}
	}

	if err := db.AutoMigrate(&models.Property{}, &models.Sensor{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	logger.Info("Database migration completed (mode=%s)", mode)
	return nil
}
