package backup

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/chubajs/diparser/pkg/config"
	"github.com/chubajs/diparser/pkg/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StartScheduler 启动归档数据库备份调度器
func StartScheduler() (*cron.Cron, error) {
	c := cron.New()

	schedule := config.GlobalConfig.BackupSchedule
	_, err := c.AddFunc(schedule, func() {
		if err := Execute(); err != nil {
			logger.Warn("archive backup failed", zap.Error(err))
		} else {
			logger.Info("archive backup completed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid backup schedule %q: %w", schedule, err)
	}

	c.Start()
	return c, nil
}

// Execute 根据配置执行归档数据库备份
func Execute() error {
	ts := time.Now().Format("20060102_150405")
	switch config.GlobalConfig.DBDriver {
	case "sqlite", "":
		dst := filepath.Join(config.GlobalConfig.BackupPath, fmt.Sprintf("archive_backup_%s.db", ts))
		return backupSQLite(config.GlobalConfig.DSN, dst)
	case "mysql":
		dst := filepath.Join(config.GlobalConfig.BackupPath, fmt.Sprintf("archive_backup_%s.sql", ts))
		return backupMySQL(config.GlobalConfig.DSN, dst)
	default:
		return fmt.Errorf("unsupported DB_DRIVER for backup: %s", config.GlobalConfig.DBDriver)
	}
}

// backupSQLite 文件级拷贝备份
func backupSQLite(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	sourceFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("error opening source file: %w", err)
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("error creating destination file: %w", err)
	}
	defer destFile.Close()

	if _, err = io.Copy(destFile, sourceFile); err != nil {
		return fmt.Errorf("error copying data: %w", err)
	}
	return nil
}

// backupMySQL 使用 mysqldump 备份
func backupMySQL(dsn, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("error creating destination file: %w", err)
	}
	defer out.Close()

	cmd := exec.Command("mysqldump", dsn)
	cmd.Stdout = out
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to backup MySQL database: %w", err)
	}
	return nil
}
