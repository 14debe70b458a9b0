package util

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// LoadEnv 按环境加载 .env 文件（.env.development / .env.production），缺省回退 .env
func LoadEnv(env string) error {
	candidates := []string{".env"}
	if env != "" {
		candidates = []string{fmt.Sprintf(".env.%s", env), ".env"}
	}
	for _, path := range candidates {
		if fi, err := os.Stat(path); err != nil || fi.IsDir() {
			continue
		}
		if err := loadEnvFile(path); err != nil {
			return err
		}
		return nil
	}
	return fmt.Errorf("no env file found for %q", env)
}

func loadEnvFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scan := bufio.NewScanner(f)
	for scan.Scan() {
		line := strings.TrimSpace(scan.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		if len(val) >= 2 && (val[0] == '"' && val[len(val)-1] == '"' || val[0] == '\'' && val[len(val)-1] == '\'') {
			val = val[1 : len(val)-1]
		}
		// 已有的进程环境变量优先
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, val)
		}
	}
	return scan.Err()
}

// GetEnv 获取字符串环境变量
func GetEnv(key string) string {
	return os.Getenv(key)
}

// GetEnvDefault 获取字符串环境变量，为空时返回默认值
func GetEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// GetIntEnv 获取整型环境变量
func GetIntEnv(key string) int64 {
	return cast.ToInt64(os.Getenv(key))
}

// GetBoolEnv 获取布尔环境变量
func GetBoolEnv(key string) bool {
	return cast.ToBool(os.Getenv(key))
}

// GetFloatEnvDefault 获取浮点环境变量，未设置时返回默认值
func GetFloatEnvDefault(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		return cast.ToFloat64(v)
	}
	return def
}

// GetDurationEnv 获取时长环境变量（毫秒数值），为 0 时返回默认值
func GetDurationEnv(key string, def time.Duration) time.Duration {
	if ms := cast.ToInt64(os.Getenv(key)); ms > 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return def
}
