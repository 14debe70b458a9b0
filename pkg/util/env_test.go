package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("UTIL_TEST_STR", "hello")
	t.Setenv("UTIL_TEST_INT", "42")
	t.Setenv("UTIL_TEST_BOOL", "true")
	t.Setenv("UTIL_TEST_FLOAT", "0.00025")
	t.Setenv("UTIL_TEST_MS", "3000")

	assert.Equal(t, "hello", GetEnv("UTIL_TEST_STR"))
	assert.Equal(t, "hello", GetEnvDefault("UTIL_TEST_STR", "def"))
	assert.Equal(t, "def", GetEnvDefault("UTIL_TEST_MISSING", "def"))
	assert.Equal(t, int64(42), GetIntEnv("UTIL_TEST_INT"))
	assert.True(t, GetBoolEnv("UTIL_TEST_BOOL"))
	assert.Equal(t, 0.00025, GetFloatEnvDefault("UTIL_TEST_FLOAT", 1))
	assert.Equal(t, 0.5, GetFloatEnvDefault("UTIL_TEST_MISSING", 0.5))
	assert.Equal(t, 3*time.Second, GetDurationEnv("UTIL_TEST_MS", time.Minute))
	assert.Equal(t, time.Minute, GetDurationEnv("UTIL_TEST_MISSING", time.Minute))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	content := "# 注释行\n" +
		"PLAIN_KEY=plain\n" +
		"QUOTED_KEY=\"quoted value\"\n" +
		"export EXPORTED_KEY=exported\n" +
		"EXISTING_KEY=from_file\n" +
		"malformed line without equals\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte(content), 0o644))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(cwd) })

	for _, key := range []string{"PLAIN_KEY", "QUOTED_KEY", "EXPORTED_KEY"} {
		os.Unsetenv(key)
		t.Cleanup(func() { os.Unsetenv(key) })
	}
	t.Setenv("EXISTING_KEY", "from_process")

	require.NoError(t, LoadEnv("test"))

	assert.Equal(t, "plain", os.Getenv("PLAIN_KEY"))
	assert.Equal(t, "quoted value", os.Getenv("QUOTED_KEY"))
	assert.Equal(t, "exported", os.Getenv("EXPORTED_KEY"))
	// 进程环境变量优先于文件
	assert.Equal(t, "from_process", os.Getenv("EXISTING_KEY"))
}

func TestLoadEnvMissingFile(t *testing.T) {
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(cwd) })

	assert.Error(t, LoadEnv("nope"))
}
