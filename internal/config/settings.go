package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// PoolSettings are the pool knobs that can be changed at runtime through the
// management API.
type PoolSettings struct {
	LoginTimeoutMinutes  int    `json:"loginTimeoutMinutes"`
	InfoThresholdMinutes int    `json:"infoThresholdMinutes"`
	Debug                string `json:"debug"`
}

var settingsMu sync.RWMutex

// GetPoolSettings returns the current settings from the loaded config.
func GetPoolSettings() PoolSettings {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	cfg := Get()
	return PoolSettings{
		LoginTimeoutMinutes:  cfg.LoginTimeoutMinutes,
		InfoThresholdMinutes: cfg.InfoThresholdMinutes,
		Debug:                cfg.Debug,
	}
}

// UpdatePoolSettings validates s, applies it to the in-memory config and
// writes it back to the .env file.
func UpdatePoolSettings(s PoolSettings) error {
	if s.LoginTimeoutMinutes <= 0 || s.InfoThresholdMinutes <= 0 {
		return errors.New("超时时间必须大于 0")
	}
	debug := strings.ToLower(strings.TrimSpace(s.Debug))
	if debug != "off" && debug != "low" && debug != "high" {
		debug = "off"
	}

	settingsMu.Lock()
	defer settingsMu.Unlock()

	cfg := Get()
	cfg.LoginTimeoutMinutes = s.LoginTimeoutMinutes
	cfg.InfoThresholdMinutes = s.InfoThresholdMinutes
	cfg.Debug = debug

	updates := map[string]string{
		"LOGIN_TIMEOUT":  strconv.Itoa(s.LoginTimeoutMinutes),
		"INFO_THRESHOLD": strconv.Itoa(s.InfoThresholdMinutes),
		"DEBUG":          debug,
	}
	for k, v := range updates {
		_ = os.Setenv(k, v)
	}
	return updateDotEnvFile(updates)
}

// updateDotEnvFile rewrites the given keys in place and appends missing ones.
func updateDotEnvFile(updates map[string]string) error {
	dotEnvPath, ok := findDotEnvPath()
	if !ok {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("无法获取工作目录: %w", err)
		}
		dotEnvPath = filepath.Join(cwd, ".env")
	}

	lines, err := readDotEnvLines(dotEnvPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("无法读取 .env 文件: %w", err)
	}

	updatedKeys := make(map[string]bool)
	for i, line := range lines {
		key, _, ok := parseDotEnvLine(line)
		if !ok {
			continue
		}
		if newValue, exists := updates[key]; exists {
			lines[i] = formatEnvLine(key, newValue)
			updatedKeys[key] = true
		}
	}

	for key, value := range updates {
		if !updatedKeys[key] {
			lines = append(lines, formatEnvLine(key, value))
		}
	}

	return writeDotEnvFile(dotEnvPath, lines)
}

func readDotEnvLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// formatEnvLine quotes values containing whitespace or quotes.
func formatEnvLine(key, value string) string {
	if strings.ContainsAny(value, " \t\"'") || value == "" {
		return fmt.Sprintf("%s=\"%s\"", key, value)
	}
	return fmt.Sprintf("%s=%s", key, value)
}

func writeDotEnvFile(path string, lines []string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("无法写入 .env 文件: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, line := range lines {
		if _, err := writer.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return writer.Flush()
}
