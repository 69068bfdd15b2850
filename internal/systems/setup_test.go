package systems

import (
	"os"
	"testing"

	"cogsguard-agent/pkg/logger"
)

func TestMain(m *testing.M) {
	// Глобальный логгер нужен до запуска тестов
	logger.Init()

	os.Exit(m.Run())
}
