package engine_test

import (
	"os"
	"testing"

	"cogsguard-agent/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}
