package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log является глобальным экземпляром логгера для всего приложения.
// До вызова Init пишет в stderr с уровнем info, чтобы пакеты можно было
// использовать из тестов без явной инициализации.
var Log = logrus.New()

// Init инициализирует глобальный логгер из переменных окружения.
// Эта функция должна быть вызвана один раз при старте приложения в main.go.
func Init() {
	Configure("", "")
}

// Configure применяет уровень и формат из конфига.
// Переменные окружения LOG_LEVEL и LOG_FORMAT имеют приоритет над аргументами.
func Configure(level, format string) {
	Log = logrus.New()

	// 1. Уровень логирования. По умолчанию - "info", для отладки тиков - "debug".
	if env, ok := os.LookupEnv("LOG_LEVEL"); ok {
		level = env
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	Log.SetLevel(parsed)

	// 2. Форматтер.
	// "json" - для сбора логов с прогонов эпизодов.
	// "text" - для удобной разработки.
	if env, ok := os.LookupEnv("LOG_FORMAT"); ok {
		format = env
	}
	if strings.ToLower(format) == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
	}

	// 3. Пишем в стандартный вывод.
	Log.SetOutput(os.Stdout)
}

// SetOutput перенаправляет вывод (тесты пишут в буфер или io.Discard).
func SetOutput(w io.Writer) {
	Log.SetOutput(w)
}

// ForAgent возвращает запись логгера с меткой агента.
func ForAgent(agentID int) *logrus.Entry {
	return Log.WithField("agent", agentID)
}
