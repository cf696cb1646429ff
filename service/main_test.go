// service/main_test.go
package service_test

import (
	"os"
	"testing"

	logger "github.com/driftship/sentinel/logging"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "sentinel-logs")
	if err != nil {
		panic(err)
	}

	logger.InitLogger(dir)

	code := m.Run()

	logger.Sync()
	os.RemoveAll(dir)
	os.Exit(code)
}
