package services

import (
	"os"
	"testing"

	"github.com/sydo/sydo-reviews/internal/utils"
)

func TestMain(m *testing.M) {
	utils.SetJWTSecret("test-secret")
	os.Exit(m.Run())
}
