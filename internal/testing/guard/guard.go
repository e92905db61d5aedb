// Package guard switches the process into test mode when imported by a test,
// so router construction skips request logging and binaries skip startup.
package guard

import (
	"os"
	"sync"
)

const testModeEnv = "FLA_TEST_MODE"

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv(testModeEnv) == "" {
			_ = os.Setenv(testModeEnv, "1")
		}
	})
}
