//go:build cucumber

package cucumber

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cucumber/godog"
)

// TestFeatures runs the scenarios under the repository's features directory.
// Set GODOG_TAGS to narrow the run, e.g. GODOG_TAGS=@smoke.
func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "ragdesk",
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{featuresDir(t)},
			Tags:     os.Getenv("GODOG_TAGS"),
			Strict:   true,
			TestingT: t,
		},
	}
	if status := suite.Run(); status != 0 {
		t.Fatalf("godog suite exited with status %d", status)
	}
}

// featuresDir walks up from the package directory to the module root.
func featuresDir(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("get working directory: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, "features")
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("go.mod not found above the test directory")
		}
		dir = parent
	}
}
