//go:build cucumber

package cucumber

import (
	"bytes"
	"context"
	"os"

	"github.com/cucumber/godog"

	"ragdesk/internal/eval"
	"ragdesk/internal/metrics"
)

// featureState holds scenario state shared by the step definitions.
type featureState struct {
	results  eval.ResultSet
	rows     []eval.Row
	row      eval.Row
	aligned  []metrics.AlignedRow
	resolved metrics.Value
	names    []string
	averages map[string]metrics.Average

	dir        string
	configPath string
	stdout     bytes.Buffer
	stderr     bytes.Buffer
	exitCode   int
}

// InitializeScenario wires cucumber steps to the feature state.
func InitializeScenario(ctx *godog.ScenarioContext) {
	state := &featureState{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		state.reset()
		return ctx, nil
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		state.cleanup()
		return ctx, nil
	})

	ctx.Step(`^the results:$`, state.theResults)
	ctx.Step(`^the rows:$`, state.theRows)
	ctx.Step(`^the row (\{.*\})$`, state.theRow)
	ctx.Step(`^I align the results$`, state.iAlignTheResults)
	ctx.Step(`^I resolve the metric "([^"]*)"$`, state.iResolveTheMetric)
	ctx.Step(`^I average the metrics "([^"]*)"$`, state.iAverageTheMetrics)
	ctx.Step(`^there are (\d+) aligned rows$`, state.thereAreAlignedRows)
	ctx.Step(`^the aligned row with id "([^"]*)" has models "([^"]*)"$`, state.theAlignedRowHasModels)
	ctx.Step(`^the resolved value is (\S+)$`, state.theResolvedValueIs)
	ctx.Step(`^the average of "([^"]*)" is (\S+) over (\d+) rows$`, state.theAverageIs)
	ctx.Step(`^averaging the rows in reverse order gives the same averages$`, state.reverseOrderGivesSameAverages)

	ctx.Step(`^a valid ragdesk configuration$`, state.aValidConfiguration)
	ctx.Step(`^a ragdesk configuration with backend url "([^"]*)"$`, state.aConfigurationWithBackendURL)
	ctx.Step(`^I run "([^"]+)"$`, state.iRunCommand)
	ctx.Step(`^the exit code is (\d+)$`, state.theExitCodeIs)
	ctx.Step(`^the exit code is non-zero$`, state.theExitCodeIsNonZero)
	ctx.Step(`^the output lists these commands:$`, state.theOutputListsCommands)
	ctx.Step(`^the output contains "([^"]*)"$`, state.theOutputContains)
	ctx.Step(`^the error output contains "([^"]*)"$`, state.theErrorOutputContains)
}

// reset clears state before each scenario.
func (s *featureState) reset() {
	*s = featureState{}
}

// cleanup removes temporary files.
func (s *featureState) cleanup() {
	if s.dir != "" {
		_ = os.RemoveAll(s.dir)
	}
}
