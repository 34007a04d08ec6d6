package e2e

import (
	"github.com/cucumber/godog"

	"handover/e2e/steps/common"
	"handover/e2e/steps/transfer"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	transfer.RegisterSteps(ctx, tc)
}
