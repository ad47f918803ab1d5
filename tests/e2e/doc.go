// Package e2e provides end-to-end testing infrastructure for ladder.
//
// The E2E tests validate full workflows from fixture tree to run plan,
// covering:
//   - Path classification across the L1-L5 ladder
//   - Tree discovery and unclassified reporting
//   - Trigger routing and run plan construction
//   - Run history recording and pruning
//
// # Test Structure
//
// Tests are organized as:
//
//	tests/e2e/
//	├── harness/           # Test infrastructure
//	│   ├── harness.go     # Environment setup
//	│   ├── logging.go     # Step logging
//	│   └── assertions.go  # Domain assertions
//	└── scenarios/         # Test scenarios
//
// # Usage
//
// Each E2E test should create a new environment:
//
//	func TestNightlyPlan(t *testing.T) {
//	    env := harness.NewE2EEnvironment(t)
//
//	    env.Step("Seeding fixture tree")
//	    env.SeedFixtureTree()
//
//	    env.Step("Building nightly plan")
//	    p := env.BuildPlan(tier.TriggerNightly)
//
//	    env.AssertStageCount(p, 4)
//	}
//
// # Design Principles
//
//   - Isolation: Each test gets its own temp directory and history DB
//   - Cleanup: All resources are cleaned up via t.Cleanup
//   - Logging: Every step is logged with timestamps for debugging
//   - Determinism: No random behavior that could cause flakiness
package e2e
