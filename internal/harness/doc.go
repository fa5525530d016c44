// Package harness runs replay scenarios against the full parsing pipeline.
//
// A scenario supplies event records, inline or as files, replays them
// through the orchestrator into a fresh in-memory SQLite store, and checks
// the resulting plays and tables.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	run_id: run-fixed-0001
//	records: |
//	  id,AAA202404010
//	  info,visteam,VIS
//	  ...
//	files:
//	  - season/2024HOM.EVN
//	plays:
//	  - seq: 2
//	    expect: { kind: home_run, rbi: 2 }
//	assertions:
//	  - type: trace_contains
//	    kind: double
//	    fields: { batter: h2 }
//	  - type: final_state
//	    table: runs
//	    where: { game_id: AAA202404010, seq: 7 }
//	    expect: { runner: h1, rbi: true }
//
// # Assertion Types
//
//   - trace_contains: a play of the kind appears with matching columns
//   - trace_order: play kinds appear in the given order
//   - trace_count: a play kind appears exactly N times
//   - final_state: exactly one stored row matches and holds the values
//   - issue_count: a run summary total equals N
//
// # Deterministic Testing
//
// Scenarios replay with one worker and a fixed run ID (run_id, or
// "test-run-default"), so the trace and stored rows are identical across
// runs and can be compared against golden snapshots.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/home_run.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, err := range result.Errors {
//	        log.Println(err)
//	    }
//	}
package harness
