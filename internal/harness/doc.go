// Package harness provides conformance testing for context rule sets.
//
// The harness loads a rule document, annotates a text with entities and
// validates the qualifiers the engine assigns, as executable contract tests
// for a rule set.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	rules: path/to/rules.yaml   # omit for the embedded rules
//	attr: NORM                  # optional phrase attribute
//	text: "Patient heeft geen SYMPTOOM."
//	terms: [SYMPTOOM]
//	assertions:
//	  - type: qualifier
//	    entity: 0
//	    qualifier: Negation.Negated
//	  - type: default
//	    entity: 1
//	    class: Negation
//	  - type: entity_count
//	    count: 2
//
// A scenario may instead expect the rule document to be rejected:
//
//	assertions:
//	  - type: load_error
//	    code: E203
//
// # Assertion Types
//
//   - qualifier: the entity holds the given "Class.Value" qualifier
//   - not_qualifier: the entity does not hold the given qualifier
//   - default: the entity holds the default value of the class
//   - entity_count: the text yields exactly count entities
//   - load_error: loading the rules fails with the given error code
//
// # Deterministic Testing
//
// Documents get the scenario name as ID and the engine logs are discarded,
// so RunWithGolden snapshots are identical across runs.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/negation.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness
