// Package recipe sequences external tool invocations.
//
// A Recipe is an ordered list of Steps. Runner executes the steps one after
// another and stops at the first step that exits non-zero or cannot be started;
// the remaining steps are recorded as skipped. The exit code of the failing
// step becomes the exit code of the run.
//
// The package never implements the tools it invokes (formatters, linters, test
// runners, auditors); it only launches them through an Executor.
package recipe
