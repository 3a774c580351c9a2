package model

import (
	"fmt"
	"strings"
)

// CheckStatus represents the status of a preflight check.
type CheckStatus string

const (
	// CheckStatusOK indicates the check passed.
	CheckStatusOK CheckStatus = "ok"
	// CheckStatusWarning indicates the check passed but the setup may not serve scripts as expected.
	CheckStatusWarning CheckStatus = "warning"
	// CheckStatusError indicates the check failed, scripts can't be served.
	CheckStatusError CheckStatus = "error"
)

// CheckResult represents the result of a single preflight check of the runner setup.
type CheckResult struct {
	ID      string      // Unique identifier for the check (e.g., "interpreter").
	Message string      // Human-readable description of the result.
	Status  CheckStatus // Status of the check.
}

// CheckSummary aggregates a set of check results.
type CheckSummary struct {
	OK       int
	Warnings int
	Errors   int
}

// SummarizeChecks counts the check results by status.
func SummarizeChecks(results []CheckResult) CheckSummary {
	var s CheckSummary
	for _, r := range results {
		switch r.Status {
		case CheckStatusOK:
			s.OK++
		case CheckStatusWarning:
			s.Warnings++
		case CheckStatusError:
			s.Errors++
		}
	}
	return s
}

// Failed returns true when at least one check failed.
func (s CheckSummary) Failed() bool { return s.Errors > 0 }

func (s CheckSummary) String() string {
	if s.Errors == 0 && s.Warnings == 0 {
		return "All checks passed!"
	}

	var parts []string
	if s.Errors > 0 {
		parts = append(parts, fmt.Sprintf("%d error(s)", s.Errors))
	}
	if s.Warnings > 0 {
		parts = append(parts, fmt.Sprintf("%d warning(s)", s.Warnings))
	}
	return strings.Join(parts, ", ")
}
