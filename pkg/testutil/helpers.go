// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/finance-schedule/internal/projection"
)

// FindDay finds the bucket for a day of the month in a projection.
// Returns a pointer to the bucket if found, nil otherwise.
func FindDay(result projection.Projection, day int) *projection.DayBucket {
	for i := range result.Days {
		if result.Days[i].Day == day {
			return &result.Days[i]
		}
	}
	return nil
}

// FindImpact finds a payment's monthly impact by name.
// Returns a pointer to the impact if found, nil otherwise.
func FindImpact(impacts []projection.Impact, name string) *projection.Impact {
	for i := range impacts {
		if impacts[i].Name == name {
			return &impacts[i]
		}
	}
	return nil
}
