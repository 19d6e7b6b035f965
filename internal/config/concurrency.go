package config

import "runtime"

// EstimatePortionConcurrency picks a default bound for parallel portion
// lookups from the number of CPUs. Lookups are network bound, so the value
// grows slowly and is capped to stay polite to the service.
func EstimatePortionConcurrency() int {
	numCPU := runtime.NumCPU()
	switch {
	case numCPU <= 2:
		return 2
	case numCPU <= 8:
		return 4
	default:
		return 8
	}
}
