// Package orchestration drives the meal-analysis flow.
//
// A Controller owns the flow state (Input, Disambiguation, Portions, Results),
// is its sole mutator, and publishes a deep copy of the state to subscribers
// after every change. Remote work goes through the Service interface so the
// controller can be driven by the HTTP client, a mock, or any other
// implementation.
package orchestration
