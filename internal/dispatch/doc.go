// Package dispatch evaluates named per-entity computations.
//
// A component declares its computations once through a [Registry]:
//
//   - a process computes an instantaneous rate and is written back under
//     its own name
//   - an update computes the next value of the state variable it is named
//     after
//
// Each registration lists, in order, the names of the values its [Kernel]
// receives. [Build] resolves those names against a [Namespace] (per-entity
// fields) and [Parameters] (scalars broadcast to every entity) and fails on
// the first name that cannot be resolved, so misconfiguration surfaces
// before the first step.
//
// # Evaluation
//
//	d, err := dispatch.Build(reg, store, params)
//	err = d.Evaluate(dispatch.Process)
//	err = d.Evaluate(dispatch.Update)
//
// Processes run in registration order and each result is visible to the
// processes after it. Updates all read the state as it was when the update
// pass started and are committed together, so their order never matters.
// Within one binding every entity is independent; with [WithWorkers] the
// entities are split across goroutines and the result is identical.
package dispatch
