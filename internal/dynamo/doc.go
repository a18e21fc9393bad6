// Package dynamo provides the numerical primitives the simulator is built on.
//
// The package defines:
//
//   - [State]: vector of species concentrations
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator] and [AdaptiveIntegrator]: one-step methods
//   - [Config]: tolerances, step bounds and the step budget
//   - [Solve]: drives an integrator across a set of output times
//
// # Example
//
//	ode, _ := grn.Assemble(net)
//	integ := integrators.NewRosenbrock()
//	states, err := dynamo.Solve(ctx, integ, ode, x0, dynamo.Linspace(0, 250, 251), dynamo.DefaultConfig())
//
// # Errors
//
// Every solver failure is returned as an [*IntegrationError], which matches
// both [ErrIntegration] and the specific cause under errors.Is.
//
// # Thread Safety
//
// Integrators keep scratch buffers and are NOT safe for concurrent use.
// Give every goroutine its own integrator and system.
package dynamo
