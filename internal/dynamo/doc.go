// Package dynamo provides the simulation primitives shared by the simulated
// driver and the run loop.
//
//   - [State]: integrated actuator state
//   - [System]: ODE dX/dt = f(X, u, t)
//   - [Integrator]: fixed-step numerical integrator
//   - [CycleError]: error raised during one control cycle
//
// # Example
//
//	act := driver.NewActuator(4, 0.05)
//	integ := integrators.NewRK4()
//	integ.Step(act, x, u, t, dt)
package dynamo
