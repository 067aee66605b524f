// Package sim runs the simulated control loop and records its samples.
//
// Each cycle applies the scenario events due, reads the driver, advances
// the trajectories, computes the safety controller and sends the commands:
//
//	s := sim.New(r, drv, ctrl, sim.WithTrajectories(g))
//	s.AddMetric(metrics.NewPeakForce())
//	result, err := s.Run(ctx, sim.Config{Dt: 0.005, Duration: 5})
package sim
