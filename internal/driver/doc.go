// Package driver connects robots to the control loop. The simulated driver
// integrates velocity-controlled joints and synthesizes the external wrench
// from an environment model.
//
//	drv.Init()
//	for {
//		drv.Read()
//		ctrl.Compute()
//		drv.Send()
//	}
package driver
