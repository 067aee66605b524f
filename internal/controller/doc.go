// Package controller implements the safety controller: each cycle it sums
// the registered generators per category, evaluates the constraints and
// writes velocity commands scaled by the smallest constraint value.
//
//	ctrl := controller.New(r, controller.WithLogger(logger))
//	ctrl.AddVelocityGenerator("motion", generator.NewVelocityProxy(&target, spatial.ControlPoint))
//	ctrl.AddConstraint("stop", estop)
//	for {
//		drv.Read()
//		ctrl.Compute()
//		drv.Send()
//	}
package controller
