// Package constraint implements the velocity scaling factors reduced by the
// safety controller.
//
// Each [Constraint] returns a factor, conventionally in [0, 1], computed
// from the robot state. The controller keeps the smallest one, so a
// constraint that does not apply returns 1.
//
// # Emergency stop
//
// [EmergencyStop] is a two-threshold latch: it activates (factor 0) as soon
// as any enabled check reaches its activation threshold and releases only
// once every enabled check is back to its deactivation threshold.
//
//	stop, err := constraint.NewEmergencyStop(constraint.CheckBoth,
//		&constraint.Threshold{Activation: 25, Deactivation: 5},
//		&constraint.Threshold{Activation: 5, Deactivation: 1})
//
// # Separation distance
//
// [SeparationDistance] feeds the distance to the closest object into an
// interpolator whose output parameterizes another constraint, for example a
// maximum velocity shrinking as an operator approaches.
package constraint
