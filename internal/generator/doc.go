// Package generator implements the motion and force intents summed by the
// safety controller.
//
// There is one interface per output category:
//
//   - [ForceGenerator]: wrench at the control point
//   - [VelocityGenerator]: twist of the control point
//   - [JointVelocityGenerator]: joint velocities
//   - [JointTorqueGenerator]: joint torques
//
// Every generator keeps its own output buffer. Compute zeroes it, runs the
// generator law, converts base-frame Cartesian outputs to the control point
// frame and returns the buffer. Generators only read the robot state.
//
// Parameters (targets, gains, object positions) are pointers or slices
// shared with the caller, so they can be changed between cycles without
// registering the generator again. They must not be written while the
// controller computes.
//
// The category interfaces cannot be implemented outside this package; the
// *Func proxies cover custom laws.
package generator
