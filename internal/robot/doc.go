// Package robot defines the state shared by every layer of the control loop.
//
// A [Robot] is split in three groups:
//
//   - Joints: measured joint position, velocity and external torque, plus
//     the joint commands
//   - Task: measured control point pose, twist and wrench, plus the
//     Cartesian command
//   - Control: kinematic data (Jacobian, transformations) and the safety
//     controller's aggregates
//
// # Ownership
//
// Measured fields are written by the driver and the kinematic model, command
// and control fields by the safety controller. Buffers are allocated once by
// [New] and never resized, so slices may be kept by reference.
package robot
