// Package spatial provides the Cartesian primitives shared by the control
// core: 6-D twists and wrenches, poses, rotations and reference frames.
//
// Linear parts are exposed as [r3.Vector] values; 6x6 spatial
// transformations are stored in gonum matrices owned by the robot state.
package spatial
