// Package model provides the kinematic models of the simulated robots and
// refreshes the kinematic part of the robot state every cycle.
//
// Update must run after the driver has read the joint state and before the
// safety controller computes, since the controller relies on the Jacobian,
// its inverse and the spatial transformation being current.
package model
