// Package trajectory generates waypoint trajectories made of quintic
// segments. Free-time segments get the shortest duration compatible with
// their velocity and acceleration limits; a Generator then pads the segments
// of several trajectories so they reach waypoints, or their end, together.
//
// Trajectories are sampled once per control cycle by Compute, which returns
// true once the last waypoint has been reached.
package trajectory
