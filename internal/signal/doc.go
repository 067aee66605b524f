// Package signal holds small per-sample filters: a first-order low-pass
// filter, a finite-difference derivator and a deadband.
package signal
