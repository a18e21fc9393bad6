// Package optim tunes counter parameters against the ideal decoder output.
package optim
