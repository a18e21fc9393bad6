// Package viz renders trajectories for the terminal: asciigraph plots of
// species concentrations and a per-segment logic timeline that reads like a
// logic analyzer trace. [Search] is a bubbletea view that follows a running
// parameter search generation by generation.
package viz
