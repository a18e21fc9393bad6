// Package circuits builds clocked digital circuits out of regulatory genes:
// a master-slave D flip-flop, a Johnson counter with an instruction decoder,
// and the helpers that drive and score them.
//
// Every constructor takes the network it extends, so circuits compose: a
// counter is a chain of flip-flop cells registered on one network. Names are
// resolved at assembly, which lets cell 1 cite the last cell before it exists.
package circuits
