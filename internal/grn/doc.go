// Package grn models a gene-regulatory network as a system of ODEs.
//
// A [Network] is built incrementally by client code:
//
//   - [Network.AddInputSpecies]: a species whose value is imposed from outside
//   - [Network.AddSpecies]: a species with first-order decay
//   - [Network.AddGene]: a production rule driven by [Regulator] references
//
// Species are stored in insertion order and that order is the column order of
// every state vector the simulator produces. [Network.Species] returns it.
//
// # Kinetics
//
// Every regulator contributes a Hill term t = (max(x, 0)/Kd)^n. A gene's
// rate is MaxRate * num / prod(1 + t_i), a Shea-Ackers occupancy model where
// prod(1 + t_i) sums over every binding configuration. For two regulators this
// is 1 + t_1 + t_2 + t_1*t_2. The numerator depends on [Logic]:
//
//   - [And]: product of the activator terms
//   - [Or]: prod(1 + t_a) - 1 over the activators, which is t_a for a single
//     activator. This is not the plain sum of the t_a: with a sum, two
//     saturating activators against the product denominator drive the rate
//     to zero (x = 50, Kd = 5 gives 0.02 instead of 10) and Or stops behaving
//     like a gate.
//   - either mode with no activators: 1, production gated only by repressors
//
// The rate is therefore bounded by [0, MaxRate], increases with every
// activator and decreases with every repressor, and approaches a boolean
// gate as n grows.
//
// # Assembly
//
// [Assemble] resolves species names to indices once and returns an [ODE]
// implementing [dynamo.System]. Genes may cite species added after them;
// references that never resolve fail with [ErrUnknownSpecies].
//
// # Thread Safety
//
// A Network has a single owner. Build one network per goroutine when
// simulating in parallel.
package grn
