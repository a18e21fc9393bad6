package circuits

import "github.com/san-kum/grnsim/internal/grn"

// Inverter returns the smallest clocked network: the input DefaultClock
// represses a single output Y. kd or n of 0 select the defaults.
func Inverter(kd, n float64) (*grn.Network, error) {
	if kd == 0 {
		kd = DefaultKd
	}
	if n == 0 {
		n = DefaultN
	}

	net := grn.New()
	if err := net.AddInputSpecies(DefaultClock); err != nil {
		return nil, err
	}
	if err := net.AddSpecies("Y", DefaultDecay); err != nil {
		return nil, err
	}
	reg, err := grn.NewRegulator(DefaultClock, grn.Repressor, kd, n)
	if err != nil {
		return nil, err
	}
	if err := net.AddGene(DefaultRate, []grn.Regulator{reg}, []string{"Y"}, grn.Or); err != nil {
		return nil, err
	}
	return net, nil
}
