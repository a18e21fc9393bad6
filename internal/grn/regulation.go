package grn

import (
	"fmt"
	"math"
	"strings"
)

// Sign is the regulatory effect of a bound transcription factor.
type Sign int

const (
	Repressor Sign = -1
	Activator Sign = 1
)

func (s Sign) String() string {
	switch s {
	case Activator:
		return "activator"
	case Repressor:
		return "repressor"
	default:
		return fmt.Sprintf("Sign(%d)", int(s))
	}
}

// Regulator references a species by name together with its binding
// parameters: dissociation constant Kd and Hill coefficient N.
type Regulator struct {
	Species string  `json:"species" yaml:"species"`
	Sign    Sign    `json:"sign" yaml:"sign"`
	Kd      float64 `json:"kd" yaml:"kd"`
	N       float64 `json:"n" yaml:"n"`
}

// NewRegulator validates and returns a regulator reference.
func NewRegulator(species string, sign Sign, kd, n float64) (Regulator, error) {
	r := Regulator{Species: species, Sign: sign, Kd: kd, N: n}
	if err := r.Validate(); err != nil {
		return Regulator{}, err
	}
	return r, nil
}

func (r Regulator) Validate() error {
	if r.Species == "" {
		return fmt.Errorf("%w: regulator species name is empty", ErrInvalidParameter)
	}
	if r.Sign != Activator && r.Sign != Repressor {
		return fmt.Errorf("%w: regulator %q: sign must be +1 or -1, got %d", ErrInvalidParameter, r.Species, int(r.Sign))
	}
	if !(r.Kd > 0) || math.IsInf(r.Kd, 0) {
		return fmt.Errorf("%w: regulator %q: Kd must be positive, got %g", ErrInvalidParameter, r.Species, r.Kd)
	}
	if !(r.N > 0) || math.IsInf(r.N, 0) {
		return fmt.Errorf("%w: regulator %q: n must be positive, got %g", ErrInvalidParameter, r.Species, r.N)
	}
	return nil
}

// Logic selects how the regulators of one gene combine.
type Logic int

const (
	// And requires every activator to be bound and every repressor unbound.
	And Logic = iota
	// Or requires at least one activator bound and every repressor unbound.
	Or
)

func (l Logic) String() string {
	switch l {
	case And:
		return "and"
	case Or:
		return "or"
	default:
		return fmt.Sprintf("Logic(%d)", int(l))
	}
}

func ParseLogic(s string) (Logic, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "and", "":
		return And, nil
	case "or":
		return Or, nil
	default:
		return And, fmt.Errorf("%w: unknown logic %q", ErrInvalidParameter, s)
	}
}

func (l Logic) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Logic) UnmarshalText(text []byte) error {
	parsed, err := ParseLogic(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// hill returns (x/kd)^n with negative concentrations clamped to zero.
func hill(x, kd, n float64) float64 {
	if !(x > 0) {
		return 0
	}
	return math.Pow(x/kd, n)
}

// promoter accumulates regulator occupancies for one gene. With per-regulator
// terms t_i the activity is numerator / prod(1 + t_i) where the numerator is
// prod(t_a) for And, prod(1 + t_a) - 1 for Or (the sum of t_a when there is a
// single activator), and 1 when the gene has no activators. Each factor is
// kept in [0, 1] so that saturated terms never produce Inf/Inf.
type promoter struct {
	logic     Logic
	activated bool
	bound     float64 // prod t_a/(1+t_a)
	free      float64 // prod 1/(1+t_a)
	repressed float64 // prod 1/(1+t_r)
}

func newPromoter(logic Logic) promoter {
	return promoter{logic: logic, bound: 1, free: 1, repressed: 1}
}

func (p *promoter) add(sign Sign, t float64) {
	if sign == Activator {
		p.activated = true
		p.bound *= 1 / (1 + 1/t)
		p.free *= 1 / (1 + t)
		return
	}
	p.repressed *= 1 / (1 + t)
}

func (p *promoter) activity() float64 {
	if !p.activated {
		return p.repressed
	}
	if p.logic == Or {
		return (1 - p.free) * p.repressed
	}
	return p.bound * p.repressed
}

// Production evaluates one gene's synthesis rate for the given regulator
// concentrations, conc[i] belonging to regs[i]. The result lies in
// [0, maxRate]. conc must hold at least len(regs) values; extra values are
// ignored. Production panics on a shorter slice.
func Production(maxRate float64, logic Logic, regs []Regulator, conc []float64) float64 {
	if len(conc) < len(regs) {
		panic(fmt.Sprintf("grn: Production got %d concentrations for %d regulators", len(conc), len(regs)))
	}
	p := newPromoter(logic)
	for i, r := range regs {
		p.add(r.Sign, hill(conc[i], r.Kd, r.N))
	}
	return maxRate * p.activity()
}
