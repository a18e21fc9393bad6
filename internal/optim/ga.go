package optim

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// GenomeFitness scores one genome; higher is better. It is called from
// several goroutines at once.
type GenomeFitness func(ctx context.Context, genes []int) (float64, error)

type GAConfig struct {
	Generations         int
	Population          int
	ParentsMating       int
	KeepParents         int
	MutationProbability float64
	Workers             int
	Seed                int64
}

func DefaultGAConfig() GAConfig {
	return GAConfig{
		Generations:         20,
		Population:          40,
		ParentsMating:       10,
		KeepParents:         4,
		MutationProbability: 0.2,
		Seed:                1,
	}
}

func (c GAConfig) Validate() error {
	switch {
	case c.Generations < 0:
		return fmt.Errorf("%w: generations must be non-negative", ErrInvalidSearch)
	case c.Population < 2:
		return fmt.Errorf("%w: population must be at least 2", ErrInvalidSearch)
	case c.ParentsMating < 1 || c.ParentsMating > c.Population:
		return fmt.Errorf("%w: parents mating must be in [1, population]", ErrInvalidSearch)
	case c.KeepParents < 0 || c.KeepParents > c.ParentsMating:
		return fmt.Errorf("%w: keep parents must be in [0, parents mating]", ErrInvalidSearch)
	case c.MutationProbability < 0 || c.MutationProbability > 1:
		return fmt.Errorf("%w: mutation probability must be in [0, 1]", ErrInvalidSearch)
	}
	return nil
}

type Individual struct {
	Genes   []int
	Fitness float64
}

// GA is a generational genetic algorithm over integer genomes: steady-state
// parent selection, scattered crossover, random-reset mutation, and the best
// KeepParents parents carried into the next generation unchanged.
type GA struct {
	cfg      GAConfig
	bounds   []int
	fitness  GenomeFitness
	logger   *log.Logger
	progress func(Progress)
	history  *History
	runID    string
	rng      *rand.Rand
	cache    map[string]float64
}

type GAOption func(*GA)

// WithLogger reports the best fitness of every generation.
func WithLogger(l *log.Logger) GAOption {
	return func(g *GA) { g.logger = l }
}

// Progress is the state of a search after one generation.
type Progress struct {
	Generation  int
	Generations int
	Best        Individual
	Evaluations int
}

// WithProgress calls fn after the initial population and after every
// generation, on the goroutine running Run.
func WithProgress(fn func(Progress)) GAOption {
	return func(g *GA) { g.progress = fn }
}

// WithHistory records every evaluated genome.
func WithHistory(h *History) GAOption {
	return func(g *GA) { g.history = h }
}

// WithRunID overrides the generated run identifier used in the history.
func WithRunID(id string) GAOption {
	return func(g *GA) { g.runID = id }
}

// NewGA searches genomes whose gene i lies in [0, bounds[i]).
func NewGA(cfg GAConfig, bounds []int, fitness GenomeFitness, opts ...GAOption) (*GA, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(bounds) == 0 {
		return nil, fmt.Errorf("%w: empty genome", ErrInvalidSearch)
	}
	for i, b := range bounds {
		if b < 1 {
			return nil, fmt.Errorf("%w: gene %d has no admissible values", ErrInvalidSearch, i)
		}
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}

	g := &GA{
		cfg:     cfg,
		bounds:  append([]int(nil), bounds...),
		fitness: fitness,
		runID:   uuid.NewString(),
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		cache:   make(map[string]float64),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *GA) RunID() string { return g.runID }

// Run evolves the population and returns the best individual seen.
func (g *GA) Run(ctx context.Context) (Individual, error) {
	pop := make([]Individual, g.cfg.Population)
	for i := range pop {
		pop[i].Genes = g.randomGenome()
	}
	if err := g.evaluate(ctx, 0, pop); err != nil {
		return Individual{}, err
	}

	best := bestOf(pop)
	g.report(0, best)

	for gen := 1; gen <= g.cfg.Generations; gen++ {
		parents := g.selectParents(pop)

		next := make([]Individual, 0, g.cfg.Population)
		for _, p := range parents[:g.cfg.KeepParents] {
			next = append(next, p.clone())
		}

		offspring := make([]Individual, g.cfg.Population-len(next))
		for k := range offspring {
			a := parents[k%len(parents)]
			b := parents[(k+1)%len(parents)]
			offspring[k].Genes = g.mutate(g.crossover(a.Genes, b.Genes))
		}
		if err := g.evaluate(ctx, gen, offspring); err != nil {
			return Individual{}, err
		}

		pop = append(next, offspring...)
		if cur := bestOf(pop); cur.Fitness > best.Fitness {
			best = cur
		}
		g.report(gen, best)
	}

	return best.clone(), nil
}

// evaluate fills in the fitness of every individual. Each distinct genome is
// scored once: repeats within the batch and genomes seen in earlier
// generations are served from the cache. Scoring runs on at most Workers
// goroutines.
func (g *GA) evaluate(ctx context.Context, generation int, inds []Individual) error {
	var pending []int
	queued := make(map[string]bool)
	for i := range inds {
		key := genomeKey(inds[i].Genes)
		if _, ok := g.cache[key]; ok || queued[key] {
			continue
		}
		queued[key] = true
		pending = append(pending, i)
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.cfg.Workers)
	for _, i := range pending {
		i := i
		eg.Go(func() error {
			f, err := g.fitness(egCtx, inds[i].Genes)
			if err != nil {
				return err
			}
			if math.IsNaN(f) {
				f = math.Inf(-1)
			}
			inds[i].Fitness = f
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for _, i := range pending {
		g.cache[genomeKey(inds[i].Genes)] = inds[i].Fitness
		if g.history != nil {
			err := g.history.Record(ctx, Trial{
				RunID:      g.runID,
				Generation: generation,
				Fitness:    inds[i].Fitness,
				Genes:      inds[i].Genes,
			})
			if err != nil {
				return fmt.Errorf("record trial: %w", err)
			}
		}
	}

	for i := range inds {
		inds[i].Fitness = g.cache[genomeKey(inds[i].Genes)]
	}
	return nil
}

// selectParents keeps the ParentsMating fittest individuals, best first.
func (g *GA) selectParents(pop []Individual) []Individual {
	sorted := append([]Individual(nil), pop...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Fitness > sorted[j].Fitness })
	return sorted[:g.cfg.ParentsMating]
}

func (g *GA) crossover(a, b []int) []int {
	child := make([]int, len(a))
	for i := range child {
		if g.rng.Intn(2) == 0 {
			child[i] = a[i]
		} else {
			child[i] = b[i]
		}
	}
	return child
}

func (g *GA) mutate(genes []int) []int {
	for i := range genes {
		if g.rng.Float64() < g.cfg.MutationProbability {
			genes[i] = g.rng.Intn(g.bounds[i])
		}
	}
	return genes
}

func (g *GA) randomGenome() []int {
	genes := make([]int, len(g.bounds))
	for i, b := range g.bounds {
		genes[i] = g.rng.Intn(b)
	}
	return genes
}

func (g *GA) report(gen int, best Individual) {
	if g.progress != nil {
		g.progress(Progress{
			Generation:  gen,
			Generations: g.cfg.Generations,
			Best:        best.clone(),
			Evaluations: len(g.cache),
		})
	}
	if g.logger == nil {
		return
	}
	g.logger.Printf("generation %d/%d: best fitness %.4f genes %v", gen, g.cfg.Generations, best.Fitness, best.Genes)
}

func (ind Individual) clone() Individual {
	return Individual{Genes: append([]int(nil), ind.Genes...), Fitness: ind.Fitness}
}

func bestOf(pop []Individual) Individual {
	best := pop[0]
	for _, ind := range pop[1:] {
		if ind.Fitness > best.Fitness {
			best = ind
		}
	}
	return best
}

func genomeKey(genes []int) string {
	parts := make([]string, len(genes))
	for i, v := range genes {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
