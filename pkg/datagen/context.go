package datagen

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// DefaultNullProbability is the chance that a nullable column's row is null.
const DefaultNullProbability = 0.1

// NoNulls as a NullProbability keeps nullable columns free of nulls.
const NoNulls = -1.0

// SeedScope controls how often the random source is reseeded.
type SeedScope int

const (
	// SeedPerRun seeds once when the Context is created. Every Uniform and
	// null draw continues the same stream, so columns and batches differ
	// from each other while the load stays reproducible.
	SeedPerRun SeedScope = iota

	// SeedPerCall reseeds before every Uniform batch and every null bitmap.
	// Each such call then sees the same sequence, which reproduces datasets
	// built by generators that construct a fresh default-seeded engine on
	// every call.
	SeedPerCall
)

func (s SeedScope) String() string {
	switch s {
	case SeedPerRun:
		return "run"
	case SeedPerCall:
		return "call"
	default:
		return fmt.Sprintf("SeedScope(%d)", int(s))
	}
}

// ParseSeedScope resolves "run" or "call". An empty string means run.
func ParseSeedScope(s string) (SeedScope, error) {
	switch s {
	case "", "run":
		return SeedPerRun, nil
	case "call":
		return SeedPerCall, nil
	default:
		return SeedPerRun, fmt.Errorf("unknown seed scope %q", s)
	}
}

// Options configures a Context.
type Options struct {
	Seed   uint64
	Stream uint64
	Scope  SeedScope

	// NullProbability defaults to DefaultNullProbability when zero. Any
	// negative value, such as NoNulls, disables nulls.
	NullProbability float64
}

// Context carries the mutable generation state of one table load: the random
// source and the Rotate cursor shared by every Rotate column.
type Context struct {
	opts   Options
	src    *rand.PCG
	rng    *rand.Rand
	rotate int64
}

// NewContext returns a Context with its random source seeded from opts.
func NewContext(opts Options) *Context {
	if opts.NullProbability == 0 {
		opts.NullProbability = DefaultNullProbability
	}
	src := rand.NewPCG(opts.Seed, opts.Stream)
	return &Context{
		opts: opts,
		src:  src,
		rng:  rand.New(src),
	}
}

// Options returns the options the Context was built with, defaults applied.
func (c *Context) Options() Options {
	return c.opts
}

// RotateCursor returns the value the next Rotate draw starts from, before
// range adjustment.
func (c *Context) RotateCursor() int64 {
	return c.rotate
}

// drawSource returns the generator for a Uniform or null draw, reseeding it
// first under SeedPerCall.
func (c *Context) drawSource() *rand.Rand {
	if c.opts.Scope == SeedPerCall {
		c.src.Seed(c.opts.Seed, c.opts.Stream)
	}
	return c.rng
}

// nextRotate takes the cursor's value within [lo, hi] and advances it.
func (c *Context) nextRotate(lo, hi int64) int64 {
	if c.rotate < lo || c.rotate > hi {
		c.rotate = lo
	}
	v := c.rotate
	if v == math.MaxInt64 {
		c.rotate = lo
	} else {
		c.rotate++
	}
	return v
}
