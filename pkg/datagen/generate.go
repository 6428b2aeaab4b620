package datagen

import (
	"math"

	"tablegen/pkg/dberror"
	"tablegen/pkg/types"
)

// Generate produces count values for col under its distribution, plus a
// null bitmap that is all clear unless the column is nullable.
//
// Serial columns advance their counter by count. Rotate columns advance the
// Context's shared cursor. The caller owns the returned batch and must
// Release it.
//
// Returns:
//   - INVALID_ARGUMENT when count is zero or col is a clone column
//   - UNSUPPORTED_TYPE for variable-width types
//   - CONFIGURATION_ERROR for any type and distribution pairing that cannot
//     be generated, or a Serial counter that leaves the type's range
func Generate(ctx *Context, col *ColumnSpec, count uint32) (*ColumnData, error) {
	const op = "Generate"

	if count == 0 {
		return nil, dberror.InvalidArgument(op, "column %q: cannot generate zero values", col.Name).
			WithComponent("DistributionGenerator")
	}
	if col.Clone {
		return nil, dberror.InvalidArgument(op, "column %q is a clone and is not generated", col.Name).
			WithComponent("DistributionGenerator")
	}
	if err := col.Validate(); err != nil {
		return nil, dberror.Wrap(err, dberror.CodeConfiguration, op, "DistributionGenerator")
	}

	data := newColumnData(col.Type, count)

	var err error
	if col.Type == types.BooleanType {
		fillBoolean(ctx, col, data)
	} else {
		err = fillNumber(ctx, col, data)
	}
	if err != nil {
		data.Release()
		return nil, dberror.Wrap(err, dberror.CodeConfiguration, op, "DistributionGenerator")
	}

	if col.Nullable {
		fillNulls(ctx, data)
	}
	return data, nil
}

func fillNumber(ctx *Context, col *ColumnSpec, data *ColumnData) error {
	n := data.Count

	switch col.Distribution {
	case Uniform:
		rng := ctx.drawSource()
		span := uint64(col.Max) - uint64(col.Min)
		for j := range n {
			var off uint64
			if span == math.MaxUint64 {
				off = rng.Uint64()
			} else {
				off = rng.Uint64N(span + 1)
			}
			_ = types.Encode(col.Type, int64(uint64(col.Min)+off), data.Value(j))
		}

	case Serial:
		start := col.Counter()
		_, hi, _ := col.Type.Range()
		if col.exhausted || uint64(n-1) > uint64(hi)-uint64(start) {
			return dberror.Configuration("Generate", "column %q: serial counter starting at %d overflows %s within %d rows",
				col.Name, start, col.Type, n)
		}
		for j := range n {
			_ = types.Encode(col.Type, start+int64(j), data.Value(j))
		}
		col.advance(int64(n), hi)

	case Rotate:
		vals := make([]int64, n)
		for j := range vals {
			vals[j] = ctx.nextRotate(col.Min, col.Max)
		}
		ctx.rng.Shuffle(len(vals), func(a, b int) { vals[a], vals[b] = vals[b], vals[a] })
		for j, v := range vals {
			_ = types.Encode(col.Type, v, data.Value(uint32(j)))
		}
	}
	return nil
}

func fillBoolean(ctx *Context, col *ColumnSpec, data *ColumnData) {
	n := data.Count
	vals := data.Values()

	switch col.Distribution {
	case Uniform:
		rng := ctx.drawSource()
		for j := range n {
			if rng.IntN(2) == 0 {
				vals[j] = 1
			}
		}
	case Serial:
		for j := n / 2; j < n; j++ {
			vals[j] = 1
		}
	}
}

func fillNulls(ctx *Context, data *ColumnData) {
	p := ctx.opts.NullProbability
	if p <= 0 {
		return
	}
	rng := ctx.drawSource()
	for j := range data.Count {
		if rng.Float64() < p {
			data.Nulls.Set(j)
		}
	}
}
