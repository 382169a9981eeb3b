package fastrow

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// parallelMinPieceSize is the smallest slice of input worth handing to a
// worker; inputs smaller than workers*parallelMinPieceSize parse
// sequentially.
const parallelMinPieceSize = 4 * 1024

// ParseParallel tokenizes data like [Parse] but splits the input at
// complete-row boundaries and parses the pieces concurrently on up to
// workers goroutines, stitching the rows back in input order. The split is
// quote-aware, so quoted newlines never land on a piece boundary.
//
// Determinism: the combined row sequence is identical to [Parse]'s. On a
// structural error, rows from pieces before the faulting piece plus the
// faulting piece's clean rows are returned with the error; pieces after the
// fault are dropped, matching the sequential partial-result contract.
func ParseParallel(ctx context.Context, data []byte, cfg *Config, workers int) ([][][]byte, error) {
	if workers <= 1 || len(data) < workers*parallelMinPieceSize {
		return Parse(data, cfg)
	}
	// A piece per worker only pays off with enough rows to go around.
	if countByte(data, '\n') < workers {
		return Parse(data, cfg)
	}

	bounds := splitRowBoundaries(data, cfg, workers)
	pieces := len(bounds) - 1
	if pieces <= 1 {
		return Parse(data, cfg)
	}

	results := make([][][][]byte, pieces)
	errs := make([]error, pieces)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < pieces; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = Parse(data[bounds[i]:bounds[i+1]], cfg)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out [][][]byte
	for i := 0; i < pieces; i++ {
		out = append(out, results[i]...)
		if err := errs[i]; err != nil {
			// Rebase piece-relative error offsets onto the full input.
			if pe, ok := err.(*ParseError); ok && pe.Pos >= 0 {
				err = &ParseError{Pos: pe.Pos + bounds[i], Err: pe.Err}
			}
			return out, err
		}
	}
	return out, nil
}

// splitRowBoundaries partitions data into at most pieces ranges cut only at
// complete-row boundaries. The returned offsets start with 0 and end with
// len(data).
func splitRowBoundaries(data []byte, cfg *Config, pieces int) []int {
	bounds := make([]int, 1, pieces+1)
	target := len(data) / pieces
	if target < 1 {
		target = 1
	}
	next := target
	visitRowBoundaries(data, cfg, func(cut int) bool {
		if cut >= next && cut < len(data) {
			bounds = append(bounds, cut)
			next = cut + target
		}
		return len(bounds) < pieces
	})
	return append(bounds, len(data))
}
