package metrics

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/JacobARose/Transfer-Learning-Library/pkg/errors"
	"github.com/JacobARose/Transfer-Learning-Library/pkg/log"
)

// DomainSet is one labeled evaluation split, typically the source and target
// domains of an adaptation run.
type DomainSet struct {
	Name string
	X    mat.Matrix
	Y    mat.Matrix
}

// PredictFunc maps an input batch to logits. EvaluateDomains calls it from
// multiple goroutines, so it must be safe for concurrent use; hold the model
// in eval mode for the duration of the call.
type PredictFunc func(x mat.Matrix) (mat.Matrix, error)

// EvaluateDomains computes the accuracy of predict on every domain set
// concurrently and returns accuracies keyed by set name. The first failing
// domain cancels the rest; predictions are checked for NaN/Inf before
// scoring.
func EvaluateDomains(ctx context.Context, predict PredictFunc, sets []DomainSet) (map[string]float64, error) {
	if predict == nil {
		return nil, errors.NewValueError("EvaluateDomains", "nil predict function")
	}
	if len(sets) == 0 {
		return nil, errors.NewValueError("EvaluateDomains", "no domain sets")
	}
	seen := make(map[string]bool, len(sets))
	for i, set := range sets {
		if set.Name == "" {
			return nil, errors.NewValueError("EvaluateDomains", fmt.Sprintf("domain set %d has no name", i))
		}
		if seen[set.Name] {
			return nil, errors.NewValueError("EvaluateDomains", fmt.Sprintf("duplicate domain set %q", set.Name))
		}
		seen[set.Name] = true
		if set.X == nil || set.Y == nil {
			return nil, errors.NewValueError("EvaluateDomains", fmt.Sprintf("domain set %q has nil data", set.Name))
		}
	}

	logger := log.GetLoggerWithName("metrics.domains")

	g, ctx := errgroup.WithContext(ctx)
	results := make([]float64, len(sets))
	for i, set := range sets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			preds, err := predict(set.X)
			if err != nil {
				return errors.Wrapf(err, "domain %s", set.Name)
			}
			if err := errors.CheckMatrix("EvaluateDomains", preds, 0); err != nil {
				return errors.Wrapf(err, "domain %s", set.Name)
			}

			acc, err := Accuracy(preds, set.Y)
			if err != nil {
				return errors.Wrapf(err, "domain %s", set.Name)
			}
			results[i] = acc

			rows, _ := set.X.Dims()
			logger.Debug("Domain evaluated",
				log.DomainKey, set.Name,
				log.AccuracyKey, acc,
				log.SamplesKey, rows)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(sets))
	for i, set := range sets {
		out[set.Name] = results[i]
	}
	return out, nil
}
