// Package metrics implements evaluation metrics for classification over
// logit outputs, plus concurrent evaluation across domains.
package metrics

import (
	"fmt"
	"math"
	"sync/atomic"

	"gonum.org/v1/gonum/mat"

	"github.com/JacobARose/Transfer-Learning-Library/core/parallel"
	"github.com/JacobARose/Transfer-Learning-Library/pkg/errors"
)

// Rows below this count are scanned sequentially.
const parallelThreshold = 2048

// argmaxRow returns the column index of the row maximum. Ties resolve to the
// lowest index.
func argmaxRow(m mat.Matrix, row, cols int) int {
	best := 0
	bestVal := m.At(row, 0)
	for j := 1; j < cols; j++ {
		if v := m.At(row, j); v > bestVal {
			best = j
			bestVal = v
		}
	}
	return best
}

// checkLabels validates a logits/labels pair and returns the batch size.
// Labels are a (n×1) matrix of integer-valued class indices.
func checkLabels(op string, logits, labels mat.Matrix) (int, error) {
	if logits == nil || labels == nil {
		return 0, errors.NewValueError(op, "nil input matrix")
	}

	rows, cols := logits.Dims()
	if rows == 0 || cols == 0 {
		return 0, errors.NewValueError(op, "empty matrix")
	}

	lRows, lCols := labels.Dims()
	if lCols != 1 {
		return 0, errors.NewValueError(op, "labels must be a column vector (n×1 matrix)")
	}
	if lRows != rows {
		return 0, errors.NewDimensionError(op, rows, lRows, 0)
	}

	for i := 0; i < rows; i++ {
		lbl := labels.At(i, 0)
		if lbl != math.Trunc(lbl) {
			return 0, errors.NewValueError(op, fmt.Sprintf("label %v at row %d is not an integer", lbl, i))
		}
		if int(lbl) < 0 || int(lbl) >= cols {
			return 0, errors.NewValueError(op, fmt.Sprintf("label %d at row %d out of range for %d classes", int(lbl), i, cols))
		}
	}
	return rows, nil
}

// Accuracy returns the fraction of rows whose argmax logit matches the label.
// Logits are (n, numClasses); labels are a (n×1) matrix of class indices.
func Accuracy(logits, labels mat.Matrix) (float64, error) {
	rows, err := checkLabels("Accuracy", logits, labels)
	if err != nil {
		return 0, err
	}
	_, cols := logits.Dims()

	var correct int64
	parallel.ParallelizeWithThreshold(rows, parallelThreshold, func(start, end int) {
		var local int64
		for i := start; i < end; i++ {
			if argmaxRow(logits, i, cols) == int(labels.At(i, 0)) {
				local++
			}
		}
		atomic.AddInt64(&correct, local)
	})

	return float64(correct) / float64(rows), nil
}

// ErrorRate returns 1 - Accuracy.
func ErrorRate(logits, labels mat.Matrix) (float64, error) {
	acc, err := Accuracy(logits, labels)
	if err != nil {
		return 0, err
	}
	return 1 - acc, nil
}

// ConfusionMatrix returns the (numClasses × numClasses) count matrix with
// true classes as rows and predicted classes as columns. numClasses may
// exceed the logit width when the batch only covers a class subset.
func ConfusionMatrix(logits, labels mat.Matrix, numClasses int) (*mat.Dense, error) {
	if numClasses <= 0 {
		return nil, errors.NewValidationError("numClasses", "must be positive", numClasses)
	}
	rows, err := checkLabels("ConfusionMatrix", logits, labels)
	if err != nil {
		return nil, err
	}
	_, cols := logits.Dims()
	if cols > numClasses {
		return nil, errors.NewDimensionError("ConfusionMatrix", numClasses, cols, 1)
	}

	cm := mat.NewDense(numClasses, numClasses, nil)
	for i := 0; i < rows; i++ {
		truth := int(labels.At(i, 0))
		pred := argmaxRow(logits, i, cols)
		cm.Set(truth, pred, cm.At(truth, pred)+1)
	}
	return cm, nil
}

// PerClassRecall returns the recall of each class, computed from the
// confusion matrix. Classes without true samples have undefined recall; those
// entries are set to 0 and reported once per call through an
// UndefinedMetricWarning.
func PerClassRecall(logits, labels mat.Matrix, numClasses int) ([]float64, error) {
	cm, err := ConfusionMatrix(logits, labels, numClasses)
	if err != nil {
		return nil, err
	}

	recalls := make([]float64, numClasses)
	var missing []int
	for c := 0; c < numClasses; c++ {
		support := 0.0
		for j := 0; j < numClasses; j++ {
			support += cm.At(c, j)
		}
		if support == 0 {
			missing = append(missing, c)
		}
		recalls[c] = errors.SafeDivide(cm.At(c, c), support)
	}

	if len(missing) > 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("recall",
			fmt.Sprintf("no true samples for classes %v", missing), 0))
	}
	return recalls, nil
}
