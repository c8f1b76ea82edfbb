// Package classifier provides the coverage-tendency model: an L2-regularized
// logistic regression fit by full-batch gradient descent. Training is fully
// deterministic so repeated runs over the same data produce the same
// artifact.
package classifier

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Options controls the gradient-descent fit.
type Options struct {
	Epochs       int
	LearningRate float64
	L2           float64
}

// DefaultOptions returns the fit parameters used in production training.
func DefaultOptions() Options {
	return Options{Epochs: 400, LearningRate: 0.1, L2: 1e-4}
}

// Model is a fitted logistic regression. Feature standardization parameters
// are carried with the weights so inference reproduces the training-time
// scaling exactly.
type Model struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
	Means   []float64 `json:"means"`
	Stds    []float64 `json:"stds"`
}

// Fit trains on the encoded design matrix X (rows = samples) against binary
// labels y in {0,1}.
func Fit(X *mat.Dense, y []float64, opts Options) (*Model, error) {
	n, d := X.Dims()
	if n == 0 || d == 0 {
		return nil, fmt.Errorf("fit: empty design matrix (%dx%d)", n, d)
	}
	if len(y) != n {
		return nil, fmt.Errorf("fit: %d labels for %d rows", len(y), n)
	}

	m := &Model{
		Weights: make([]float64, d),
		Means:   make([]float64, d),
		Stds:    make([]float64, d),
	}

	// Standardize columns; constant columns keep std=1 so they contribute
	// nothing after centering.
	Z := mat.NewDense(n, d, nil)
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, X)
		mean, std := stat.MeanStdDev(col, nil)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		m.Means[j], m.Stds[j] = mean, std
		for i := 0; i < n; i++ {
			Z.Set(i, j, (col[i]-mean)/std)
		}
	}

	w := mat.NewVecDense(d, nil)
	z := mat.NewVecDense(n, nil)
	diff := make([]float64, n)
	grad := mat.NewVecDense(d, nil)

	for epoch := 0; epoch < opts.Epochs; epoch++ {
		z.MulVec(Z, w)
		var biasGrad float64
		for i := 0; i < n; i++ {
			p := sigmoid(z.AtVec(i) + m.Bias)
			diff[i] = p - y[i]
			biasGrad += diff[i]
		}
		grad.MulVec(Z.T(), mat.NewVecDense(n, diff))
		grad.ScaleVec(1/float64(n), grad)
		grad.AddScaledVec(grad, opts.L2, w)

		w.AddScaledVec(w, -opts.LearningRate, grad)
		m.Bias -= opts.LearningRate * biasGrad / float64(n)
	}

	copy(m.Weights, w.RawVector().Data)
	return m, nil
}

// PredictProba returns P(covered) for one encoded feature vector.
func (m *Model) PredictProba(x []float64) float64 {
	z := m.Bias
	scaled := make([]float64, len(x))
	for j := range x {
		scaled[j] = (x[j] - m.Means[j]) / m.Stds[j]
	}
	z += floats.Dot(m.Weights, scaled)
	return sigmoid(z)
}

// Validate checks a deserialized model for structural sanity against the
// expected feature width.
func (m *Model) Validate(width int) error {
	if len(m.Weights) != width {
		return fmt.Errorf("model has %d weights, encoder produces %d features", len(m.Weights), width)
	}
	if len(m.Means) != width || len(m.Stds) != width {
		return fmt.Errorf("model scaling vectors do not match feature width %d", width)
	}
	for j, s := range m.Stds {
		if s == 0 {
			return fmt.Errorf("model std[%d] is zero", j)
		}
	}
	return nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
