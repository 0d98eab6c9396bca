package classifier

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// Model is a one-vs-rest linear SVM trained with stochastic subgradient
// descent on the hinge loss (Pegasos). Weights are dense; with a 5000-term
// vocabulary and a handful of classes that is a few hundred KB.
type Model struct {
	Weights [][]float64 // one row per class
	Bias    []float64
	Epochs  int
	Lambda  float64
}

const (
	defaultEpochs = 25
	defaultLambda = 1e-4
)

// TrainModel fits the model on dense TF-IDF rows x with class indices y.
func TrainModel(x [][]float64, y []int, classes int, seed uint64) *Model {
	m := &Model{
		Weights: make([][]float64, classes),
		Bias:    make([]float64, classes),
		Epochs:  defaultEpochs,
		Lambda:  defaultLambda,
	}
	if len(x) == 0 {
		return m
	}
	dim := len(x[0])
	for c := range m.Weights {
		m.Weights[c] = make([]float64, dim)
	}

	rng := rand.New(rand.NewPCG(seed, 0))
	t := 1
	for epoch := 0; epoch < m.Epochs; epoch++ {
		for _, i := range rng.Perm(len(x)) {
			eta := 1 / (m.Lambda * float64(t))
			for c := 0; c < classes; c++ {
				target := -1.0
				if y[i] == c {
					target = 1.0
				}
				w := m.Weights[c]
				margin := target * (floats.Dot(w, x[i]) + m.Bias[c])
				floats.Scale(1-eta*m.Lambda, w)
				if margin < 1 {
					floats.AddScaled(w, eta*target, x[i])
					m.Bias[c] += eta * target
				}
			}
			t++
		}
	}
	return m
}

// Decision returns the per-class decision scores for one row.
func (m *Model) Decision(x []float64) []float64 {
	scores := make([]float64, len(m.Weights))
	for c, w := range m.Weights {
		scores[c] = floats.Dot(w, x) + m.Bias[c]
	}
	return scores
}

// Predict returns the class index with the highest decision score.
func (m *Model) Predict(x []float64) int {
	return floats.MaxIdx(m.Decision(x))
}

// Accuracy scores the model on a labeled set.
func (m *Model) Accuracy(x [][]float64, y []int) float64 {
	if len(x) == 0 {
		return 0
	}
	correct := 0
	for i := range x {
		if m.Predict(x[i]) == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(x))
}

// Dim returns the feature width the model was trained on.
func (m *Model) Dim() int {
	if len(m.Weights) == 0 {
		return 0
	}
	return len(m.Weights[0])
}

// NumClasses returns the size of the label space.
func (m *Model) NumClasses() int { return len(m.Weights) }
