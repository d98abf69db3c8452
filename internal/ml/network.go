package ml

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Network hyperparameters. The architecture is fixed:
// dense(128, relu, L2) -> dropout(0.3) -> dense(64, relu, L2) ->
// dropout(0.2) -> softmax over the full taxonomy, trained with Adam
// minimizing categorical cross-entropy.
const (
	hiddenOne    = 128
	hiddenTwo    = 64
	dropoutOne   = 0.3
	dropoutTwo   = 0.2
	l2Lambda     = 0.01
	learningRate = 0.001
	adamBeta1    = 0.9
	adamBeta2    = 0.999
	adamEpsilon  = 1e-8
	batchSize    = 32
)

const stateVersion = 1

// network is a three-layer feed-forward classifier over dense float
// features. It is not safe for concurrent use; the categorizer serializes
// access to it.
type network struct {
	rng *rand.Rand

	w1, b1 *mat.Dense
	w2, b2 *mat.Dense
	w3, b3 *mat.Dense

	// Adam moment estimates, parallel to the parameters above.
	mw1, vw1, mb1, vb1 *mat.Dense
	mw2, vw2, mb2, vb2 *mat.Dense
	mw3, vw3, mb3, vb3 *mat.Dense
	step               int

	inputSize  int
	outputSize int
}

func newNetwork(inputSize, outputSize int, rng *rand.Rand) *network {
	n := &network{
		rng:        rng,
		inputSize:  inputSize,
		outputSize: outputSize,
	}

	n.w1 = glorotDense(inputSize, hiddenOne, rng)
	n.b1 = mat.NewDense(1, hiddenOne, nil)
	n.w2 = glorotDense(hiddenOne, hiddenTwo, rng)
	n.b2 = mat.NewDense(1, hiddenTwo, nil)
	n.w3 = glorotDense(hiddenTwo, outputSize, rng)
	n.b3 = mat.NewDense(1, outputSize, nil)

	n.resetOptimizer()
	return n
}

func (n *network) resetOptimizer() {
	n.mw1 = zerosLike(n.w1)
	n.vw1 = zerosLike(n.w1)
	n.mb1 = zerosLike(n.b1)
	n.vb1 = zerosLike(n.b1)
	n.mw2 = zerosLike(n.w2)
	n.vw2 = zerosLike(n.w2)
	n.mb2 = zerosLike(n.b2)
	n.vb2 = zerosLike(n.b2)
	n.mw3 = zerosLike(n.w3)
	n.vw3 = zerosLike(n.w3)
	n.mb3 = zerosLike(n.b3)
	n.vb3 = zerosLike(n.b3)
	n.step = 0
}

// glorotDense initializes a weight matrix with Glorot uniform values.
func glorotDense(fanIn, fanOut int, rng *rand.Rand) *mat.Dense {
	limit := math.Sqrt(6.0 / float64(fanIn+fanOut))
	data := make([]float64, fanIn*fanOut)
	for i := range data {
		data[i] = (rng.Float64()*2 - 1) * limit
	}
	return mat.NewDense(fanIn, fanOut, data)
}

func zerosLike(m *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	return mat.NewDense(r, c, nil)
}

// fitResult carries per-epoch training metrics.
type fitResult struct {
	loss     float64
	accuracy float64
}

// fit trains the network for the requested epochs over the feature matrix x
// and one-hot label matrix y, shuffling each epoch and holding out the
// trailing validationSplit fraction. It returns the final epoch's training
// loss and accuracy. onEpoch, when non-nil, observes each completed epoch.
func (n *network) fit(x, y [][]float64, epochs int, validationSplit float64, onEpoch func(epoch int, loss, accuracy float64)) (fitResult, error) {
	if len(x) == 0 {
		return fitResult{}, fmt.Errorf("empty feature matrix")
	}
	if len(x) != len(y) {
		return fitResult{}, fmt.Errorf("feature/label length mismatch: %d vs %d", len(x), len(y))
	}

	// Hold out the trailing fraction for validation before shuffling.
	trainCount := len(x) - int(float64(len(x))*validationSplit)
	if trainCount < 1 {
		trainCount = 1
	}

	indices := make([]int, trainCount)
	for i := range indices {
		indices[i] = i
	}

	var result fitResult
	for epoch := 0; epoch < epochs; epoch++ {
		n.rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		var epochLoss float64
		var correct, seen int

		for start := 0; start < len(indices); start += batchSize {
			end := start + batchSize
			if end > len(indices) {
				end = len(indices)
			}
			batch := indices[start:end]

			xb := rowsDense(x, batch)
			yb := rowsDense(y, batch)

			loss, hits := n.trainBatch(xb, yb)
			epochLoss += loss * float64(len(batch))
			correct += hits
			seen += len(batch)
		}

		result.loss = epochLoss / float64(seen)
		result.accuracy = float64(correct) / float64(seen)

		if onEpoch != nil {
			onEpoch(epoch+1, result.loss, result.accuracy)
		}
	}

	return result, nil
}

// trainBatch runs one forward/backward pass with dropout and applies an
// Adam update. It returns the batch's mean loss and correct predictions.
func (n *network) trainBatch(xb, yb *mat.Dense) (float64, int) {
	rows, _ := xb.Dims()

	// Forward with inverted dropout.
	z1 := linear(xb, n.w1, n.b1)
	a1 := applyRelu(z1)
	mask1 := n.dropoutMask(a1, dropoutOne)
	a1.MulElem(a1, mask1)

	z2 := linear(a1, n.w2, n.b2)
	a2 := applyRelu(z2)
	mask2 := n.dropoutMask(a2, dropoutTwo)
	a2.MulElem(a2, mask2)

	z3 := linear(a2, n.w3, n.b3)
	probs := softmaxRows(z3)

	loss := crossEntropy(probs, yb) + n.l2Penalty()
	hits := countArgmaxMatches(probs, yb)

	// Backward. Softmax with cross-entropy gives dZ3 = (P - Y) / batch.
	dz3 := &mat.Dense{}
	dz3.Sub(probs, yb)
	dz3.Scale(1/float64(rows), dz3)

	gw3 := gradWithL2(a2, dz3, n.w3)
	gb3 := columnSums(dz3)

	da2 := &mat.Dense{}
	da2.Mul(dz3, n.w3.T())
	da2.MulElem(da2, mask2)
	dz2 := reluBackward(da2, z2)

	gw2 := gradWithL2(a1, dz2, n.w2)
	gb2 := columnSums(dz2)

	da1 := &mat.Dense{}
	da1.Mul(dz2, n.w2.T())
	da1.MulElem(da1, mask1)
	dz1 := reluBackward(da1, z1)

	gw1 := gradWithL2(xb, dz1, n.w1)
	gb1 := columnSums(dz1)

	n.step++
	adamUpdate(n.w1, gw1, n.mw1, n.vw1, n.step)
	adamUpdate(n.b1, gb1, n.mb1, n.vb1, n.step)
	adamUpdate(n.w2, gw2, n.mw2, n.vw2, n.step)
	adamUpdate(n.b2, gb2, n.mb2, n.vb2, n.step)
	adamUpdate(n.w3, gw3, n.mw3, n.vw3, n.step)
	adamUpdate(n.b3, gb3, n.mb3, n.vb3, n.step)

	return loss, hits
}

// predict runs inference (no dropout) and returns per-row class
// probabilities.
func (n *network) predict(x [][]float64) [][]float64 {
	all := make([]int, len(x))
	for i := range all {
		all[i] = i
	}
	xb := rowsDense(x, all)

	z1 := linear(xb, n.w1, n.b1)
	a1 := applyRelu(z1)
	z2 := linear(a1, n.w2, n.b2)
	a2 := applyRelu(z2)
	z3 := linear(a2, n.w3, n.b3)
	probs := softmaxRows(z3)

	rows, cols := probs.Dims()
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, cols)
		for j := 0; j < cols; j++ {
			row[j] = probs.At(i, j)
		}
		out[i] = row
	}
	return out
}

func (n *network) l2Penalty() float64 {
	return l2Lambda * (sumSquares(n.w1) + sumSquares(n.w2) + sumSquares(n.w3))
}

// dropoutMask builds an inverted-dropout mask shaped like m: surviving
// units are scaled by 1/(1-rate) so inference needs no rescaling.
func (n *network) dropoutMask(m *mat.Dense, rate float64) *mat.Dense {
	mask := zerosLike(m)
	scale := 1 / (1 - rate)
	data := mask.RawMatrix().Data
	for i := range data {
		if n.rng.Float64() >= rate {
			data[i] = scale
		}
	}
	return mask
}

// linear computes x*w + b with b broadcast across rows.
func linear(x, w, b *mat.Dense) *mat.Dense {
	out := &mat.Dense{}
	out.Mul(x, w)

	rows, cols := out.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, out.At(i, j)+b.At(0, j))
		}
	}
	return out
}

func applyRelu(z *mat.Dense) *mat.Dense {
	out := &mat.Dense{}
	out.Apply(func(_, _ int, v float64) float64 {
		return math.Max(0, v)
	}, z)
	return out
}

// reluBackward gates upstream gradients by relu'(z).
func reluBackward(upstream, z *mat.Dense) *mat.Dense {
	out := &mat.Dense{}
	out.Apply(func(i, j int, v float64) float64 {
		if z.At(i, j) > 0 {
			return v
		}
		return 0
	}, upstream)
	return out
}

// softmaxRows applies a numerically stable softmax to each row.
func softmaxRows(z *mat.Dense) *mat.Dense {
	rows, cols := z.Dims()
	out := mat.NewDense(rows, cols, nil)

	for i := 0; i < rows; i++ {
		rowMax := math.Inf(-1)
		for j := 0; j < cols; j++ {
			rowMax = math.Max(rowMax, z.At(i, j))
		}

		var sum float64
		for j := 0; j < cols; j++ {
			e := math.Exp(z.At(i, j) - rowMax)
			out.Set(i, j, e)
			sum += e
		}
		for j := 0; j < cols; j++ {
			out.Set(i, j, out.At(i, j)/sum)
		}
	}
	return out
}

// crossEntropy returns the mean categorical cross-entropy of probabilities
// p against one-hot labels y.
func crossEntropy(p, y *mat.Dense) float64 {
	rows, cols := p.Dims()
	var total float64
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if y.At(i, j) > 0 {
				total -= math.Log(math.Max(p.At(i, j), 1e-12))
			}
		}
	}
	return total / float64(rows)
}

func countArgmaxMatches(p, y *mat.Dense) int {
	rows, _ := p.Dims()
	hits := 0
	for i := 0; i < rows; i++ {
		if argmaxRow(p, i) == argmaxRow(y, i) {
			hits++
		}
	}
	return hits
}

// argmaxRow returns the first index holding the row's maximum (stable
// argmax).
func argmaxRow(m *mat.Dense, row int) int {
	_, cols := m.Dims()
	best := 0
	bestVal := m.At(row, 0)
	for j := 1; j < cols; j++ {
		if m.At(row, j) > bestVal {
			best = j
			bestVal = m.At(row, j)
		}
	}
	return best
}

// gradWithL2 computes activations^T * delta plus the L2 weight penalty
// gradient.
func gradWithL2(activations, delta, weights *mat.Dense) *mat.Dense {
	grad := &mat.Dense{}
	grad.Mul(activations.T(), delta)

	reg := &mat.Dense{}
	reg.Scale(2*l2Lambda, weights)
	grad.Add(grad, reg)
	return grad
}

func columnSums(m *mat.Dense) *mat.Dense {
	rows, cols := m.Dims()
	out := mat.NewDense(1, cols, nil)
	for j := 0; j < cols; j++ {
		var sum float64
		for i := 0; i < rows; i++ {
			sum += m.At(i, j)
		}
		out.Set(0, j, sum)
	}
	return out
}

func sumSquares(m *mat.Dense) float64 {
	var sum float64
	for _, v := range m.RawMatrix().Data {
		sum += v * v
	}
	return sum
}

// adamUpdate applies one Adam step to param in place.
func adamUpdate(param, grad, m, v *mat.Dense, step int) {
	pd := param.RawMatrix().Data
	gd := grad.RawMatrix().Data
	md := m.RawMatrix().Data
	vd := v.RawMatrix().Data

	bias1 := 1 - math.Pow(adamBeta1, float64(step))
	bias2 := 1 - math.Pow(adamBeta2, float64(step))

	for i := range pd {
		md[i] = adamBeta1*md[i] + (1-adamBeta1)*gd[i]
		vd[i] = adamBeta2*vd[i] + (1-adamBeta2)*gd[i]*gd[i]

		mHat := md[i] / bias1
		vHat := vd[i] / bias2

		pd[i] -= learningRate * mHat / (math.Sqrt(vHat) + adamEpsilon)
	}
}

// rowsDense assembles the selected rows into a dense matrix.
func rowsDense(data [][]float64, indices []int) *mat.Dense {
	cols := len(data[indices[0]])
	out := mat.NewDense(len(indices), cols, nil)
	for i, idx := range indices {
		out.SetRow(i, data[idx])
	}
	return out
}

// networkState is the serialized form of the model: architecture sizes plus
// weights. A version field makes future format changes detectable instead
// of silently breaking import.
type networkState struct {
	Version    int         `json:"version"`
	InputSize  int         `json:"inputSize"`
	OutputSize int         `json:"outputSize"`
	W1         [][]float64 `json:"w1"`
	B1         [][]float64 `json:"b1"`
	W2         [][]float64 `json:"w2"`
	B2         [][]float64 `json:"b2"`
	W3         [][]float64 `json:"w3"`
	B3         [][]float64 `json:"b3"`
}

func (n *network) marshal() ([]byte, error) {
	return json.Marshal(networkState{
		Version:    stateVersion,
		InputSize:  n.inputSize,
		OutputSize: n.outputSize,
		W1:         denseRows(n.w1),
		B1:         denseRows(n.b1),
		W2:         denseRows(n.w2),
		B2:         denseRows(n.b2),
		W3:         denseRows(n.w3),
		B3:         denseRows(n.b3),
	})
}

func unmarshalNetwork(data []byte, rng *rand.Rand) (*network, error) {
	var state networkState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse model: %w", err)
	}
	if state.Version != stateVersion {
		return nil, fmt.Errorf("unsupported model version %d", state.Version)
	}
	if state.InputSize <= 0 || state.OutputSize <= 0 {
		return nil, fmt.Errorf("invalid model architecture: input %d, output %d",
			state.InputSize, state.OutputSize)
	}

	// Every matrix must match the declared architecture; a mismatched blob
	// would otherwise panic deep inside the first inference.
	layers := []struct {
		name string
		raw  [][]float64
		rows int
		cols int
	}{
		{"w1", state.W1, state.InputSize, hiddenOne},
		{"b1", state.B1, 1, hiddenOne},
		{"w2", state.W2, hiddenOne, hiddenTwo},
		{"b2", state.B2, 1, hiddenTwo},
		{"w3", state.W3, hiddenTwo, state.OutputSize},
		{"b3", state.B3, 1, state.OutputSize},
	}

	parsed := make([]*mat.Dense, len(layers))
	for i, layer := range layers {
		m, err := denseFromRows(layer.raw)
		if err != nil {
			return nil, fmt.Errorf("model weights %s: %w", layer.name, err)
		}
		rows, cols := m.Dims()
		if rows != layer.rows || cols != layer.cols {
			return nil, fmt.Errorf("model weights %s: got %dx%d, want %dx%d",
				layer.name, rows, cols, layer.rows, layer.cols)
		}
		parsed[i] = m
	}

	n := newNetwork(state.InputSize, state.OutputSize, rng)
	n.w1, n.b1 = parsed[0], parsed[1]
	n.w2, n.b2 = parsed[2], parsed[3]
	n.w3, n.b3 = parsed[4], parsed[5]
	n.resetOptimizer()
	return n, nil
}

func denseRows(m *mat.Dense) [][]float64 {
	rows, cols := m.Dims()
	out := make([][]float64, rows)
	for i := 0; i < rows; i++ {
		row := make([]float64, cols)
		for j := 0; j < cols; j++ {
			row[j] = m.At(i, j)
		}
		out[i] = row
	}
	return out
}

func denseFromRows(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("empty weight matrix")
	}

	cols := len(rows[0])
	out := mat.NewDense(len(rows), cols, nil)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("ragged weight matrix at row %d", i)
		}
		out.SetRow(i, row)
	}
	return out, nil
}
