package regress

import "math/rand"

// TrainTestSplit shuffles rows with the seeded source and carves off the
// first testRatio share as the held-out set. The same seed always produces
// the same split.
func TrainTestSplit(x [][]float64, y []float64, testRatio float64, seed int64) (xTrain, xTest [][]float64, yTrain, yTest []float64) {
	n := len(x)
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(float64(n) * testRatio)

	for i, idx := range perm {
		if i < nTest {
			xTest = append(xTest, x[idx])
			yTest = append(yTest, y[idx])
		} else {
			xTrain = append(xTrain, x[idx])
			yTrain = append(yTrain, y[idx])
		}
	}
	return xTrain, xTest, yTrain, yTest
}
