package model

import (
	"math"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/sjwhitworth/golearn/base"
	"github.com/sjwhitworth/golearn/ensemble"
	"github.com/sjwhitworth/golearn/evaluation"
)

// Forest is a golearn random-forest classifier behind the Classifier
// interface. Tables are handed to golearn through temporary CSV files, with
// the test file parsed against the train template so attribute mappings
// line up.
type Forest struct {
	Trees         int
	Features      int
	PositiveClass string
}

// NewForest returns a Forest with the given tree count. A non-positive
// feature count means sqrt of the feature columns at fit time.
func NewForest(trees int, positiveClass string) *Forest {
	return &Forest{Trees: trees, PositiveClass: positiveClass}
}

// FitPredict trains on the train partition and returns the positive-class
// probability per test row. golearn's forest votes hard labels, so the
// probabilities are degenerate 0/1 values; they still satisfy the [0, 1]
// export contract.
func (f *Forest) FitPredict(train, test dataframe.DataFrame, target string) ([]float64, error) {
	trainEnc, err := EncodeNumeric(train, target)
	if err != nil {
		return nil, err
	}
	testEnc, err := EncodeNumeric(test, target)
	if err != nil {
		return nil, err
	}

	trainEnc = targetLast(trainEnc, target)
	testEnc = targetLast(padTarget(testEnc, trainEnc, target), target)

	trainPath, cleanTrain, err := writeTempCSV(trainEnc)
	if err != nil {
		return nil, err
	}
	defer cleanTrain()
	testPath, cleanTest, err := writeTempCSV(testEnc)
	if err != nil {
		return nil, err
	}
	defer cleanTest()

	trainInst, err := base.ParseCSVToInstances(trainPath, true)
	if err != nil {
		return nil, errors.Wrap(err, "parsing train instances")
	}
	testInst, err := base.ParseCSVToTemplatedInstances(testPath, true, trainInst)
	if err != nil {
		return nil, errors.Wrap(err, "parsing test instances")
	}

	features := f.Features
	max := trainEnc.Ncol() - 1
	if features <= 0 {
		features = int(math.Sqrt(float64(max)))
	}
	if features < 1 {
		features = 1
	}
	if features > max {
		features = max
	}

	rf := ensemble.NewRandomForest(f.Trees, features)
	if err := rf.Fit(trainInst); err != nil {
		return nil, errors.Wrap(err, "fitting random forest")
	}

	if fitPreds, err := rf.Predict(trainInst); err == nil {
		if cm, err := evaluation.GetConfusionMatrix(trainInst, fitPreds); err == nil {
			log.WithField("accuracy", evaluation.GetAccuracy(cm)).Debug("train fit")
		}
	}

	preds, err := rf.Predict(testInst)
	if err != nil {
		return nil, errors.Wrap(err, "predicting test instances")
	}

	probs := make([]float64, test.Nrow())
	for i := range probs {
		if base.GetClass(preds, i) == f.PositiveClass {
			probs[i] = 1
		}
	}
	return probs, nil
}

// padTarget fills the test partition's target with the train partition's
// first label so the templated CSV parse sees a known category. The filler
// never reaches the predictions.
func padTarget(test, train dataframe.DataFrame, target string) dataframe.DataFrame {
	filler := train.Col(target).Records()[0]
	vals := make([]string, test.Nrow())
	for i := range vals {
		vals[i] = filler
	}
	return test.Mutate(series.New(vals, series.String, target))
}

// targetLast reorders columns so golearn treats the target as the class
// attribute.
func targetLast(df dataframe.DataFrame, target string) dataframe.DataFrame {
	names := make([]string, 0, df.Ncol())
	for _, n := range df.Names() {
		if n != target {
			names = append(names, n)
		}
	}
	return df.Select(append(names, target))
}

func writeTempCSV(df dataframe.DataFrame) (string, func(), error) {
	f, err := os.CreateTemp("", "loanprep-*.csv")
	if err != nil {
		return "", nil, errors.Wrap(err, "creating temp file")
	}
	if err := df.WriteCSV(f); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", nil, errors.Wrap(err, "writing temp csv")
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", nil, errors.Wrap(err, "closing temp csv")
	}
	return f.Name(), func() { os.Remove(f.Name()) }, nil
}
