package pipeline

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loanprep/loanprep/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Profile:         "test",
		IDColumn:        "id",
		TargetColumn:    "default",
		OriginColumn:    "origin",
		FillRateMin:     0.5,
		IQRMultiplier:   1.5,
		OutlierCountMax: 10000,
		TopFeatures:     5,
		ReferenceYear:   2018,
	}
}

const (
	trainCSV = `id,amount,default
a1,100,0
a2,200,1
a3,300,0
`
	testCSV = `id,amount
b1,150
b2,250
`
)

func TestLoadReaders(t *testing.T) {
	cfg := testConfig()

	df, err := LoadReaders(strings.NewReader(trainCSV), strings.NewReader(testCSV), cfg)
	require.NoError(t, err)
	assert.Equal(t, 5, df.Nrow())
	assert.Contains(t, df.Names(), "origin")
	assert.Contains(t, df.Names(), "default")
}

func TestUnionRoundTrip(t *testing.T) {
	cfg := testConfig()

	df, err := LoadReaders(strings.NewReader(trainCSV), strings.NewReader(testCSV), cfg)
	require.NoError(t, err)

	train, test, err := SplitOrigin(df, cfg)
	require.NoError(t, err)

	trainIDs := train.Col("id").Records()
	testIDs := test.Col("id").Records()
	sort.Strings(trainIDs)
	sort.Strings(testIDs)
	assert.Equal(t, []string{"a1", "a2", "a3"}, trainIDs)
	assert.Equal(t, []string{"b1", "b2"}, testIDs)

	// Non-target columns survive the round trip.
	assert.Equal(t, []string{"100", "200", "300"}, train.Col("amount").Records())
	assert.Equal(t, []string{"150", "250"}, test.Col("amount").Records())
}

func TestUnionIntegerCodedTestTarget(t *testing.T) {
	cfg := testConfig()
	withTarget := `id,amount,default
b1,150,0
b2,250,0
`
	df, err := LoadReaders(strings.NewReader(trainCSV), strings.NewReader(withTarget), cfg)
	require.NoError(t, err)
	assert.Equal(t, 5, df.Nrow())
}

func TestUnionSchemaMismatch(t *testing.T) {
	cfg := testConfig()

	disjoint := `id,other
b1,150
`
	_, err := LoadReaders(strings.NewReader(trainCSV), strings.NewReader(disjoint), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
	assert.Contains(t, err.Error(), "amount")

	noID := `amount
150
`
	_, err = LoadReaders(strings.NewReader(trainCSV), strings.NewReader(noID), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestUnionMissingTrainTarget(t *testing.T) {
	cfg := testConfig()
	noTarget := `id,amount
a1,100
`
	_, err := LoadReaders(strings.NewReader(noTarget), strings.NewReader(testCSV), cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}
