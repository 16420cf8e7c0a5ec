package pipeline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportFixture() dataframe.DataFrame {
	return dataframe.New(
		series.New([]string{"b1", "b2"}, series.String, "id"),
		series.New([]float64{1, 2}, series.Float, "x"),
	)
}

func TestExport(t *testing.T) {
	cfg := testConfig()

	var buf bytes.Buffer
	err := Export(&buf, exportFixture(), []float64{0.25, 0.75}, cfg)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,"+ProbabilityColumn, lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "b1,"))
	assert.True(t, strings.HasPrefix(lines[2], "b2,"))
}

func TestExportRowCountMismatch(t *testing.T) {
	cfg := testConfig()

	var buf bytes.Buffer
	err := Export(&buf, exportFixture(), []float64{0.25}, cfg)
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestExportProbabilityRange(t *testing.T) {
	cfg := testConfig()

	var buf bytes.Buffer
	err := Export(&buf, exportFixture(), []float64{0.25, 1.5}, cfg)
	assert.Error(t, err)
	assert.Zero(t, buf.Len())

	err = Export(&buf, exportFixture(), []float64{-0.1, 0.5}, cfg)
	assert.Error(t, err)
	assert.Zero(t, buf.Len())
}
