package pipeline

import (
	"bytes"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/loanprep/loanprep/pkg/config"
	"github.com/loanprep/loanprep/pkg/table"
)

// ProbabilityColumn is the header of the exported probability column.
const ProbabilityColumn = "P_default"

const outFileMode = 0600

// Export writes one identifier/probability pair per test row. The whole
// output is staged in memory first, so a failure never leaves a partial
// result behind the writer.
func Export(w io.Writer, test dataframe.DataFrame, probs []float64, cfg *config.Config) error {
	if len(probs) != test.Nrow() {
		return errors.Errorf("got %d probabilities for %d test rows", len(probs), test.Nrow())
	}
	for i, p := range probs {
		if p < 0 || p > 1 {
			return errors.Errorf("probability out of range at row %d: %f", i, p)
		}
	}

	ids, err := table.Column(test, cfg.IDColumn)
	if err != nil {
		return err
	}

	out := dataframe.New(
		series.New(ids.Records(), series.String, cfg.IDColumn),
		series.New(probs, series.Float, ProbabilityColumn),
	)
	if out.Err != nil {
		return errors.Wrap(out.Err, "assembling export table")
	}

	var buf bytes.Buffer
	if err := out.WriteCSV(&buf); err != nil {
		return errors.Wrap(err, "encoding export table")
	}
	if _, err := buf.WriteTo(w); err != nil {
		return errors.Wrap(err, "writing export table")
	}
	return nil
}

// ExportFile is Export to a file path, written in one shot.
func ExportFile(path string, test dataframe.DataFrame, probs []float64, cfg *config.Config) error {
	var buf bytes.Buffer
	if err := Export(&buf, test, probs, cfg); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), outFileMode); err != nil {
		return errors.Wrapf(err, "error writing output file: %s", path)
	}
	log.WithFields(log.Fields{"path": path, "rows": len(probs)}).Debug("wrote predictions")
	return nil
}
