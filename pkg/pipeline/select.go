package pipeline

import (
	"sort"

	"github.com/go-gota/gota/dataframe"
	log "github.com/sirupsen/logrus"

	"github.com/loanprep/loanprep/pkg/config"
	"github.com/loanprep/loanprep/pkg/model"
	"github.com/loanprep/loanprep/pkg/table"
)

// RankerInput assembles the exact table the external importance ranker
// expects: train rows only, target plus every engineered feature, no
// identifier or provenance columns.
func RankerInput(df dataframe.DataFrame, cfg *config.Config) (dataframe.DataFrame, error) {
	train, err := table.FilterEq(df, cfg.OriginColumn, OriginTrain)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	if train, err = table.DropColumn(train, cfg.OriginColumn); err != nil {
		return dataframe.DataFrame{}, err
	}
	return table.DropColumn(train, cfg.IDColumn)
}

// SelectFeatures keeps the top-N feature names from a ranking. The choice is
// deterministic regardless of the ranker's own ordering: a stable descending
// sort on score with ties broken by original column order, then a union with
// the must-keep list. Must-keep names not present in the ranked set are
// ignored.
func SelectFeatures(scores []model.FeatureScore, columnOrder []string, cfg *config.Config) []string {
	pos := make(map[string]int, len(columnOrder))
	for i, n := range columnOrder {
		pos[n] = i
	}

	ranked := make([]model.FeatureScore, len(scores))
	copy(ranked, scores)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return pos[ranked[i].Name] < pos[ranked[j].Name]
	})

	n := cfg.TopFeatures
	if n > len(ranked) {
		n = len(ranked)
	}

	selected := make([]string, 0, n+len(cfg.MustKeep))
	chosen := make(map[string]bool, n)
	for _, fs := range ranked[:n] {
		selected = append(selected, fs.Name)
		chosen[fs.Name] = true
	}
	for _, name := range cfg.MustKeep {
		if chosen[name] {
			continue
		}
		if _, ok := pos[name]; !ok {
			log.WithField("feature", name).Warn("must-keep feature not in table, skipping")
			continue
		}
		selected = append(selected, name)
		chosen[name] = true
	}
	return selected
}
