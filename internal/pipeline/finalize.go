package pipeline

import (
	"time"

	"github.com/JakeFAU/yoweb-scraper/internal/dataset"
	"github.com/JakeFAU/yoweb-scraper/internal/derive"
	"github.com/JakeFAU/yoweb-scraper/internal/model"
)

// FormatStamp renders the run's update marker.
func FormatStamp(t time.Time) string {
	return derive.Stamp(t)
}

// Finalize derives the royal roster and emits every output table in Outputs
// order. Non-empty data tables gain the stamp column, all with the same value.
// Failure tables are left as they are.
func Finalize(s State, now time.Time) ([]model.Royal, []dataset.Table, error) {
	for _, req := range []struct {
		present  bool
		producer string
	}{
		{s.Crews != nil, StageCrews},
		{s.CrewDetails != nil, StageCrewDetails},
		{s.PirateURLs != nil, StagePirateURLs},
		{s.Pirates != nil, StagePirates},
		{s.Shoppes != nil, StageShoppes},
	} {
		if !req.present {
			return nil, nil, missing(StageFinalize, req.producer)
		}
	}

	royals := derive.Royals(s.Pirates.Rows)
	byOutput := map[Output]dataset.Table{
		OutCrews:             dataset.New(OutCrews.String(), model.Crew{}.Columns(), s.Crews.Rows),
		OutCrewDetails:       dataset.New(OutCrewDetails.String(), model.CrewDetail{}.Columns(), s.CrewDetails.Rows),
		OutPirateURLs:        dataset.New(OutPirateURLs.String(), model.PirateURL{}.Columns(), s.PirateURLs.Rows),
		OutPirates:           dataset.New(OutPirates.String(), model.Pirate{}.Columns(), s.Pirates.Rows),
		OutShoppes:           dataset.New(OutShoppes.String(), model.Shop{}.Columns(), s.Shoppes.Rows),
		OutRoyals:            dataset.New(OutRoyals.String(), model.Royal{}.Columns(), royals),
		OutCrewFailures:      failureTable(OutCrewFailures, "Crew URL", s.CrewDetails.Failures),
		OutPirateURLFailures: failureTable(OutPirateURLFailures, "Crew URL", s.PirateURLs.Failures),
		OutPirateFailures:    failureTable(OutPirateFailures, "Pirate URL", s.Pirates.Failures),
		OutShoppeFailures:    failureTable(OutShoppeFailures, "Pirate URL", s.Shoppes.Failures),
	}

	stamp := FormatStamp(now)
	tables := make([]dataset.Table, 0, len(Outputs))
	for _, out := range Outputs {
		t := byOutput[out]
		if out.Stamped() && !t.Empty() {
			t = t.WithColumn(derive.StampColumn, stamp)
		}
		tables = append(tables, t)
	}
	return royals, tables, nil
}

func failureTable(out Output, keyColumn string, failures []model.Failure) dataset.Table {
	return dataset.New(out.String(), model.FailureColumns(keyColumn), failures)
}
