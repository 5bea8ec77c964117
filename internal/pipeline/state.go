package pipeline

import (
	"github.com/JakeFAU/yoweb-scraper/internal/model"
	"github.com/JakeFAU/yoweb-scraper/internal/stage"
)

// Stage names, also used as log and metric labels.
const (
	StageCrews       = "crews"
	StageCrewDetails = "crew_details"
	StagePirateURLs  = "pirate_urls"
	StagePirates     = "pirates"
	StageShoppes     = "shoppes"
	StageFinalize    = "finalize"
)

// StageOutput is what one stage contributes to the run state.
type StageOutput[T any] struct {
	Rows     []T
	Failures []model.Failure
	Summary  stage.Summary
}

func outputOf[T any](res stage.Result[T]) *StageOutput[T] {
	return &StageOutput[T]{Rows: res.Rows, Failures: res.Failures, Summary: res.Summary}
}

// State accumulates stage outputs. Each stage receives a State and returns a
// new one with exactly its own field set; a nil field means the producing
// stage has not run. Outputs are never modified once set.
type State struct {
	Crews       *StageOutput[model.Crew]
	CrewDetails *StageOutput[model.CrewDetail]
	PirateURLs  *StageOutput[model.PirateURL]
	Pirates     *StageOutput[model.Pirate]
	Shoppes     *StageOutput[model.Shop]
}

// Summaries returns the summaries of the stages that have run, in stage
// order.
func (s State) Summaries() []stage.Summary {
	var out []stage.Summary
	if s.Crews != nil {
		out = append(out, s.Crews.Summary)
	}
	if s.CrewDetails != nil {
		out = append(out, s.CrewDetails.Summary)
	}
	if s.PirateURLs != nil {
		out = append(out, s.PirateURLs.Summary)
	}
	if s.Pirates != nil {
		out = append(out, s.Pirates.Summary)
	}
	if s.Shoppes != nil {
		out = append(out, s.Shoppes.Summary)
	}
	return out
}

// crewURLs returns the de-duplicated crew URLs from the crews output.
func (s State) crewURLs() []string {
	keys := make([]string, 0, len(s.Crews.Rows))
	for _, c := range s.Crews.Rows {
		keys = append(keys, c.URL)
	}
	return stage.UniqueKeys(keys)
}

// pirateURLs returns the de-duplicated pirate URLs from the member lists.
func (s State) pirateURLs() []string {
	keys := make([]string, 0, len(s.PirateURLs.Rows))
	for _, p := range s.PirateURLs.Rows {
		keys = append(keys, p.PirateURL)
	}
	return stage.UniqueKeys(keys)
}
