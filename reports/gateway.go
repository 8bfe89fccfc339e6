// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package reports

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pkg/errors"

	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/models"
)

// Source is the read side of an election manager. *election.Manager
// satisfies it.
type Source interface {
	State(ctx context.Context, electionID string) (models.ElectionState, error)
	ApprovedVoterInfo(ctx context.Context, caller, electionID string) ([]models.VoterInfo, error)
	Results(ctx context.Context, electionID string) (models.Election, []models.CandidateResult, error)
}

var _ Source = (*election.Manager)(nil)

// Gateway produces voter, participation and result reports from one
// election manager. It never writes to it. Electorate reads are made
// under the gateway's own reference, which the manager's admin binds
// with BindReportingGateway.
type Gateway struct {
	ref    string
	source Source
	logger *slog.Logger
}

func NewGateway(ref string, source Source, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		ref:    strings.TrimSpace(ref),
		source: source,
		logger: logger,
	}
}

// Ref is the reference the manager must have bound for this gateway.
func (g *Gateway) Ref() string {
	return g.ref
}

// VoterReport lists the approved electors of an election in any state.
func (g *Gateway) VoterReport(ctx context.Context, electionID string) (models.VoterReport, error) {
	voters, err := g.source.ApprovedVoterInfo(ctx, g.ref, electionID)
	if err != nil {
		return models.VoterReport{}, err
	}

	report := models.VoterReport{
		ElectionID: electionID,
		Voters:     make([]models.VoterReportEntry, 0, len(voters)),
	}
	for _, v := range voters {
		report.Voters = append(report.Voters, models.VoterReportEntry{
			Identity: v.Identity,
			Name:     v.Name,
			Surname:  v.Surname,
		})
	}

	g.logger.Debug("voter report built", "election_id", electionID, "voters", len(report.Voters))
	return report, nil
}

// ParticipationReport counts votes cast against approved electors. It is
// available once the election has opened.
func (g *Gateway) ParticipationReport(ctx context.Context, electionID string) (models.ParticipationReport, error) {
	state, err := g.source.State(ctx, electionID)
	if err != nil {
		return models.ParticipationReport{}, err
	}
	switch state {
	case models.StateOpen, models.StateClosed:
	case models.StateCreated:
		return models.ParticipationReport{}, election.ErrElectionNotOpen
	default:
		return models.ParticipationReport{}, errors.Wrapf(election.ErrInvalidState, "election state %q", state)
	}

	voters, err := g.source.ApprovedVoterInfo(ctx, g.ref, electionID)
	if err != nil {
		return models.ParticipationReport{}, err
	}

	report := models.ParticipationReport{
		ElectionID:       electionID,
		State:            state,
		ApprovedElectors: len(voters),
	}
	for _, v := range voters {
		if v.HasVoted {
			report.VotesCast++
		}
	}
	report.Percentage = percentage(report.VotesCast, report.ApprovedElectors)

	g.logger.Debug("participation report built", "election_id", electionID, "state", state)
	return report, nil
}

// ResultReport returns the ranked results of a closed election. It fails
// with election.ErrElectionNotClosed otherwise.
func (g *Gateway) ResultReport(ctx context.Context, electionID string) (models.ResultReport, error) {
	e, results, err := g.source.Results(ctx, electionID)
	if err != nil {
		return models.ResultReport{}, err
	}

	g.logger.Debug("result report built", "election_id", electionID, "candidates", len(results))
	return models.ResultReport{
		ElectionID: e.ID,
		Name:       e.Name,
		ClosedAt:   e.ClosedAt,
		Results:    results,
	}, nil
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) * 100 / float64(total)
}
