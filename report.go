// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/quickly-elect/cliparse"
	"github.com/danielhkuo/quickly-elect/election"
	"github.com/danielhkuo/quickly-elect/models"
	"github.com/danielhkuo/quickly-elect/reports"
)

func newReportCmd(cfg *cliparse.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print reports through the reporting gateway",
	}

	// run opens the store and hands a gateway bound to cfg.GatewayRef to fn
	run := func(fn func(cmd *cobra.Command, gw *reports.Gateway, electionID string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			dbConn, err := openStore(*cfg)
			if err != nil {
				return err
			}
			defer dbConn.Close()

			mgr := election.NewManager(dbConn)
			return fn(cmd, reports.NewGateway(cfg.GatewayRef, mgr, slog.Default()), args[0])
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "voters <election-id>",
			Short: "List the approved electors",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(cmd *cobra.Command, gw *reports.Gateway, electionID string) error {
				report, err := gw.VoterReport(cmd.Context(), electionID)
				if err != nil {
					return err
				}
				return writeVoterReport(cmd.OutOrStdout(), report)
			}),
		},
		&cobra.Command{
			Use:   "participation <election-id>",
			Short: "Show votes cast against approved electors",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(cmd *cobra.Command, gw *reports.Gateway, electionID string) error {
				report, err := gw.ParticipationReport(cmd.Context(), electionID)
				if err != nil {
					return err
				}
				return writeParticipationReport(cmd.OutOrStdout(), report)
			}),
		},
		&cobra.Command{
			Use:   "results <election-id>",
			Short: "Show ranked results of a closed election",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(cmd *cobra.Command, gw *reports.Gateway, electionID string) error {
				report, err := gw.ResultReport(cmd.Context(), electionID)
				if err != nil {
					return err
				}
				return writeResultReport(cmd.OutOrStdout(), report, time.Now())
			}),
		},
	)
	return cmd
}

func writeVoterReport(out io.Writer, r models.VoterReport) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "IDENTITY\tNAME\tSURNAME")
	for _, v := range r.Voters {
		fmt.Fprintf(w, "%s\t%s\t%s\n", v.Identity, v.Name, v.Surname)
	}
	fmt.Fprintf(w, "\n%s approved electors\n", humanize.Comma(int64(len(r.Voters))))
	return w.Flush()
}

func writeParticipationReport(out io.Writer, r models.ParticipationReport) error {
	_, err := fmt.Fprintf(out, "Election %s (%s): %s of %s electors voted (%s%%)\n",
		r.ElectionID,
		r.State,
		humanize.Comma(int64(r.VotesCast)),
		humanize.Comma(int64(r.ApprovedElectors)),
		humanize.FtoaWithDigits(r.Percentage, 1),
	)
	return err
}

func writeResultReport(out io.Writer, r models.ResultReport, now time.Time) error {
	closed := "not closed"
	if r.ClosedAt != nil {
		closed = "closed " + humanize.RelTime(*r.ClosedAt, now, "ago", "from now")
	}
	fmt.Fprintf(out, "%s (%s)\n\n", r.Name, closed)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tCANDIDATE\tNAME\tVOTES")
	for _, c := range r.Results {
		fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\n",
			humanize.Ordinal(c.Rank), c.Identity, c.Name, c.Surname, humanize.Comma(int64(c.Votes)))
	}
	return w.Flush()
}
