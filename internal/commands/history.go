package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cleared-dev/aggregate/internal/config"
	"github.com/cleared-dev/aggregate/internal/runlog"
)

func newHistoryCommand(v *viper.Viper, configFile *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past runs recorded in the run log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wd, cfg, err := resolveConfig(v, *configFile)
			if err != nil {
				return err
			}
			if cfg.RunLog == "" {
				return errors.New("no run log configured (set --" + config.KeyRunLog + " or " + config.KeyRunLog + " in " + config.FileName + ")")
			}

			entries, err := runlog.Read(resolvePath(wd, cfg.RunLog))
			if err != nil {
				return err
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}
			return writeHistory(cmd.OutOrStdout(), entries)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show only the last n runs")

	return cmd
}

func writeHistory(w io.Writer, entries []runlog.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}

	table := tablewriter.NewTable(w)
	table.Header("Run", "Time", "Folder", "Prefix", "Files", "Rows", "Output")
	for _, e := range entries {
		err := table.Append(
			e.RunID,
			e.Timestamp.Local().Format(time.DateTime),
			e.Folder,
			e.Prefix,
			strconv.Itoa(e.Files),
			strconv.Itoa(e.Rows),
			e.Output,
		)
		if err != nil {
			return err
		}
	}
	return table.Render()
}
