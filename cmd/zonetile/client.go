package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func (a *app) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			status, err := client.Status()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.wantJSON() {
				return writeJSON(out, status)
			}

			fmt.Fprintf(out, "instance:        %s\n", status.InstanceID)
			fmt.Fprintf(out, "version:         %s\n", status.Version)
			fmt.Fprintf(out, "uptime:          %s\n", time.Duration(status.UptimeSeconds)*time.Second)
			fmt.Fprintf(out, "config:          %s\n", orDash(status.ConfigPath))
			fmt.Fprintf(out, "store:           %s\n", status.StoreBackend)
			fmt.Fprintf(out, "zones:           %d\n", status.Zones)
			fmt.Fprintf(out, "tracked_windows: %d\n", status.TrackedWindows)

			rows := make([][]string, 0, len(status.Screens))
			for _, s := range status.Screens {
				rows = append(rows, []string{strconv.Itoa(s.ID), s.Key, formatRect(s.Bounds), formatRect(s.Usable)})
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "Screen", "Bounds", "Usable"}, rows))
			return nil
		},
	}
}

func (a *app) zonesCommand() *cobra.Command {
	var screen string
	cmd := &cobra.Command{
		Use:   "zones",
		Short: "List zone instances and their tiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			data, err := client.Zones(screen)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.wantJSON() {
				return writeJSON(out, data)
			}

			var rows [][]string
			for _, z := range data.Zones {
				for _, t := range z.Tiles {
					windows := ""
					for _, w := range z.Windows {
						if w.TileIdx == t.Index {
							windows += fmt.Sprintf("%d ", w.Window)
						}
					}
					rows = append(rows, []string{
						z.QualifiedID,
						z.TriggerKey,
						strconv.Itoa(t.Index),
						orDash(t.Description),
						formatRect(t.Frame),
						orDash(windows),
					})
				}
			}
			fmt.Fprintln(out, renderTable([]string{"Zone", "Key", "Tile", "Region", "Frame", "Windows"}, rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&screen, "screen", "", "only zones on this screen key")
	return cmd
}

func (a *app) windowsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "windows",
		Short: "List managed windows and their zones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			data, err := client.Windows()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.wantJSON() {
				return writeJSON(out, data)
			}

			rows := make([][]string, 0, len(data.Windows))
			for _, w := range data.Windows {
				id := strconv.FormatUint(uint64(w.Window), 10)
				if w.Active {
					id += "*"
				}
				tile := "-"
				if w.ZoneID != "" {
					tile = strconv.Itoa(w.TileIdx)
				}
				rows = append(rows, []string{id, orDash(w.App), orDash(w.Screen), formatRect(w.Frame), orDash(w.ZoneID), tile})
			}
			fmt.Fprintln(out, renderTable([]string{"Window", "App", "Screen", "Frame", "Zone", "Tile"}, rows))
			return nil
		},
	}
}

func (a *app) cycleCommand() *cobra.Command {
	var window uint32
	var direction string
	cmd := &cobra.Command{
		Use:   "cycle <zone>",
		Short: "Move a window into a zone, or to the zone's next tile",
		Long: `Move a window into a zone, or to another tile of the zone it is already in.

The direction is forward (default), backward, first, last or a 1-based tile
number. Without --window the focused window is used.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			res, err := client.Cycle(window, args[0], direction)
			if err != nil {
				return err
			}
			if a.wantJSON() {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "window %d -> %s tile %d (%s)\n", res.Window, res.ZoneID, res.TileIdx, formatRect(res.Frame))
			return nil
		},
	}
	cmd.Flags().Uint32Var(&window, "window", 0, "window id (default: focused window)")
	cmd.Flags().StringVarP(&direction, "direction", "d", "", "forward, backward, first, last or a tile number")
	return cmd
}

func (a *app) focusNextCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "focus-next <zone>",
		Short: "Focus the next window held by a zone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			res, err := client.FocusNext(args[0])
			if err != nil {
				return err
			}
			if a.wantJSON() {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "focused window %d\n", res.Window)
			return nil
		},
	}
}

func (a *app) matchCommand() *cobra.Command {
	var window uint32
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Show which zone tile best fits a window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			res, err := client.Match(window)
			if err != nil {
				return err
			}
			if a.wantJSON() {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			if !res.Matched {
				fmt.Fprintf(cmd.OutOrStdout(), "window %d matches no zone\n", res.Window)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "window %d matches %s tile %d (score %.3f)\n", res.Window, res.ZoneID, res.TileIdx, res.Score)
			return nil
		},
	}
	cmd.Flags().Uint32Var(&window, "window", 0, "window id (default: focused window)")
	return cmd
}

func (a *app) rememberCommand() *cobra.Command {
	var window uint32
	cmd := &cobra.Command{
		Use:   "remember",
		Short: "Persist a window's current position for its application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			res, err := client.Remember(window)
			if err != nil {
				return err
			}
			if a.wantJSON() {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "window %d remembered as %s\n", res.Window, res.Kind)
			return nil
		},
	}
	cmd.Flags().Uint32Var(&window, "window", 0, "window id (default: focused window)")
	return cmd
}

func (a *app) unassignCommand() *cobra.Command {
	var window uint32
	cmd := &cobra.Command{
		Use:   "unassign",
		Short: "Remove a window from its zone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			return client.Unassign(window)
		},
	}
	cmd.Flags().Uint32Var(&window, "window", 0, "window id (default: focused window)")
	return cmd
}

func (a *app) reloadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Ask the daemon to reload its configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			if err := client.Reload(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "config reloaded")
			return nil
		},
	}
}

