package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/colarrange/internal/application"
	"github.com/JonMunkholm/colarrange/internal/config"
	"github.com/JonMunkholm/colarrange/internal/core"
	"github.com/JonMunkholm/colarrange/internal/database"
	"github.com/JonMunkholm/colarrange/internal/export"
	"github.com/JonMunkholm/colarrange/internal/logging"
)

var (
	errUnknownFormat = errors.New("unsupported export format")
	errImportFailed  = errors.New("import failed")
)

var slogSetup = logging.SetupWriter

// session is one command's service and the store behind it.
type session struct {
	cfg     *config.Config
	service *core.Service
	close   func()
}

func (a *app) open(ctx context.Context, logTo io.Writer) (*session, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}

	closeLog, err := a.setupLogging(cfg, logTo)
	if err != nil {
		return nil, err
	}

	store, err := database.Open(ctx, cfg)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Backend, err)
	}

	s := &session{cfg: cfg, service: core.NewService(store, cfg.ServiceConfig())}
	s.close = func() {
		store.Close()
		closeLog()
	}
	return s, nil
}

// openWorkspace parses the file at path into a workspace.
func (s *session) openWorkspace(ctx context.Context, path string) (core.Workspace, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.Workspace{}, err
	}
	defer f.Close()

	return s.service.OpenWorkspace(ctx, filepath.Base(path), f)
}

func (a *app) runTUI(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := a.open(ctx, io.Discard)
	if err != nil {
		return err
	}
	defer s.close()

	ws, err := s.openWorkspace(ctx, args[0])
	if err != nil {
		return err
	}

	outDir, _ := cmd.Flags().GetString("out-dir")
	if outDir == "" {
		outDir = filepath.Dir(args[0])
	}
	return application.Run(s.service, ws, outDir)
}

func (a *app) runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")
	arrangement, _ := cmd.Flags().GetString("arrangement")

	format = strings.ToLower(format)
	if format != "csv" && format != "xlsx" {
		return fmt.Errorf("%w: %q", errUnknownFormat, format)
	}

	s, err := a.open(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.close()

	ws, err := s.openWorkspace(ctx, args[0])
	if err != nil {
		return err
	}
	if ws.Model.Empty() {
		return core.ErrNoCSVLoaded
	}

	if arrangement != "" {
		arr, err := findArrangement(ctx, s.service, arrangement)
		if err != nil {
			return err
		}
		if ws, err = s.service.ApplyToWorkspace(ctx, ws.ID, arr.ID); err != nil {
			return err
		}
	}

	var buf bytes.Buffer
	name := core.ExportName(ws.Model.FileName)
	if format == "xlsx" {
		name = export.XLSXName(ws.Model.FileName)
		if err := export.WriteXLSX(&buf, ws.Model); err != nil {
			return err
		}
	} else {
		buf.WriteString(core.Serialize(ws.Model))
	}

	if out == "" {
		out = filepath.Join(filepath.Dir(args[0]), name)
	}
	return a.writeOutput(cmd, out, buf.Bytes())
}

// findArrangement resolves a saved arrangement by ID, then by exact name.
func findArrangement(ctx context.Context, svc *core.Service, ref string) (core.Arrangement, error) {
	arrs, err := svc.ListArrangements(ctx)
	if err != nil {
		return core.Arrangement{}, err
	}
	for _, arr := range arrs {
		if arr.ID == ref {
			return arr, nil
		}
	}
	for _, arr := range arrs {
		if arr.Name == ref {
			return arr, nil
		}
	}
	return core.Arrangement{}, fmt.Errorf("%w: %q", core.ErrArrangementNotFound, ref)
}

func (a *app) runMatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := a.open(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.close()

	ws, err := s.openWorkspace(ctx, args[0])
	if err != nil {
		return err
	}
	if len(ws.Matches) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No matching arrangements.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tMATCH\tCOLUMNS")
	for _, m := range ws.Matches {
		fmt.Fprintf(tw, "%s\t%s\t%.0f%%\t%d/%d\n",
			m.Arrangement.ID, m.Arrangement.Name, m.MatchPercentage, m.MatchingCount, m.TotalColumns)
	}
	return tw.Flush()
}

func (a *app) runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := a.open(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.close()

	arrs, err := s.service.ListArrangements(ctx)
	if err != nil {
		return err
	}
	if len(arrs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No saved arrangements.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tFORMAT\tCOLUMNS")
	for _, arr := range arrs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", arr.ID, arr.Name, arr.ColumnOrder.Format, arr.ColumnOrder.Len())
	}
	return tw.Flush()
}

func (a *app) runArrangementsExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out, _ := cmd.Flags().GetString("out")

	s, err := a.open(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.close()

	doc, name, err := s.service.ExportArrangements(ctx, args)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	if out == "" {
		out = name
	}
	return a.writeOutput(cmd, out, data)
}

func (a *app) runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	s, err := a.open(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.close()

	result, err := s.service.ImportArrangements(ctx, data)
	if err != nil {
		return err
	}

	switch result.Status {
	case core.ImportStatusInvalidFormat, core.ImportStatusUnreadable:
		return fmt.Errorf("%w: %s", errImportFailed, result.Message())
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.Message())
	return nil
}

func (a *app) runDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s, err := a.open(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.service.DeleteArrangement(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}

// writeOutput writes data to path, or to the command's stdout for "-".
func (a *app) writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
