package main

import (
	"fmt"

	"github.com/ZaguanLabs/locpatch"
	"github.com/ZaguanLabs/locpatch/config"
	"github.com/spf13/cobra"
)

func (a *app) renameCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "rename [dir]",
		Short: "Rename *_<from>.yml files to *_<to>.yml and rewrite their header",
		Long: `Walk dir (default FOLDER_PATH or the config "folder") and turn every
*_<from>.yml file whose first line is l_<from>: into *_<to>.yml with the
header l_<to>:. The new file is written with a UTF-8 byte-order mark
and the old file is removed. Files with another header are left alone.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := dirArg(args, a.cfg.Folder)
			if err := config.RequireDir("folder", dir); err != nil {
				return err
			}
			if from == "" {
				from = a.cfg.SourceLang
			}
			if to == "" {
				to = a.cfg.TargetLang
			}

			report, err := locpatch.RenameTree(dir, from, to, a.log)
			if err != nil {
				return err
			}

			for _, p := range report.Renamed {
				fmt.Fprintf(a.stdout, "  renamed %s\n", p)
			}
			for _, p := range report.Skipped {
				warnColor.Fprintf(a.stdout, "  skipped %s (header is not %s)\n", p, locpatch.Header(from))
			}
			for _, e := range report.Errors {
				errColor.Fprintf(a.stdout, "  error: %v\n", e)
			}
			okColor.Fprintf(a.stdout, "%d files renamed\n", len(report.Renamed))
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Source language (default: config source_lang)")
	cmd.Flags().StringVar(&to, "to", "", "Target language (default: config target_lang)")
	return cmd
}

func (a *app) cleanupCmd() *cobra.Command {
	var ext, prefix string
	var yes bool

	cmd := &cobra.Command{
		Use:   "cleanup [dir]",
		Short: "Delete localization files that do not belong to the mod",
		Long: `List every file under dir (default FOLDER_PATH or the config "folder")
ending in --ext whose name does not start with --prefix, ask once for the
whole list and delete all of them on "ja". Any other answer deletes nothing.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := dirArg(args, a.cfg.Folder)
			if err := config.RequireDir("folder", dir); err != nil {
				return err
			}
			if ext == "" {
				ext = a.cfg.Cleanup.Ext
			}
			if prefix == "" {
				prefix = a.cfg.Cleanup.Prefix
			}

			files, err := locpatch.CollectCleanup(dir, ext, prefix)
			if err != nil && len(files) == 0 {
				return err
			}
			if len(files) == 0 {
				okColor.Fprintln(a.stdout, "No files to delete.")
				return nil
			}

			var confirm locpatch.Confirmer = locpatch.PromptConfirmer{
				In:     a.stdin,
				Out:    a.stdout,
				Accept: a.cfg.Cleanup.Answers,
			}
			if yes {
				confirm = locpatch.ConfirmFunc(func([]string) (bool, error) { return true, nil })
			}

			report, err := locpatch.Cleanup(files, confirm)
			if err != nil {
				return err
			}
			if !report.Confirmed {
				warnColor.Fprintln(a.stdout, "Cancelled. No files were deleted.")
				return nil
			}

			for _, e := range report.Errors {
				errColor.Fprintf(a.stdout, "  error: %v\n", e)
			}
			okColor.Fprintf(a.stdout, "%d files deleted\n", report.Deleted)
			a.log.Info().Int("deleted", report.Deleted).Int("errors", len(report.Errors)).Msg("cleanup finished")
			return nil
		},
	}

	cmd.Flags().StringVar(&ext, "ext", "", "File extension to consider (default: config cleanup.ext)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Name prefix of files to keep (default: config cleanup.prefix)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")
	return cmd
}
