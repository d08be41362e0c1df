package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abelzeko/beton-control/internal/entities"
	"github.com/abelzeko/beton-control/internal/integration/docx"
	"github.com/abelzeko/beton-control/internal/integration/excel"
	"github.com/abelzeko/beton-control/internal/usecases"
)

// parseKind converts a command line name into an entity kind
func parseKind(name string) (entities.Kind, error) {
	switch strings.ToLower(name) {
	case "org", "organization", "organizations":
		return entities.KindOrganization, nil
	case "site", "object", "sites", "objects":
		return entities.KindSite, nil
	case "pour", "construction", "pours", "constructions":
		return entities.KindPour, nil
	}
	return "", entities.Invalid("kind", fmt.Sprintf("unknown kind %q, expected org, site or pour", name))
}

func (a *app) importCmd() *cobra.Command {
	var parentID int64
	cmd := &cobra.Command{
		Use:   "import KIND FILE",
		Short: "Import organizations, sites or pour records from an Excel workbook",
		Long: `Import reads the first sheet of FILE. The header row is found by its text,
so the columns may be in any order. Sites need --parent with the organization id,
pour records need --parent with the site id. Nothing is stored unless every row is valid.`,
		Args: cobra.ExactArgs(2),
		RunE: a.withRecords(func(cmd *cobra.Command, args []string, uc *usecases.RecordUseCase) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			if kind != entities.KindOrganization && parentID <= 0 {
				return entities.Invalid("parent", "--parent is required for "+string(kind)+" import")
			}
			result, err := uc.Import(cmd.Context(), kind, args[1], parentID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Read %d row(s), imported %d", result.Rows, result.Inserted)
			if result.Skipped > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), ", skipped %d existing", result.Skipped)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		}),
	}
	cmd.Flags().Int64Var(&parentID, "parent", 0, "Organization id for sites, site id for pour records")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export pour records to Excel workbooks",
	}

	var siteOut string
	siteCmd := &cobra.Command{
		Use:   "site ID",
		Short: "Export the pour records of one site",
		Args:  cobra.ExactArgs(1),
		RunE: a.withRecords(func(cmd *cobra.Command, args []string, uc *usecases.RecordUseCase) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			path := siteOut
			if path == "" {
				site, err := uc.GetSite(cmd.Context(), id)
				if err != nil {
					return err
				}
				org, err := uc.GetOrganization(cmd.Context(), site.OrganizationID)
				if err != nil {
					return err
				}
				path = usecases.ExportFileName(org, site)
			}
			if err := uc.ExportSite(cmd.Context(), id, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
			return nil
		}),
	}
	siteCmd.Flags().StringVarP(&siteOut, "out", "o", "", "Output workbook path")

	var orgOut string
	orgCmd := &cobra.Command{
		Use:   "org ID",
		Short: "Export every site of an organization, one sheet per site",
		Args:  cobra.ExactArgs(1),
		RunE: a.withRecords(func(cmd *cobra.Command, args []string, uc *usecases.RecordUseCase) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			path := orgOut
			if path == "" {
				org, err := uc.GetOrganization(cmd.Context(), id)
				if err != nil {
					return err
				}
				path = usecases.SafeFileName(org.Name) + ".xlsx"
			}
			if err := uc.ExportOrganization(cmd.Context(), id, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
			return nil
		}),
	}
	orgCmd.Flags().StringVarP(&orgOut, "out", "o", "", "Output workbook path")

	var dir string
	allCmd := &cobra.Command{
		Use:   "all",
		Short: "Export every organization into a directory, one workbook each",
		Args:  cobra.NoArgs,
		RunE: a.withRecords(func(cmd *cobra.Command, args []string, uc *usecases.RecordUseCase) error {
			if dir == "" {
				dir = a.cfg.Export.Dir
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create export directory: %w", err)
			}
			written, err := uc.Snapshot(cmd.Context(), dir, timeNow())
			for _, path := range written {
				fmt.Fprintln(cmd.OutOrStdout(), path)
			}
			return err
		}),
	}
	allCmd.Flags().StringVar(&dir, "dir", "", "Output directory (default from configuration)")

	cmd.AddCommand(siteCmd, orgCmd, allCmd)
	return cmd
}

func (a *app) templateCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "template KIND",
		Short: "Write an empty import workbook for org, site or pour",
		Args:  cobra.ExactArgs(1),
		RunE: a.withRecords(func(cmd *cobra.Command, args []string, uc *usecases.RecordUseCase) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			path := out
			if path == "" {
				path = excel.TemplateFileNames[kind]
			}
			if err := uc.WriteTemplate(kind, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Template written to %s\n", path)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output workbook path")
	return cmd
}

func (a *app) documentCmd() *cobra.Command {
	var number, outDir string
	cmd := &cobra.Command{
		Use:   "doc act|request POUR_ID",
		Short: "Generate an act or a request document for a pour record",
		Long: `Doc fills the configured .docx template with the values of one pour record.
With --number the act or request number is stored on the record first.`,
		Args: cobra.ExactArgs(2),
		RunE: a.withRecords(func(cmd *cobra.Command, args []string, uc *usecases.RecordUseCase) error {
			kind, err := docx.ParseKind(args[0])
			if err != nil {
				return err
			}
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			dir := outDir
			if dir == "" {
				dir = a.cfg.Documents.OutputDir
			}
			path, err := uc.GenerateDocument(cmd.Context(), kind, id, number, dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s saved to %s\n", kind.Label(), filepath.Clean(path))
			return nil
		}),
	}
	cmd.Flags().StringVar(&number, "number", "", "Document number to store on the record")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default from configuration)")
	return cmd
}

func (a *app) infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show database statistics",
		Args:  cobra.NoArgs,
		RunE: a.withRecords(func(cmd *cobra.Command, args []string, uc *usecases.RecordUseCase) error {
			stats, err := uc.Info(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Database:      %s\n", stats.Path)
			fmt.Fprintf(out, "Organizations: %d\n", stats.Organizations)
			fmt.Fprintf(out, "Sites:         %d\n", stats.Sites)
			fmt.Fprintf(out, "Pour records:  %d\n", stats.Pours)
			return nil
		}),
	}
}
