package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abelzeko/beton-control/internal/entities"
	"github.com/abelzeko/beton-control/internal/usecases"
)

func printOrganizations(cmd *cobra.Command, uc *usecases.RecordUseCase, filter entities.Filter) error {
	orgs, err := uc.ListOrganizations(cmd.Context(), filter)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCONTACT\tPHONE")
	for _, o := range orgs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", o.ID, o.Name, o.Contact, o.Phone)
	}
	return w.Flush()
}

func printSites(cmd *cobra.Command, uc *usecases.RecordUseCase, orgID int64, filter entities.Filter) error {
	sites, err := uc.ListSites(cmd.Context(), orgID, filter)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tORG\tNAME\tADDRESS")
	for _, s := range sites {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", s.ID, s.OrganizationID, s.Name, s.Address)
	}
	return w.Flush()
}

func printPours(cmd *cobra.Command, uc *usecases.RecordUseCase, siteID int64, filter entities.Filter) error {
	pours, err := uc.ListPours(cmd.Context(), siteID, filter)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tELEMENT\tCLASS\tFROST\tWATER\tSUPPLIER\tVOLUME\tCUBES\tCONES\tEXECUTOR\tACT\tREQUEST\tINVOICE")
	for _, p := range pours {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\t%s\t%s\n",
			p.ID, p.PourDate, p.Element, p.ConcreteClass, p.FrostResistance, p.WaterResistance, p.Supplier,
			strconv.FormatFloat(p.VolumeConcrete, 'f', -1, 64), p.CubesCount, p.ConesCount,
			p.Executor, p.ActNumber, p.RequestNumber, p.Invoice)
	}
	return w.Flush()
}

// parseFilter turns field=substring arguments into a filter
func parseFilter(kind entities.Kind, where []string) (entities.Filter, error) {
	if len(where) == 0 {
		return nil, nil
	}
	filter := make(entities.Filter, len(where))
	for _, w := range where {
		field, value, ok := strings.Cut(w, "=")
		if !ok {
			return nil, entities.Invalid("where", fmt.Sprintf("expected field=substring, got %q", w))
		}
		f := entities.Field(strings.TrimSpace(field))
		if !kind.Allowed(f) {
			return nil, entities.Invalid("where", fmt.Sprintf("unknown field %q", f))
		}
		filter[f] = value
	}
	return filter, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, entities.Invalid("id", fmt.Sprintf("expected a positive number, got %q", arg))
	}
	return id, nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// confirm asks a y/N question on the command's input unless yes is set
func confirm(cmd *cobra.Command, yes bool, question string) (bool, error) {
	if yes {
		return true, nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && answer == "" {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
		return false, nil
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "д", "да":
		return true, nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
	return false, nil
}
