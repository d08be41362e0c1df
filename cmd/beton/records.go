package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abelzeko/beton-control/internal/entities"
	"github.com/abelzeko/beton-control/internal/usecases"
)

func (a *app) organizationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "org",
		Aliases: []string{"organization"},
		Short:   "Manage organizations",
	}

	var where []string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List organizations",
		Args:  cobra.NoArgs,
		RunE: a.withRecords(func(cmd *cobra.Command, args []string, uc *usecases.RecordUseCase) error {
			filter, err := parseFilter(entities.KindOrganization, where)
			if err != nil {
				return err
			}
			return printOrganizations(cmd, uc, filter)
		}),
	}
	listCmd.Flags().StringArrayVar(&where, "where", nil, "Filter as field=substring (repeatable)")

	var form usecases.OrganizationForm
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add an organization",
		Args:  cobra.NoArgs,
		RunE: a.withRecords(func(cmd *cobra.Command, args []string, uc *usecases.RecordUseCase) error {
			id, err := uc.CreateOrganization(cmd.Context(), form)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Organization %d created\n", id)
			return printOrganizations(cmd, uc, nil)
		}),
	}
	organizationFlags(addCmd, &form)

	var edit usecases.OrganizationForm
	editCmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change an organization",
		Args:  cobra.ExactArgs(1),
		RunE: a.withRecords(func(cmd *cobra.Command, args []string, uc *usecases.RecordUseCase) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			current, err := uc.GetOrganization(cmd.Context(), id)
			if err != nil {
				return err
			}
			form := usecases.OrganizationForm{Name: current.Name, Contact: current.Contact, Phone: current.Phone}
			overrideChanged(cmd, map[string]*string{"name": &form.Name, "contact": &form.Contact, "phone": &form.Phone},
				map[string]string{"name": edit.Name, "contact": edit.Contact, "phone": edit.Phone})
			if err := uc.UpdateOrganization(cmd.Context(), id, form); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Organization %d updated\n", id)
			return printOrganizations(cmd, uc, nil)
		}),
	}
	organizationFlags(editCmd, &edit)

	var yes bool
	deleteCmd := &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete organizations with all their sites and pour records",
		Args:  cobra.MinimumNArgs(1),
		RunE: a.withRecords(func(cmd *cobra.Command, args []string, uc *usecases.RecordUseCase) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			ok, err := confirm(cmd, yes, fmt.Sprintf("Delete %d organization(s) with all their sites and pour records?", len(ids)))
			if err != nil || !ok {
				return err
			}
			n, err := uc.DeleteOrganizations(cmd.Context(), ids...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d organization(s) deleted\n", n)
			return printOrganizations(cmd, uc, nil)
		}),
	}
	deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")

	cmd.AddCommand(listCmd, addCmd, editCmd, deleteCmd)
	return cmd
}

func organizationFlags(cmd *cobra.Command, form *usecases.OrganizationForm) {
	cmd.Flags().StringVar(&form.Name, "name", "", "Organization name")
	cmd.Flags().StringVar(&form.Contact, "contact", "", "Contact person")
	cmd.Flags().StringVar(&form.Phone, "phone", "", "Phone number")
}

func (a *app) siteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "site",
		Aliases: []string{"object"},
		Short:   "Manage construction sites",
	}

	var orgID int64
	var where []string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the sites of an organization (all sites without --org)",
		Args:  cobra.NoArgs,
		RunE: a.withRecords(func(cmd *cobra.Command, args []string, uc *usecases.RecordUseCase) error {
			filter, err := parseFilter(entities.KindSite, where)
			if err != nil {
				return err
			}
			return printSites(cmd, uc, orgID, filter)
		}),
	}
	listCmd.Flags().Int64Var(&orgID, "org", 0, "Organization id")
	listCmd.Flags().StringArrayVar(&where, "where", nil, "Filter as field=substring (repeatable)")

	var form usecases.SiteForm
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a site to an organization",
		Args:  cobra.NoArgs,
		RunE: a.withRecords(func(cmd *cobra.Command, args []string, uc *usecases.RecordUseCase) error {
			id, err := uc.CreateSite(cmd.Context(), form)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Site %d created\n", id)
			return printSites(cmd, uc, form.OrganizationID, nil)
		}),
	}
	addCmd.Flags().Int64Var(&form.OrganizationID, "org", 0, "Organization id")
	siteFlags(addCmd, &form)

	var edit usecases.SiteForm
	editCmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a site",
		Args:  cobra.ExactArgs(1),
		RunE: a.withRecords(func(cmd *cobra.Command, args []string, uc *usecases.RecordUseCase) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			current, err := uc.GetSite(cmd.Context(), id)
			if err != nil {
				return err
			}
			form := usecases.SiteForm{OrganizationID: current.OrganizationID, Name: current.Name, Address: current.Address}
			overrideChanged(cmd, map[string]*string{"name": &form.Name, "address": &form.Address},
				map[string]string{"name": edit.Name, "address": edit.Address})
			if err := uc.UpdateSite(cmd.Context(), id, form); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Site %d updated\n", id)
			return printSites(cmd, uc, form.OrganizationID, nil)
		}),
	}
	siteFlags(editCmd, &edit)

	var yes bool
	deleteCmd := &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete sites with all their pour records",
		Args:  cobra.MinimumNArgs(1),
		RunE: a.withRecords(func(cmd *cobra.Command, args []string, uc *usecases.RecordUseCase) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			first, err := uc.GetSite(cmd.Context(), ids[0])
			if err != nil {
				return err
			}
			ok, err := confirm(cmd, yes, fmt.Sprintf("Delete %d site(s) with all their pour records?", len(ids)))
			if err != nil || !ok {
				return err
			}
			n, err := uc.DeleteSites(cmd.Context(), ids...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d site(s) deleted\n", n)
			return printSites(cmd, uc, first.OrganizationID, nil)
		}),
	}
	deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")

	cmd.AddCommand(listCmd, addCmd, editCmd, deleteCmd)
	return cmd
}

func siteFlags(cmd *cobra.Command, form *usecases.SiteForm) {
	cmd.Flags().StringVar(&form.Name, "name", "", "Site name")
	cmd.Flags().StringVar(&form.Address, "address", "", "Site address")
}

func (a *app) pourCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pour",
		Aliases: []string{"construction"},
		Short:   "Manage pour records",
	}

	var siteID int64
	var where []string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the pour records of a site (all records without --site)",
		Args:  cobra.NoArgs,
		RunE: a.withRecords(func(cmd *cobra.Command, args []string, uc *usecases.RecordUseCase) error {
			filter, err := parseFilter(entities.KindPour, where)
			if err != nil {
				return err
			}
			return printPours(cmd, uc, siteID, filter)
		}),
	}
	listCmd.Flags().Int64Var(&siteID, "site", 0, "Site id")
	listCmd.Flags().StringArrayVar(&where, "where", nil, "Filter as field=substring (repeatable)")

	var form usecases.PourForm
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a pour record to a site",
		Args:  cobra.NoArgs,
		RunE: a.withRecords(func(cmd *cobra.Command, args []string, uc *usecases.RecordUseCase) error {
			id, err := uc.CreatePour(cmd.Context(), form)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pour record %d created\n", id)
			return printPours(cmd, uc, form.SiteID, nil)
		}),
	}
	addCmd.Flags().Int64Var(&form.SiteID, "site", 0, "Site id")
	pourFlags(addCmd, &form)

	var edit usecases.PourForm
	editCmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a pour record",
		Args:  cobra.ExactArgs(1),
		RunE: a.withRecords(func(cmd *cobra.Command, args []string, uc *usecases.RecordUseCase) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			current, err := uc.GetPour(cmd.Context(), id)
			if err != nil {
				return err
			}
			form := usecases.PourFormOf(current)
			overrideChanged(cmd, pourFields(&form), pourValues(edit))
			if err := uc.UpdatePour(cmd.Context(), id, form); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pour record %d updated\n", id)
			return printPours(cmd, uc, form.SiteID, nil)
		}),
	}
	pourFlags(editCmd, &edit)

	var yes bool
	deleteCmd := &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete pour records",
		Args:  cobra.MinimumNArgs(1),
		RunE: a.withRecords(func(cmd *cobra.Command, args []string, uc *usecases.RecordUseCase) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			first, err := uc.GetPour(cmd.Context(), ids[0])
			if err != nil {
				return err
			}
			ok, err := confirm(cmd, yes, fmt.Sprintf("Delete %d pour record(s)?", len(ids)))
			if err != nil || !ok {
				return err
			}
			n, err := uc.DeletePours(cmd.Context(), ids...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d pour record(s) deleted\n", n)
			return printPours(cmd, uc, first.SiteID, nil)
		}),
	}
	deleteCmd.Flags().BoolVarP(&yes, "yes", "y", false, "Delete without asking")

	var invoice string
	invoiceCmd := &cobra.Command{
		Use:   "invoice ID...",
		Short: "Add pour records to an invoice",
		Args:  cobra.MinimumNArgs(1),
		RunE: a.withRecords(func(cmd *cobra.Command, args []string, uc *usecases.RecordUseCase) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			n, err := uc.AssignInvoice(cmd.Context(), invoice, ids...)
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("pour records %v: %w", ids, entities.ErrNotFound)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d pour record(s) added to invoice %s\n", n, invoice)

			// list the site of the first record that exists
			for _, id := range ids {
				pour, err := uc.GetPour(cmd.Context(), id)
				if errors.Is(err, entities.ErrNotFound) {
					continue
				}
				if err != nil {
					return err
				}
				return printPours(cmd, uc, pour.SiteID, nil)
			}
			return nil
		}),
	}
	invoiceCmd.Flags().StringVar(&invoice, "invoice", "", "Invoice number")
	_ = invoiceCmd.MarkFlagRequired("invoice")

	cmd.AddCommand(listCmd, addCmd, editCmd, deleteCmd, invoiceCmd)
	return cmd
}

// pourFlag binds one command line flag to a raw form field
type pourFlag struct {
	name  string
	usage string
	value func(f *usecases.PourForm) *string
}

var pourFlagSet = []pourFlag{
	{"date", "Pour date DD-MM-YYYY", func(f *usecases.PourForm) *string { return &f.PourDate }},
	{"element", "Structural element", func(f *usecases.PourForm) *string { return &f.Element }},
	{"class", "Concrete class", func(f *usecases.PourForm) *string { return &f.ConcreteClass }},
	{"frost", "Frost resistance", func(f *usecases.PourForm) *string { return &f.FrostResistance }},
	{"water", "Water resistance", func(f *usecases.PourForm) *string { return &f.WaterResistance }},
	{"supplier", "Concrete supplier", func(f *usecases.PourForm) *string { return &f.Supplier }},
	{"passport", "Concrete passport", func(f *usecases.PourForm) *string { return &f.ConcretePassport }},
	{"volume", "Concrete volume", func(f *usecases.PourForm) *string { return &f.VolumeConcrete }},
	{"cubes", "Number of test cubes", func(f *usecases.PourForm) *string { return &f.CubesCount }},
	{"cones", "Number of cone tests", func(f *usecases.PourForm) *string { return &f.ConesCount }},
	{"slump", "Slump", func(f *usecases.PourForm) *string { return &f.Slump }},
	{"temp", "Temperature", func(f *usecases.PourForm) *string { return &f.Temperature }},
	{"measurements", "Number of temperature measurements", func(f *usecases.PourForm) *string { return &f.TempMeasurements }},
	{"executor", "Executor", func(f *usecases.PourForm) *string { return &f.Executor }},
	{"act", "Act number", func(f *usecases.PourForm) *string { return &f.ActNumber }},
	{"request", "Request number", func(f *usecases.PourForm) *string { return &f.RequestNumber }},
	{"invoice", "Invoice", func(f *usecases.PourForm) *string { return &f.Invoice }},
}

func pourFlags(cmd *cobra.Command, form *usecases.PourForm) {
	for _, pf := range pourFlagSet {
		cmd.Flags().StringVar(pf.value(form), pf.name, "", pf.usage)
	}
}

func pourFields(form *usecases.PourForm) map[string]*string {
	fields := make(map[string]*string, len(pourFlagSet))
	for _, pf := range pourFlagSet {
		fields[pf.name] = pf.value(form)
	}
	return fields
}

func pourValues(form usecases.PourForm) map[string]string {
	values := make(map[string]string, len(pourFlagSet))
	for _, pf := range pourFlagSet {
		values[pf.name] = *pf.value(&form)
	}
	return values
}

// overrideChanged copies the values of the flags given on the command line into dst
func overrideChanged(cmd *cobra.Command, dst map[string]*string, values map[string]string) {
	for name, ptr := range dst {
		if cmd.Flags().Changed(name) {
			*ptr = values[name]
		}
	}
}
