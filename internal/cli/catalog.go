package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/devsel/internal/device"
	"github.com/roach88/devsel/internal/render"
)

// CatalogOptions holds flags for the catalog command.
type CatalogOptions struct {
	*RootOptions
	Catalog string
}

// CatalogEntry describes one catalog device.
type CatalogEntry struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Priority int    `json:"builtin_priority"`
	Jack     bool   `json:"jack"`
}

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CatalogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the devices available to a session",
		Long: `List the devices in the catalog with their builtin priority.

Without --catalog the config file's catalog is used, or the default catalog
when none is configured.

Examples:
  devsel catalog
  devsel catalog --catalog ./desk.cue --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCatalog(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "CUE catalog file")

	return cmd
}

func runCatalog(opts *CatalogOptions, cmd *cobra.Command) error {
	c, err := loadCatalog(opts.RootOptions, opts.Catalog)
	if err != nil {
		return err
	}

	entries := catalogEntries(c)
	if opts.Format == "json" {
		return newFormatter(opts.RootOptions, cmd).Success(entries)
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		jack := ""
		if e.Jack {
			jack = "yes"
		}
		rows = append(rows, []string{e.Name, e.Type, strconv.Itoa(e.Priority), jack})
	}
	fmt.Fprintln(cmd.OutOrStdout(), render.Table(
		[]string{"Device", "Type", "Builtin", "Jack"},
		rows,
	))
	return nil
}

func catalogEntries(c *device.Catalog) []CatalogEntry {
	all := c.All()
	entries := make([]CatalogEntry, 0, len(all))
	for _, d := range all {
		entries = append(entries, CatalogEntry{
			Name:     d.Name,
			Type:     d.Type.String(),
			Priority: d.Type.BuiltinPriority(),
			Jack:     d.IsJack(),
		})
	}
	return entries
}

// loadCatalog loads the catalog named by the flag, falling back to the
// config file and then the default catalog.
func loadCatalog(opts *RootOptions, flag string) (*device.Catalog, error) {
	path := flag
	if path == "" {
		path = opts.Config.Catalog
	}
	c, err := device.LoadCatalog(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load catalog", err)
	}
	return c, nil
}
