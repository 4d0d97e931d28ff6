package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// TableInfo is the JSON description of one table.
type TableInfo struct {
	Name         string   `json:"name"`
	Key          string   `json:"key"`
	Fields       []string `json:"fields"`
	Storage      string   `json:"storage"`
	AutoGenerate string   `json:"autogenerate,omitempty"`
	Records      int      `json:"records"`
}

// NewTablesCommand creates the tables command.
func NewTablesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables defined in the schema",
		Long: `List the tables defined in the schema with their key, fields, storage
and record count.

Example:
  termstore --schema schema.yaml --db data.db tables`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(rootOpts, cmd, runTables)
		},
	}
}

func runTables(e *env) error {
	var infos []TableInfo
	for _, tbl := range e.adapter.Registry().Tables() {
		n, err := e.adapter.Count(e.ctx, e.ec, tbl.Name)
		if err != nil {
			return fail("count failed", err)
		}
		fields := make([]string, len(tbl.Fields))
		for i, f := range tbl.Fields {
			fields[i] = f.Name + ":" + string(f.Type)
		}
		infos = append(infos, TableInfo{
			Name:         tbl.Name,
			Key:          tbl.Key,
			Fields:       fields,
			Storage:      string(tbl.Storage),
			AutoGenerate: string(tbl.AutoGenerate),
			Records:      n,
		})
	}

	if e.out.Format == "json" {
		return e.out.Success(infos)
	}

	var lines []string
	for _, info := range infos {
		line := fmt.Sprintf("%s key=%s fields=%s storage=%s records=%d",
			info.Name, info.Key, strings.Join(info.Fields, ","), info.Storage, info.Records)
		if info.AutoGenerate != "" {
			line += " autogenerate=" + info.AutoGenerate
		}
		lines = append(lines, line)
	}
	return e.out.Success(strings.Join(lines, "\n"))
}
