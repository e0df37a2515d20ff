package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/family"
	"github.com/matzehuels/kintree/pkg/pipeline"
)

// searchCommand creates the search command that lists people by name.
func (c *CLI) searchCommand() *cobra.Command {
	var (
		src   sourceFlags
		flags optionFlags
	)

	cmd := &cobra.Command{
		Use:               "search [family.json] <query>",
		Short:             "Find people whose name contains a query",
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: completeFamilyFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, query := splitInput(args)
			sess, err := c.loadSession(cmd.Context(), input, &src, &flags)
			if err != nil {
				return err
			}
			matches, err := sess.Search(query)
			if err != nil {
				return err
			}
			if len(matches) == 0 {
				printInfo("No one matches %q", query)
				return nil
			}
			fmt.Println(searchTable(sess, matches))
			printDetail("%d match(es)", len(matches))
			return nil
		},
	}

	src.register(cmd)
	flags.register(cmd)

	return cmd
}

// searchTable renders matches as a bordered table. People not connected to
// the anchor show no generation.
func searchTable(sess *pipeline.Session, matches []*family.Person) string {
	rows := make([][]string, 0, len(matches))
	for _, p := range matches {
		gen := "—"
		if g, ok := sess.Generations().Lookup(p.ID); ok {
			gen = strconv.Itoa(g)
		}
		rows = append(rows, []string{p.ID, p.DisplayName(), p.Years(), gen, string(p.Status())})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Years", "Gen", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			switch col {
			case 0:
				return base.Foreground(colorDim)
			case 1:
				return base.Foreground(colorCyan)
			case 4:
				if rows[row][4] == string(family.StatusDeceased) {
					return base.Foreground(colorGray)
				}
				return base.Foreground(colorGreen)
			}
			return base
		}).
		Render()
}
