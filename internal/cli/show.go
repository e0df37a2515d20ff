package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/pipeline"
)

// loadSession loads the family named by input and lays out its initial view.
func (c *CLI) loadSession(ctx context.Context, input string, src *sourceFlags, flags *optionFlags) (*pipeline.Session, error) {
	opts, err := flags.resolve(c.Logger)
	if err != nil {
		return nil, err
	}
	doc, _, err := src.load(ctx, input)
	if err != nil {
		return nil, err
	}
	prog := newProgress(c.Logger)
	sess, err := pipeline.Load(ctx, doc, opts)
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Loaded %d people", sess.Index().Len()))
	return sess, nil
}

// splitInput separates the optional input file from the trailing argument.
func splitInput(args []string) (input, rest string) {
	if len(args) == 2 {
		return args[0], args[1]
	}
	return "", args[0]
}

// showCommand creates the show command that prints one person's details.
func (c *CLI) showCommand() *cobra.Command {
	var (
		asJSON bool
		src    sourceFlags
		flags  optionFlags
	)

	cmd := &cobra.Command{
		Use:               "show [family.json] <person-id>",
		Short:             "Show the details of one person",
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: completeFamilyThenPerson,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, id := splitInput(args)
			sess, err := c.loadSession(cmd.Context(), input, &src, &flags)
			if err != nil {
				return err
			}
			d, err := sess.Details(id)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(d)
			}
			printDetails(d)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print details as JSON")
	src.register(cmd)
	flags.register(cmd)

	return cmd
}

func printDetails(d *pipeline.Details) {
	fmt.Println(StyleTitle.Render(d.Name) + " " + StyleDim.Render(d.ID))
	printKeyValue("Years", d.Years)
	printKeyValue("Status", d.Status)
	if d.Generation != nil {
		printKeyValue("Generation", StyleNumber.Render(strconv.Itoa(*d.Generation)))
	}
	if d.Subtitle != "" {
		printKeyValue("Subtitle", d.Subtitle)
	}
	if d.Location != "" {
		printKeyValue("Location", d.Location)
	}
	if d.Photo != "" {
		printKeyValue("Photo", StyleLink.Render(d.Photo))
	}
	printKeyValue("Parents", relativeNames(d.Parents))
	printKeyValue("Spouses", relativeNames(d.Spouses))
	printKeyValue("Children", relativeNames(d.Children))
	if d.Notes != "" {
		printNewline()
		fmt.Println(d.Notes)
	}
}

func relativeNames(rs []pipeline.Relative) string {
	if len(rs) == 0 {
		return StyleDim.Render("—")
	}
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.Name + " " + StyleDim.Render("("+r.Years+")")
	}
	return strings.Join(names, ", ")
}
