package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/family"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for kintree.

Besides commands and flags, the scripts complete family files (*.json) and,
once a family file is on the command line, person ids from that file:

  $ kintree show family.json <TAB>      ids with names, e.g. "ann  Ann Smith"
  $ kintree render family.json --anchor <TAB>

Ids are not completed for --mongo-uri sources or stdin.

Bash:
  $ source <(kintree completion bash)
  $ kintree completion bash > /etc/bash_completion.d/kintree

Zsh:
  $ kintree completion zsh > "${fpath[1]}/_kintree"

Fish:
  $ kintree completion fish > ~/.config/fish/completions/kintree.fish

PowerShell:
  PS> kintree completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}

	return cmd
}

// completeFamilyThenPerson completes "[family.json] <person-id>": a JSON
// file first, then the ids of the people in it.
func completeFamilyThenPerson(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch {
	case len(args) == 0 && !usesMongo(cmd):
		return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
	case len(args) == 1:
		return personCandidates(args[0], toComplete), cobra.ShellCompDirectiveNoFileComp
	default:
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeFamilyFile completes the optional family file argument.
func completeFamilyFile(cmd *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 || usesMongo(cmd) {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeAnchor completes --anchor from the family file given as the first
// argument.
func completeAnchor(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return personCandidates(inputArg(args), toComplete), cobra.ShellCompDirectiveNoFileComp
}

// personCandidates returns "id\tname" for every person in the file at path
// whose id starts with prefix. Unreadable input yields no candidates.
func personCandidates(path, prefix string) []string {
	if path == "" || path == stdinArg {
		return nil
	}
	doc, err := family.ReadFile(path)
	if err != nil {
		return nil
	}
	var out []string
	for _, p := range doc.People {
		if p.ID == "" || !strings.HasPrefix(p.ID, prefix) {
			continue
		}
		if name := p.DisplayName(); name != "" && name != p.ID {
			out = append(out, p.ID+"\t"+name)
		} else {
			out = append(out, p.ID)
		}
	}
	return out
}

func usesMongo(cmd *cobra.Command) bool {
	f := cmd.Flags().Lookup("mongo-uri")
	return f != nil && f.Value.String() != ""
}

// completeLayoutFile completes a layout file written by the layout command.
func completeLayoutFile(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
}
