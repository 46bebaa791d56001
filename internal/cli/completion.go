package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kintower/pkg/graph"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for kintower.

To load completions:

Bash:
  $ source <(kintower completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ kintower completion bash > /etc/bash_completion.d/kintower
  # macOS:
  $ kintower completion bash > $(brew --prefix)/etc/bash_completion.d/kintower

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ kintower completion zsh > "${fpath[1]}/_kintower"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ kintower completion fish | source

  # To load completions for each session, execute once:
  $ kintower completion fish > ~/.config/fish/completions/kintower.fish

PowerShell:
  PS> kintower completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> kintower completion powershell > kintower.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeCompletion(cmd.Root(), args[0], c.Out)
		},
	}

	return cmd
}

func writeCompletion(root *cobra.Command, shell string, w io.Writer) error {
	switch shell {
	case "bash":
		return root.GenBashCompletionV2(w, true)
	case "zsh":
		return root.GenZshCompletion(w)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(w)
	}
	return fmt.Errorf("unsupported shell %q", shell)
}

// completePeople offers person IDs from the family file given as the first
// argument for --primary.
func completePeople(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	g, err := graph.ReadFamilyFile(args[0])
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var ids []string
	for _, p := range g.People() {
		if strings.HasPrefix(p.ID, toComplete) {
			ids = append(ids, p.ID+"\t"+p.FullName())
		}
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}
