package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wfstudio/wfrender/pkg/pipeline"
	"github.com/wfstudio/wfrender/pkg/scene"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for wfrender.

Bash:
  $ source <(wfrender completion bash)

Zsh:
  $ wfrender completion zsh > "${fpath[1]}/_wfrender"

Fish:
  $ wfrender completion fish > ~/.config/fish/completions/wfrender.fish

PowerShell:
  PS> wfrender completion powershell | Out-String | Invoke-Expression

Completions cover --value kind names, --format and --time-policy.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
}

// registerFrameCompletions adds completions for the shared frame flags.
func registerFrameCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("value", completeValue)
	_ = cmd.RegisterFlagCompletionFunc("format", fixedCompletion(pipeline.FormatPNG, pipeline.FormatJPEG))
	_ = cmd.RegisterFlagCompletionFunc("time-policy", fixedCompletion("reject", "clamp"))
}

// completeValue completes the kind half of kind=value.
func completeValue(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if strings.Contains(toComplete, "=") {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, k := range scene.Kinds() {
		if name := k.String() + "="; strings.HasPrefix(name, toComplete) {
			out = append(out, name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

func fixedCompletion(choices ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return choices, cobra.ShellCompDirectiveNoFileComp
	}
}
