package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/session"
)

// exploreCommand creates the interactive terminal explorer.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		resume bool
		noSave bool
		src    sourceFlags
		flags  optionFlags
	)

	cmd := &cobra.Command{
		Use:   "explore [family.json]",
		Short: "Navigate a family tree in the terminal",
		Long: `Navigate a family tree in the terminal.

Move with the arrow keys, press enter to expand or collapse the selected
branch, f to focus a person (opening every collapsed ancestor), / to search
by name, e and c to expand or collapse everything, and r to reset the view.

The view is saved when the explorer exits; --resume continues from the last
saved view of the same data.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeFamilyFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := c.loadSession(cmd.Context(), inputArg(args), &src, &flags)
			if err != nil {
				return err
			}
			return c.runExplore(cmd.Context(), sess, resume, !noSave)
		},
	}

	cmd.Flags().BoolVar(&resume, "resume", false, "continue from the last saved view of this data")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not save the view on exit")
	src.register(cmd)
	flags.register(cmd)

	return cmd
}

// runExplore runs the explorer, restoring and saving the view snapshot.
func (c *CLI) runExplore(ctx context.Context, sess *pipeline.Session, resume, save bool) error {
	var store *session.ResumeStore
	if resume || save {
		s, err := session.NewResumeStore("")
		if err != nil {
			c.Logger.Warn("view snapshots disabled", "error", err)
		} else {
			store = s
		}
	}

	if resume && store != nil {
		saved, err := store.Load(ctx, sess.DatasetHash())
		switch {
		case err != nil:
			c.Logger.Warn("cannot read saved view", "error", err)
		case saved == nil:
			c.Logger.Info("no saved view for this data, starting fresh")
		default:
			sess.Restore(ctx, saved.View)
			c.Logger.Debug("restored view", "expanded", len(saved.View.Expanded), "focus", saved.View.Focus)
		}
	}

	final, err := tea.NewProgram(NewExploreModel(ctx, sess), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("explorer: %w", err)
	}

	if save && store != nil {
		m := final.(ExploreModel)
		snap := session.New(m.Sess.DatasetHash(), session.DefaultTTL)
		snap.View = m.Sess.Snapshot()
		if err := store.Save(ctx, snap); err != nil {
			c.Logger.Warn("cannot save view", "error", err)
			return nil
		}
		printDetail("View saved; continue with --resume")
	}
	return nil
}
