package cli

import (
	"strings"

	"github.com/spf13/cobra"

	ctl "flowboard/internal/app"
	"flowboard/internal/model"
)

func newUsersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Team member commands",
	}
	cmd.AddCommand(newUsersListCmd(app))
	cmd.AddCommand(newUsersCreateCmd(app))
	cmd.AddCommand(newUsersDeleteCmd(app))
	return cmd
}

func newUsersListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List team members",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done, err := openController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()
			return writeOut(cmd, app, map[string]any{"data": c.Users()})
		},
	}
}

func newUsersCreateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Add a team member",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done, err := openController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			res, err := c.CreateUser(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return writeErr(cmd, err)
			}
			u, _ := c.User(res.ID)
			return writeOut(cmd, app, map[string]any{"data": u})
		},
	}
}

func newUsersDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <user>",
		Short: "Remove a team member and unassign their tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, done, err := openController(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer done()

			u, err := resolveUser(c, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			c.DeleteUser(cmd.Context(), u.ID)
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": u.ID}})
		},
	}
}

// resolveUser accepts a user id, a name or initials.
func resolveUser(c *ctl.Controller, ref string) (model.User, error) {
	ref = strings.TrimSpace(ref)
	if u, err := c.User(ref); err == nil {
		return u, nil
	}
	if u, ok := c.FindUserByName(ref); ok {
		return u, nil
	}
	return model.User{}, ctl.NotFoundError{Kind: "user", ID: ref}
}
