package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erazemk/healthpilot/internal/model"
	"github.com/erazemk/healthpilot/internal/notify"
)

func newProfileCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := e.session(cmd.Context())
			if err != nil {
				return e.fail("Failed to load profile", err)
			}
			p, err := e.svc.Backend.Profile(cmd.Context(), sess)
			if err != nil {
				return e.fail("Failed to load profile", err)
			}
			for _, f := range model.ProfileFields {
				value := p.Field(f.Name)
				if value == "" {
					value = mutedStyle.Render("-")
				}
				e.printf("%-24s %s %s\n", f.Label, value, mutedStyle.Render(f.Name))
			}
			return nil
		},
	}
	cmd.AddCommand(newProfileSetCmd(e))
	return cmd
}

func newProfileSetCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "set FIELD=VALUE...",
		Short: "Change profile fields",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := e.session(cmd.Context())
			if err != nil {
				return e.fail("Failed to update profile", err)
			}
			p, err := e.svc.Backend.Profile(cmd.Context(), sess)
			if err != nil {
				return e.fail("Failed to load profile", err)
			}

			changed := false
			for _, arg := range args {
				name, value, ok := strings.Cut(arg, "=")
				if !ok || name == "username" {
					return fmt.Errorf("expected FIELD=VALUE with an editable field, got %q", arg)
				}
				c, err := p.SetField(name, value)
				if err != nil {
					return err
				}
				changed = changed || c
			}
			if !changed {
				e.notify(notify.Infof("No changes to save."))
				return nil
			}

			if err := e.svc.Backend.UpdateProfile(cmd.Context(), sess, p); err != nil {
				return e.fail("Failed to update profile", err)
			}
			e.notify(notify.Successf("Profile updated successfully!"))
			return nil
		},
	}
}
