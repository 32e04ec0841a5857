package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/erazemk/healthpilot/internal/app"
	"github.com/erazemk/healthpilot/internal/charts"
	"github.com/erazemk/healthpilot/internal/model"
	"github.com/erazemk/healthpilot/internal/notify"
	"github.com/erazemk/healthpilot/internal/store"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	labelStyle   = lipgloss.NewStyle().Width(10).Foreground(lipgloss.Color("244"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// readSecret returns flag when set, otherwise reads one line from stdin.
func readSecret(cmd *cobra.Command, flag, prompt string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(strings.TrimSuffix(prompt, ": ")), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLoginCmd(e *env) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := readSecret(cmd, password, "Password: ")
			if err != nil {
				return err
			}
			sess, err := e.svc.Backend.Login(cmd.Context(), strings.TrimSpace(email), pw)
			if err != nil {
				e.notify(app.Explain("Login failed", err))
				return reportedError{err}
			}
			if err := store.SaveSession(cmd.Context(), e.db, sess); err != nil {
				return err
			}
			slog.Debug("session stored", "user", sess.Username)
			e.notify(notify.Successf("Logged in as %s.", sess.Username))
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (read from stdin when omitted)")
	cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCmd(e *env) *cobra.Command {
	var reg model.Registration
	var age string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := readSecret(cmd, reg.Password, "Password: ")
			if err != nil {
				return err
			}
			reg.Password = pw
			n, err := model.ParseNumber(age)
			if err != nil || n < 0 {
				e.notify(notify.Warnf("Age must be a number."))
				return reportedError{fmt.Errorf("invalid age %q", age)}
			}
			reg.Age = n

			if err := e.svc.Backend.Register(cmd.Context(), reg); err != nil {
				return e.fail("Registration failed", err)
			}
			e.notify(notify.Successf("Registration successful! You can log in now."))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&reg.Username, "username", "u", "", "username")
	f.StringVarP(&reg.Email, "email", "e", "", "email")
	f.StringVarP(&reg.Password, "password", "p", "", "password (read from stdin when omitted)")
	f.StringVar(&age, "age", "", "age")
	f.StringVar(&reg.Phone, "phone", "", "phone number")
	cmd.MarkFlagRequired("username")
	cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := store.ClearSession(cmd.Context(), e.db); err != nil {
				return err
			}
			e.notify(notify.Infof("Logged out."))
			return nil
		},
	}
}

func newStatusCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show today's calories, water and workout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := e.session(cmd.Context())
			if err != nil {
				return e.fail("Failed to load your day", err)
			}

			o, err := e.svc.Overview(cmd.Context(), sess, e.svc.Today())
			if o == nil {
				return e.fail("Failed to load your day", err)
			}
			if err != nil {
				e.notify(app.Explain("Some of today's data could not be loaded", err))
			}

			e.printf("%s\n", headingStyle.Render(fmt.Sprintf("%s · %s", sess.Username, o.Date)))
			e.printf("%s %s %d / %s kcal\n", labelStyle.Render("Calories"), bar(o.CaloriePercent, 20), o.Calories, num(o.CalorieGoal))
			e.printf("%s %s %s / %s L\n", labelStyle.Render("Water"), bar(o.WaterPercent, 20), num(o.Water), num(o.WaterGoal))
			workout := mutedStyle.Render("not yet")
			if o.Workout != nil {
				workout = "done: " + o.Workout.Title
			}
			e.printf("%s %s\n", labelStyle.Render("Workout"), workout)
			return nil
		},
	}
}

func newContactCmd(e *env) *cobra.Command {
	var msg model.ContactMessage
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Send a message to the team",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.svc.Backend.Contact(cmd.Context(), msg); err != nil {
				return e.fail("Failed to send message", err)
			}
			e.notify(notify.Successf("Message sent successfully!"))
			return nil
		},
	}
	cmd.Flags().StringVarP(&msg.Email, "email", "e", "", "your email")
	cmd.Flags().StringVarP(&msg.Message, "message", "m", "", "message")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("message")
	return cmd
}

// bar draws a progress bar width cells wide for a percentage.
func bar(percent float64, width int) string {
	filled := int(charts.Progress(percent, 100) / 100 * float64(width))
	style := lipgloss.NewStyle().Foreground(bandColor(charts.BandFor(percent)))
	return "[" + style.Render(strings.Repeat("█", filled)) + strings.Repeat("·", width-filled) + "]"
}

func bandColor(b charts.Band) lipgloss.Color {
	switch b {
	case charts.BandLow:
		return lipgloss.Color("203")
	case charts.BandNear:
		return lipgloss.Color("220")
	default:
		return lipgloss.Color("42")
	}
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
