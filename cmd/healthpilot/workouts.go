package main

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erazemk/healthpilot/internal/app"
	"github.com/erazemk/healthpilot/internal/model"
	"github.com/erazemk/healthpilot/internal/notify"
	"github.com/erazemk/healthpilot/internal/suggest"
	"github.com/erazemk/healthpilot/internal/tui"
)

func newWorkoutsCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workouts",
		Short: "List logged workouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := e.session(cmd.Context())
			if err != nil {
				return e.fail("Failed to load workouts", err)
			}
			workouts, err := e.svc.Backend.WorkoutHistory(cmd.Context(), sess)
			if err != nil {
				return e.fail("Failed to load workouts", err)
			}
			if len(workouts) == 0 {
				e.notify(notify.Infof("No workouts logged yet."))
				return nil
			}

			slices.SortStableFunc(workouts, func(a, b model.Workout) int {
				return cmp.Compare(b.Date, a.Date)
			})
			for _, w := range workouts {
				e.printf("%s %s %s\n", labelStyle.Render(w.Date), headingStyle.Render(w.Title), mutedStyle.Render(w.ID))
				for _, ex := range w.Exercises {
					sets := make([]string, 0, len(ex.Sets))
					for _, s := range ex.Sets {
						sets = append(sets, fmt.Sprintf("%s×%s", orZero(s.Weight), orZero(s.Reps)))
					}
					e.printf("  %s %s\n", ex.Name, mutedStyle.Render(strings.Join(sets, ", ")))
				}
			}
			return nil
		},
	}
	cmd.AddCommand(newWorkoutDeleteCmd(e))
	return cmd
}

func orZero(n model.Number) string {
	if n == 0 {
		return "0"
	}
	return n.String()
}

func newWorkoutDeleteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a logged workout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := e.session(cmd.Context())
			if err != nil {
				return e.fail("Failed to delete workout", err)
			}
			if err := e.svc.Backend.DeleteWorkout(cmd.Context(), sess, args[0]); err != nil {
				return e.fail("Failed to delete workout", err)
			}
			e.notify(notify.Successf("Workout deleted."))
			return nil
		},
	}
}

func exerciseLabel(x model.ExerciseInfo) string {
	return fmt.Sprintf("%s (%s, %s)", x.Name, x.Target, x.Equipment)
}

func newExerciseCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "exercise",
		Short: "Search the exercise database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := tui.Run(cmd.Context(), e.svc.SuggestExercises, tui.Options[model.ExerciseInfo]{
				Title:       "Find an exercise",
				Placeholder: "Exercise name",
				Label:       exerciseLabel,
				Describe:    func(err error) string { return app.Explain("Exercise search failed", err).Text },
				Suggest: suggest.Options[model.ExerciseInfo]{
					Delay:     e.svc.SuggestDelay(),
					MinLength: app.ExerciseMinQuery,
				},
			})
			if err != nil {
				return err
			}
			if res.Cancelled {
				return nil
			}

			x := res.Item
			e.printf("%s\n", headingStyle.Render(x.Name))
			e.printf("%s %s\n", labelStyle.Render("Target"), x.Target)
			e.printf("%s %s\n", labelStyle.Render("Body part"), x.BodyPart)
			e.printf("%s %s\n", labelStyle.Render("Equipment"), x.Equipment)
			if x.GifURL != "" {
				e.printf("%s %s\n", labelStyle.Render("Demo"), x.GifURL)
			}
			return nil
		},
	}
}
