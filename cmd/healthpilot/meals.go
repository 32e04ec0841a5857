package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/erazemk/healthpilot/internal/app"
	"github.com/erazemk/healthpilot/internal/charts"
	"github.com/erazemk/healthpilot/internal/diary"
	"github.com/erazemk/healthpilot/internal/model"
	"github.com/erazemk/healthpilot/internal/notify"
	"github.com/erazemk/healthpilot/internal/suggest"
	"github.com/erazemk/healthpilot/internal/tui"
)

// dateFlag returns the --date value, defaulting to today.
func dateFlag(e *env, raw string) (string, error) {
	if raw == "" {
		return e.svc.Today(), nil
	}
	return diary.ParseDate(raw)
}

func newMealsCmd(e *env) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "meals",
		Short: "Show the meals logged on a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := dateFlag(e, date)
			if err != nil {
				return err
			}
			sess, err := e.session(cmd.Context())
			if err != nil {
				return e.fail("Failed to load meals", err)
			}
			meals, err := e.svc.Backend.Meals(cmd.Context(), sess, day)
			if err != nil {
				return e.fail("Failed to load meals", err)
			}

			e.printf("%s\n", headingStyle.Render(day))
			for _, slot := range model.MealSlots {
				e.printf("%s %d kcal\n", labelStyle.Render(string(slot)), meals.SlotTotal(slot))
				for _, item := range meals.Items(slot) {
					e.printf("  %s %s\n", item.Name, mutedStyle.Render(fmt.Sprintf("%s%s · %d kcal", item.Quantity, item.Unit, item.Calories)))
				}
			}
			e.printf("%s %d kcal\n", labelStyle.Render("total"), meals.Total())
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day as YYYY-MM-DD (default today)")
	return cmd
}

func foodLabel(f model.Food) string {
	return fmt.Sprintf("%s · %s kcal/100 g", f.Label, num(f.Nutrients.Calories))
}

func newFoodCmd(e *env) *cobra.Command {
	var date, slotName string
	cmd := &cobra.Command{
		Use:   "food",
		Short: "Search for a food and add it to a meal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := dateFlag(e, date)
			if err != nil {
				return err
			}
			slot, err := diary.ParseSlot(slotName)
			if err != nil {
				return err
			}
			sess, err := e.session(cmd.Context())
			if err != nil {
				return e.fail("Failed to add food", err)
			}

			res, err := tui.Run(cmd.Context(), e.svc.SuggestFoods, tui.Options[model.Food]{
				Title:           fmt.Sprintf("Add food to %s (%s)", slot, day),
				Placeholder:     "Search food",
				Label:           foodLabel,
				AskQuantity:     true,
				DefaultQuantity: diary.DefaultQuantity,
				QuantityUnit:    diary.Unit,
				Describe:        func(err error) string { return app.Explain("Food search failed", err).Text },
				Suggest: suggest.Options[model.Food]{
					Delay:     e.svc.SuggestDelay(),
					MinLength: app.FoodMinQuery,
				},
			})
			if err != nil {
				return err
			}
			if res.Cancelled {
				e.notify(notify.Infof("Nothing added."))
				return nil
			}

			item, err := e.svc.AddFood(cmd.Context(), sess, day, slot, res.Item, res.Quantity)
			if err != nil {
				return e.fail("Failed to add food", err)
			}
			e.notify(notify.Successf("%s added to %s (%d kcal).", item.Name, slot, item.Calories))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day as YYYY-MM-DD (default today)")
	cmd.Flags().StringVarP(&slotName, "slot", "s", string(model.Breakfast), "meal: breakfast, lunch, dinner or snacks")
	return cmd
}

func newHistoryCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show calories per logged day against the goal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := e.session(cmd.Context())
			if err != nil {
				return e.fail("Failed to load history", err)
			}
			points, goal, err := e.svc.CalorieHistory(cmd.Context(), sess)
			if err != nil {
				return e.fail("Failed to load history", err)
			}
			if len(points) == 0 {
				e.notify(notify.Infof("No meals logged yet."))
				return nil
			}

			e.printf("%s\n", headingStyle.Render("Calories (goal "+num(goal)+" kcal)"))
			for _, p := range points {
				e.printf("%s %s %d kcal\n", labelStyle.Render(p.Label), bar(p.Percent, 30), p.Calories)
			}
			return nil
		},
	}
}

func newWaterCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "water [ml]",
		Short: "Show today's water or log ml more",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := e.session(cmd.Context())
			if err != nil {
				return e.fail("Failed to load water", err)
			}

			if len(args) == 1 {
				ml, err := strconv.Atoi(args[0])
				if err != nil {
					ml = 0
				}
				total, err := e.svc.AddWater(cmd.Context(), sess, ml)
				if err != nil {
					return e.fail("Failed to log water", err)
				}
				e.notify(notify.Successf("Added %dml. Today: %s L.", ml, num(total)))
				return nil
			}

			liters, err := e.svc.Backend.Water(cmd.Context(), sess, e.svc.Today())
			if err != nil {
				return e.fail("Failed to load water", err)
			}
			profile, err := e.svc.Backend.Profile(cmd.Context(), sess)
			if err != nil {
				return e.fail("Failed to load profile", err)
			}
			goal := profile.WaterGoalOrDefault()
			e.printf("%s %s %s / %s L\n", labelStyle.Render("Water"), bar(charts.Progress(liters, goal), 20), num(liters), num(goal))
			return nil
		},
	}
}
