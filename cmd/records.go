package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"insight/internal/tracker"
)

func newRecordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Browse and add life records",
	}

	cmd.AddCommand(
		newEmotionsCmd(),
		newFinancesCmd(),
		newSkillsCmd(),
		newLearningsCmd(),
	)

	return cmd
}

func trackerClient(cmd *cobra.Command) *tracker.Client {
	baseURL, _ := cmd.Flags().GetString("server")
	return tracker.NewClient(baseURL)
}

func today() string {
	return time.Now().Format("2006-01-02")
}

func newEmotionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emotions",
		Short: "Emotion journal records",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List emotion records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := trackerClient(cmd).ListEmotions(context.Background())
			if err != nil {
				return err
			}
			for _, r := range records {
				sentiment := r.Sentiment
				if sentiment == "" {
					sentiment = "-"
				}
				fmt.Printf("%-4d %s  %-8s %s\n", r.ID, r.Date, sentiment, r.Content)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <content>",
		Short: "Record how you feel today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := trackerClient(cmd).CreateEmotion(context.Background(), tracker.Emotion{
				Content: args[0],
				Date:    today(),
			})
			if err != nil {
				return err
			}
			fmt.Printf("Recorded emotion %d\n", created.ID)
			return nil
		},
	})

	return cmd
}

func newFinancesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finances",
		Short: "Income and expense records",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List finance records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := trackerClient(cmd).ListFinances(context.Background())
			if err != nil {
				return err
			}
			for _, r := range records {
				fmt.Printf("%-4d %s  %-8s %-12s %10.2f  %s\n",
					r.ID, r.Date, r.Category, r.Subcategory, r.Amount, r.Description)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <category> <subcategory> <amount>",
		Short: "Record an income or expense",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[2], err)
			}
			created, err := trackerClient(cmd).CreateFinance(context.Background(), tracker.Finance{
				Category:    args[0],
				Subcategory: args[1],
				Amount:      amount,
				Date:        today(),
			})
			if err != nil {
				return err
			}
			fmt.Printf("Recorded %s %d\n", created.Category, created.ID)
			return nil
		},
	})

	return cmd
}

func newSkillsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skills",
		Short: "Tracked skills",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tracked skills",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := trackerClient(cmd).ListSkills(context.Background())
			if err != nil {
				return err
			}
			for _, r := range records {
				fmt.Printf("%-4d %-20s %-12s level %d  %d%%\n",
					r.ID, r.Name, r.Category, r.Level, r.Progress)
			}
			return nil
		},
	})

	return cmd
}

func newLearningsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "learnings",
		Short: "Study-session records",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List study sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := trackerClient(cmd).ListLearnings(context.Background())
			if err != nil {
				return err
			}
			for _, r := range records {
				fmt.Printf("%-4d %s  %-20s %d min\n", r.ID, r.Date, r.Topic, r.Duration)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <topic> <minutes>",
		Short: "Record a study session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid duration %q: %w", args[1], err)
			}
			created, err := trackerClient(cmd).CreateLearning(context.Background(), tracker.Learning{
				Topic:    args[0],
				Duration: minutes,
				Date:     today(),
			})
			if err != nil {
				return err
			}
			fmt.Printf("Recorded learning %d\n", created.ID)
			return nil
		},
	})

	return cmd
}
