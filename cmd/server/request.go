package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Clark-Hu/course-conditions/internal/apiclient"
	"github.com/Clark-Hu/course-conditions/internal/domain"
	"github.com/Clark-Hu/course-conditions/internal/logging"
	"github.com/Clark-Hu/course-conditions/internal/service"
)

type requestFlags struct {
	baseURL     string
	timeout     time.Duration
	user        string
	ratings     []string
	condition   int
	description string
}

func newRequestCommand() *cobra.Command {
	flags := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Send requests to a running server",
	}
	cmd.PersistentFlags().StringVar(&flags.baseURL, "url", "http://localhost:8080", "server base URL")
	cmd.PersistentFlags().DurationVar(&flags.timeout, "timeout", 10*time.Second, "request timeout")

	withClient := func(fn func(cmd *cobra.Command, c *apiclient.Client, args []string) (any, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			c, err := apiclient.New(flags.baseURL, flags.timeout, logging.Discard())
			if err != nil {
				return err
			}
			result, err := fn(cmd, c, args)
			if err != nil {
				return err
			}
			if result == nil {
				return nil
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
	}

	submitCmd := &cobra.Command{
		Use:   "submit <course-id>",
		Short: "Submit ratings and/or a condition report",
		Args:  cobra.ExactArgs(1),
		RunE: withClient(func(cmd *cobra.Command, c *apiclient.Client, args []string) (any, error) {
			id, err := parseCourseID(args[0])
			if err != nil {
				return nil, err
			}
			sub, err := flags.submission(cmd.Flags().Changed("condition"))
			if err != nil {
				return nil, err
			}
			if err := c.Submit(cmd.Context(), id, sub); err != nil {
				return nil, err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "submitted for course %d as %s\n", id, sub.UserID)
			return nil, nil
		}),
	}
	submitCmd.Flags().StringVar(&flags.user, "user", "", "user id (default: random UUID)")
	submitCmd.Flags().StringSliceVar(&flags.ratings, "rating", nil, "dimension=value, repeatable")
	submitCmd.Flags().IntVar(&flags.condition, "condition", 0, "condition rating")
	submitCmd.Flags().StringVar(&flags.description, "description", "", "condition description")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "health",
			Short: "Check server health",
			Args:  cobra.NoArgs,
			RunE: withClient(func(cmd *cobra.Command, c *apiclient.Client, _ []string) (any, error) {
				if err := c.Health(cmd.Context()); err != nil {
					return nil, err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "OK")
				return nil, nil
			}),
		},
		&cobra.Command{
			Use:   "dimensions",
			Short: "List rating dimensions",
			Args:  cobra.NoArgs,
			RunE: withClient(func(cmd *cobra.Command, c *apiclient.Client, _ []string) (any, error) {
				return c.Dimensions(cmd.Context())
			}),
		},
		&cobra.Command{
			Use:   "course <course-id>",
			Short: "Fetch the summary of one course",
			Args:  cobra.ExactArgs(1),
			RunE: withClient(func(cmd *cobra.Command, c *apiclient.Client, args []string) (any, error) {
				id, err := parseCourseID(args[0])
				if err != nil {
					return nil, err
				}
				return c.CourseData(cmd.Context(), id)
			}),
		},
		&cobra.Command{
			Use:   "bulk <id,id,...>",
			Short: "Fetch summaries for several courses",
			Args:  cobra.ExactArgs(1),
			RunE: withClient(func(cmd *cobra.Command, c *apiclient.Client, args []string) (any, error) {
				return c.Bulk(cmd.Context(), service.ParseCourseIDs(args[0]))
			}),
		},
		submitCmd,
	)
	return cmd
}

func (f *requestFlags) submission(hasCondition bool) (apiclient.Submission, error) {
	sub := apiclient.Submission{UserID: f.user}
	if sub.UserID == "" {
		sub.UserID = uuid.NewString()
	}
	if len(f.ratings) > 0 {
		sub.Ratings = make(map[string]int, len(f.ratings))
		for _, pair := range f.ratings {
			name, raw, ok := strings.Cut(pair, "=")
			if !ok || strings.TrimSpace(name) == "" {
				return apiclient.Submission{}, fmt.Errorf("rating %q must look like dimension=value", pair)
			}
			value, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return apiclient.Submission{}, fmt.Errorf("rating %q: %w", pair, err)
			}
			sub.Ratings[strings.TrimSpace(name)] = value
		}
	}
	if hasCondition {
		condition := f.condition
		sub.ConditionsRating = &condition
		if f.description != "" {
			description := f.description
			sub.ConditionsDescription = &description
		}
	}
	return sub, nil
}

func parseCourseID(raw string) (domain.CourseID, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid course id %q", raw)
	}
	return domain.CourseID(id), nil
}
