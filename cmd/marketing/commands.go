package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/QuangTung97/marketing/model"
	"github.com/QuangTung97/marketing/service/marketing"
	"github.com/QuangTung97/marketing/service/query"
)

func pageFlags(cmd *cobra.Command, page *model.PageRequest) {
	cmd.Flags().IntVar(&page.Page, "page", 0, "zero-based page number")
	cmd.Flags().IntVar(&page.Size, "size", model.DefaultPageSize, "page size")
}

func decimalArg(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid decimal %q", s)
	}
	return decimal.NewNullDecimal(d), nil
}

func campaignsCommand(getApp func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campaigns",
		Short: "list and operate campaigns",
	}

	var params marketing.ListParams
	var sortDir string
	list := &cobra.Command{
		Use:   "list",
		Short: "list campaigns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params.SortDir = marketing.SortDirection(sortDir)
			page, err := getApp().query.GetAllCampaigns(cmd.Context(), params)
			if err != nil {
				return err
			}
			return printJSON(cmd, page)
		},
	}
	pageFlags(list, &params.PageRequest)
	list.Flags().StringVar(&params.SortBy, "sort-by", "", "sort field, e.g. name or createdAt")
	list.Flags().StringVar(&sortDir, "sort-dir", "", "asc or desc")

	var searchPage model.PageRequest
	search := &cobra.Command{
		Use:   "search QUERY",
		Short: "search campaigns by name or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := getApp().query.SearchCampaigns(cmd.Context(), args[0], searchPage)
			if err != nil {
				return err
			}
			return printJSON(cmd, page)
		},
	}
	pageFlags(search, &searchPage)

	var overPage model.PageRequest
	overBudget := &cobra.Command{
		Use:   "over-budget",
		Short: "list campaigns whose cost exceeds the budget limit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := getApp().query.GetCampaignsOverBudget(cmd.Context(), overPage)
			if err != nil {
				return err
			}
			return printJSON(cmd, page)
		},
	}
	pageFlags(overBudget, &overPage)

	schedule := &cobra.Command{
		Use:   "schedule ID TIME",
		Short: "schedule a draft campaign, TIME in RFC3339",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			at, err := time.Parse(time.RFC3339, args[1])
			if err != nil {
				return fmt.Errorf("invalid time %q: %w", args[1], err)
			}
			c, err := getApp().query.ScheduleCampaign(cmd.Context(), id, at)
			if err != nil {
				return err
			}
			return printJSON(cmd, c)
		},
	}

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "delete a campaign with its executions and metrics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return getApp().query.DeleteCampaign(cmd.Context(), id)
		},
	}

	transitions := []struct {
		use   string
		short string
		fn    func(s *query.Service, ctx context.Context, id int64) (model.Campaign, error)
	}{
		{use: "activate", short: "activate a draft, scheduled or paused campaign", fn: (*query.Service).ActivateCampaign},
		{use: "pause", short: "pause an active campaign", fn: (*query.Service).PauseCampaign},
		{use: "complete", short: "complete an active or paused campaign", fn: (*query.Service).CompleteCampaign},
		{use: "cancel", short: "cancel a campaign", fn: (*query.Service).CancelCampaign},
		{use: "archive", short: "archive a completed or cancelled campaign", fn: (*query.Service).ArchiveCampaign},
	}

	cmd.AddCommand(
		list,
		&cobra.Command{
			Use:   "get ID",
			Short: "show a campaign",
			Args:  cobra.ExactArgs(1),
			RunE:  withID(getApp, (*query.Service).GetCampaignByID),
		},
		search,
		overBudget,
		schedule,
		del,
		&cobra.Command{
			Use:   "performance ID",
			Short: "show the all-time performance of a campaign",
			Args:  cobra.ExactArgs(1),
			RunE: withID(getApp, func(s *query.Service, ctx context.Context, id int64) (model.CampaignPerformance, error) {
				return s.GetCampaignPerformance(ctx, id, marketing.DateRange{})
			}),
		},
		&cobra.Command{
			Use:   "roi ID",
			Short: "show the return on investment of a campaign",
			Args:  cobra.ExactArgs(1),
			RunE:  withID(getApp, (*query.Service).GetCampaignROI),
		},
		&cobra.Command{
			Use:   "dashboard ID",
			Short: "show the dashboard of a campaign",
			Args:  cobra.ExactArgs(1),
			RunE:  withID(getApp, (*query.Service).GetCampaignDashboard),
		},
	)
	for _, t := range transitions {
		cmd.AddCommand(&cobra.Command{
			Use:   t.use + " ID",
			Short: t.short,
			Args:  cobra.ExactArgs(1),
			RunE:  withID(getApp, t.fn),
		})
	}
	return cmd
}

func executionsCommand(getApp func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "executions",
		Short: "inspect and send executions",
	}

	var page model.PageRequest
	list := &cobra.Command{
		Use:   "list CAMPAIGN_ID",
		Short: "list the executions of a campaign, most recent first",
		Args:  cobra.ExactArgs(1),
		RunE: withID(getApp, func(s *query.Service, ctx context.Context, id int64) (model.Page[model.Execution], error) {
			return s.GetExecutionsByCampaign(ctx, id, page)
		}),
	}
	pageFlags(list, &page)

	cmd.AddCommand(
		list,
		&cobra.Command{
			Use:   "get ID",
			Short: "show an execution",
			Args:  cobra.ExactArgs(1),
			RunE:  withID(getApp, (*query.Service).GetExecutionByID),
		},
		&cobra.Command{
			Use:   "send ID",
			Short: "dispatch a pending or scheduled execution",
			Args:  cobra.ExactArgs(1),
			RunE:  withID(getApp, (*query.Service).SendExecution),
		},
	)
	return cmd
}

func budgetCommand(getApp func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "show or change campaign budgets",
	}

	var costPerSend string
	set := &cobra.Command{
		Use:   "set ID LIMIT",
		Short: "set the budget limit of a campaign, an empty LIMIT removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			limit, err := decimalArg(args[1])
			if err != nil {
				return err
			}
			cost, err := decimalArg(costPerSend)
			if err != nil {
				return err
			}

			b, err := getApp().query.UpdateCampaignBudget(cmd.Context(), id, model.BudgetUpdate{
				BudgetLimit: limit,
				CostPerSend: cost,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, b)
		},
	}
	set.Flags().StringVar(&costPerSend, "cost-per-send", "", "cost of one send")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get ID",
			Short: "show the budget of a campaign",
			Args:  cobra.ExactArgs(1),
			RunE:  withID(getApp, (*query.Service).GetCampaignBudget),
		},
		set,
	)
	return cmd
}

func systemCommand(getApp func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "system",
		Short: "run maintenance operations",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "health",
			Short: "show the system health",
			Args:  cobra.NoArgs,
			RunE:  noArgs(getApp, (*query.Service).GetSystemHealth),
		},
		&cobra.Command{
			Use:   "process-scheduled",
			Short: "start due campaigns and send due executions",
			Args:  cobra.NoArgs,
			RunE:  noArgs(getApp, (*query.Service).ProcessScheduled),
		},
		&cobra.Command{
			Use:   "retry-failed",
			Short: "retry failed executions that have retries left",
			Args:  cobra.NoArgs,
			RunE:  noArgs(getApp, (*query.Service).RetryFailed),
		},
		&cobra.Command{
			Use:   "optimize",
			Short: "pause over-budget campaigns and re-rank auto-optimized ones",
			Args:  cobra.NoArgs,
			RunE:  noArgs(getApp, (*query.Service).OptimizeCampaigns),
		},
	)
	return cmd
}

func trackCommand(getApp func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track",
		Short: "send tracking events",
	}

	var value string
	conversion := &cobra.Command{
		Use:   "conversion CODE EVENT",
		Short: "record an event, e.g. open, click or purchase",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := decimalArg(value)
			if err != nil {
				return err
			}
			return getApp().query.TrackConversion(cmd.Context(), args[0], args[1], v).Err
		},
	}
	conversion.Flags().StringVar(&value, "value", "", "conversion value")

	var reason string
	unsubscribe := &cobra.Command{
		Use:   "unsubscribe CODE",
		Short: "record an unsubscribe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getApp().query.TrackUnsubscribe(cmd.Context(), args[0], reason).Err
		},
	}
	unsubscribe.Flags().StringVar(&reason, "reason", "", "unsubscribe reason")

	cmd.AddCommand(conversion, unsubscribe)
	return cmd
}

func dashboardCommand(getApp func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "show the marketing dashboard",
		Args:  cobra.NoArgs,
		RunE:  noArgs(getApp, (*query.Service).GetDashboard),
	}
}
