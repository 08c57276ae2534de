package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/zfogg/murmur/internal/cli/service"
)

var (
	feedPage      int
	feedPageSize  int
	trendingLimit int
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Read your feed, search and trending tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewFeedService().Timeline(feedPage)
	},
}

var feedSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search posts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewFeedService().Search(strings.Join(args, " "), feedPage, feedPageSize)
	},
}

var feedTrendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Show trending hashtags",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewFeedService().Trending(trendingLimit)
	},
}

func init() {
	feedCmd.PersistentFlags().IntVar(&feedPage, "page", 1, "Page number")
	feedSearchCmd.Flags().IntVar(&feedPageSize, "page-size", 20, "Results per page")
	feedTrendingCmd.Flags().IntVar(&trendingLimit, "limit", 10, "Number of hashtags")

	feedCmd.AddCommand(feedSearchCmd)
	feedCmd.AddCommand(feedTrendingCmd)
}
