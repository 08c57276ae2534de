package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/zfogg/murmur/internal/cli/service"
)

var (
	postCategory string
	postImageURL string
	postAuthor   string
	postPage     int
	postPageSize int
	unlike       bool
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Create and interact with posts",
}

var postCreateCmd = &cobra.Command{
	Use:   "create <text>",
	Short: "Publish a post",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewPostService().Create(strings.Join(args, " "), postCategory, postImageURL)
	},
}

var postListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewPostService().List(postAuthor, postPage, postPageSize)
	},
}

var postDeleteCmd = &cobra.Command{
	Use:   "delete <post-id>",
	Short: "Delete one of your posts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewPostService().Delete(args[0])
	},
}

var postLikeCmd = &cobra.Command{
	Use:   "like <post-id>",
	Short: "Like a post (--undo to unlike)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewPostService().Like(args[0], unlike)
	},
}

var postCommentsCmd = &cobra.Command{
	Use:   "comments <post-id>",
	Short: "List a post's comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewPostService().Comments(args[0])
	},
}

var postCommentCmd = &cobra.Command{
	Use:   "comment <post-id> <text>",
	Short: "Comment on a post",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return service.NewPostService().Comment(args[0], strings.Join(args[1:], " "))
	},
}

func init() {
	postCreateCmd.Flags().StringVar(&postCategory, "category", "", "general, question, announcement or discussion")
	postCreateCmd.Flags().StringVar(&postImageURL, "image-url", "", "Image URL from an upload")
	postListCmd.Flags().StringVar(&postAuthor, "author", "", "Only posts by this user ID")
	postListCmd.Flags().IntVar(&postPage, "page", 1, "Page number")
	postListCmd.Flags().IntVar(&postPageSize, "page-size", 20, "Posts per page")
	postLikeCmd.Flags().BoolVar(&unlike, "undo", false, "Unlike instead")

	postCmd.AddCommand(postCreateCmd)
	postCmd.AddCommand(postListCmd)
	postCmd.AddCommand(postDeleteCmd)
	postCmd.AddCommand(postLikeCmd)
	postCmd.AddCommand(postCommentsCmd)
	postCmd.AddCommand(postCommentCmd)
}
