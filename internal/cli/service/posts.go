package service

import (
	"fmt"

	"github.com/zfogg/murmur/internal/cli/output"
)

type PostService struct{}

// NewPostService creates a new post service
func NewPostService() *PostService {
	return &PostService{}
}

// Create publishes a post
func (s *PostService) Create(content, category, imageURL string) error {
	client, _, err := authedClient()
	if err != nil {
		return err
	}
	post, err := client.CreatePost(content, category, imageURL)
	if err != nil {
		return explain(err)
	}
	if output.IsJSON() {
		return output.JSON(post)
	}
	output.Success("Posted %s", post.ID)
	return nil
}

// List prints recent posts, optionally by one author
func (s *PostService) List(author string, page, pageSize int) error {
	list, err := newClient().Posts(author, page, pageSize)
	if err != nil {
		return err
	}
	if err := printPosts(list.Posts); err != nil {
		return err
	}
	if !output.IsJSON() && list.HasMore {
		output.Info("More posts: --page %d", list.Page+1)
	}
	return nil
}

// Delete removes one of your posts
func (s *PostService) Delete(id string) error {
	client, _, err := authedClient()
	if err != nil {
		return err
	}
	if err := client.DeletePost(id); err != nil {
		return explain(err)
	}
	output.Success("Deleted %s", id)
	return nil
}

// Like likes or unlikes a post
func (s *PostService) Like(id string, undo bool) error {
	client, _, err := authedClient()
	if err != nil {
		return err
	}

	like := client.Like
	if undo {
		like = client.Unlike
	}
	result, err := like(id)
	if err != nil {
		return explain(err)
	}
	if output.IsJSON() {
		return output.JSON(result)
	}
	verb := "Liked"
	if !result.Liked {
		verb = "Unliked"
	}
	output.Success("%s %s (%d likes)", verb, id, result.Total)
	return nil
}

// Comments prints a post's comments
func (s *PostService) Comments(postID string) error {
	comments, err := newClient().Comments(postID)
	if err != nil {
		return err
	}
	if output.IsJSON() {
		return output.JSON(comments)
	}
	if len(comments) == 0 {
		output.Info("No comments")
		return nil
	}

	rows := make([][]string, 0, len(comments))
	for _, c := range comments {
		author := c.Author
		if c.Profile != nil {
			author = "@" + c.Profile.Username
		}
		rows = append(rows, []string{c.ID, author, oneLine(c.Content, 60), humanTime(c.CreatedAt)})
	}
	output.Table([]string{"ID", "AUTHOR", "COMMENT", "POSTED"}, rows)
	return nil
}

// Comment adds a comment to a post
func (s *PostService) Comment(postID, content string) error {
	client, _, err := authedClient()
	if err != nil {
		return err
	}
	comment, err := client.AddComment(postID, content)
	if err != nil {
		return explain(err)
	}
	if output.IsJSON() {
		return output.JSON(comment)
	}
	output.Success("Commented %s", comment.ID)
	return nil
}

type FeedService struct{}

// NewFeedService creates a new feed service
func NewFeedService() *FeedService {
	return &FeedService{}
}

// Timeline prints one page of the follow feed
func (s *FeedService) Timeline(page int) error {
	client, _, err := authedClient()
	if err != nil {
		return err
	}
	feed, err := client.Feed(page)
	if err != nil {
		return explain(err)
	}
	if output.IsJSON() {
		return output.JSON(feed)
	}
	if err := printPosts(feed.Posts); err != nil {
		return err
	}
	if feed.HasMore {
		output.Info("More posts: --page %d", feed.Page+1)
	}
	return nil
}

// Search prints posts matching query
func (s *FeedService) Search(query string, page, pageSize int) error {
	list, err := newClient().SearchPosts(query, page, pageSize)
	if err != nil {
		return err
	}
	if output.IsJSON() {
		return output.JSON(list)
	}
	output.Info("%d results for %q", list.Total, query)
	return printPosts(list.Posts)
}

// Trending prints the most used recent hashtags
func (s *FeedService) Trending(limit int) error {
	tags, err := newClient().Trending(limit)
	if err != nil {
		return err
	}
	if output.IsJSON() {
		return output.JSON(tags)
	}

	rows := make([][]string, 0, len(tags))
	for i, t := range tags {
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), t.Tag, fmt.Sprintf("%d", t.Count)})
	}
	output.Table([]string{"#", "TAG", "POSTS"}, rows)
	return nil
}
