package cli

import (
	"context"
	"strings"

	"github.com/avolkovs/threadly/internal/client/models"
	"github.com/avolkovs/threadly/internal/client/services"
	"github.com/avolkovs/threadly/internal/filex"
)

func (a *App) printPost(p models.Post) {
	a.printf("[%s] %s (votes %d, likes %d)\n", p.ID, p.Title, p.Votes, len(p.LikedBy))
	if len(p.Tags) > 0 {
		a.println("  tags:", strings.Join(p.Tags, ", "))
	}
	if p.Author.DisplayName != "" {
		a.println("  by", p.Author.DisplayName)
	}
}

func (a *App) Feed(ctx context.Context) error {
	posts, err := a.posts.List(ctx, models.PostFilter{})
	if err != nil {
		a.printError(err)
		return err
	}
	if len(posts) == 0 {
		a.println("No posts yet.")
		return nil
	}
	for _, p := range posts {
		a.printPost(p)
	}
	return nil
}

func (a *App) Trending(ctx context.Context) error {
	posts, err := a.posts.Trending(ctx)
	if err != nil {
		a.printError(err)
		return err
	}
	for _, p := range posts {
		a.printPost(p)
	}
	return nil
}

func (a *App) ShowPost(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter post id", a.out)
	if err != nil {
		return err
	}

	post, err := a.posts.Get(ctx, id)
	if err != nil {
		a.printError(err)
		return err
	}

	a.printPost(*post)
	a.println(post.Content)

	comments, err := a.comments.ByPost(ctx, id, models.CommentFilter{})
	if err != nil {
		a.printError(err)
		return err
	}
	for _, c := range comments {
		a.printf("  [%s] %s: %s (votes %d)\n", c.ID, c.Author.DisplayName, c.Content, c.Votes)
	}
	return nil
}

func (a *App) NewPost(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Enter title", a.out)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "Enter content", a.out)
	if err != nil {
		return err
	}
	tags, err := GetTags(a.reader, a.out)
	if err != nil {
		return err
	}

	in := services.CreatePostInput{Title: title, Content: content, Tags: tags}

	imagePath, err := GetSimpleText(a.reader, "Image file path (empty to skip)", a.out)
	if err != nil {
		return err
	}
	if imagePath != "" {
		name, data, err := filex.ReadAttachment(imagePath)
		if err != nil {
			a.printError(err)
			return err
		}
		in.ImageName = name
		in.Image = data
	}

	post, err := a.posts.Create(ctx, in)
	if err != nil {
		a.printError(err)
		return err
	}

	a.printf("Posted as %s\n", post.ID)
	return nil
}

func (a *App) EditPost(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter post id", a.out)
	if err != nil {
		return err
	}
	title, err := GetSimpleText(a.reader, "New title (empty to keep)", a.out)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "New content (empty to keep)", a.out)
	if err != nil {
		return err
	}

	var in services.UpdatePostInput
	if title != "" {
		in.Title = &title
	}
	if content != "" {
		in.Content = &content
	}

	post, err := a.posts.Update(ctx, id, in)
	if err != nil {
		a.printError(err)
		return err
	}

	a.printf("Updated %s\n", post.ID)
	return nil
}

func (a *App) DeletePost(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter post id", a.out)
	if err != nil {
		return err
	}

	if err := a.posts.Delete(ctx, id); err != nil {
		a.printError(err)
		return err
	}

	a.println("Deleted")
	return nil
}

func (a *App) LikePost(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter post id", a.out)
	if err != nil {
		return err
	}

	post, err := a.posts.ToggleLike(ctx, id)
	if err != nil {
		a.printError(err)
		return err
	}

	a.printf("%s now has %d likes\n", post.ID, len(post.LikedBy))
	return nil
}

func (a *App) VotePost(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter post id", a.out)
	if err != nil {
		return err
	}
	direction, err := GetSimpleText(a.reader, "Vote up or down?", a.out)
	if err != nil {
		return err
	}

	post, err := a.posts.Vote(ctx, id, models.VoteType(direction))
	if err != nil {
		a.printError(err)
		return err
	}

	a.printf("%s now has %d votes\n", post.ID, post.Votes)
	return nil
}
