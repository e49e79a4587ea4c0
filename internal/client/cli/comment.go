package cli

import (
	"context"

	"github.com/avolkovs/threadly/internal/client/models"
)

func (a *App) NewComment(ctx context.Context) error {
	postID, err := GetSimpleText(a.reader, "Enter post id", a.out)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "Enter comment", a.out)
	if err != nil {
		return err
	}

	comment, err := a.comments.Create(ctx, postID, content)
	if err != nil {
		a.printError(err)
		return err
	}

	a.printf("Commented as %s\n", comment.ID)
	return nil
}

func (a *App) VoteComment(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter comment id", a.out)
	if err != nil {
		return err
	}
	direction, err := GetSimpleText(a.reader, "Vote up or down?", a.out)
	if err != nil {
		return err
	}

	comment, err := a.comments.Vote(ctx, id, models.VoteType(direction))
	if err != nil {
		a.printError(err)
		return err
	}

	a.printf("%s now has %d votes\n", comment.ID, comment.Votes)
	return nil
}

func (a *App) Leaderboard(ctx context.Context) error {
	top, err := a.board.Top(ctx, 10)
	if err != nil {
		a.printError(err)
		return err
	}

	for _, entry := range top {
		a.printf("%2d. %s (%d)\n", entry.Rank, entry.User.DisplayName, entry.Score)
	}
	return nil
}
