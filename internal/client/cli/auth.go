package cli

import (
	"context"
	"errors"

	"github.com/avolkovs/threadly/internal/client/api"
	"github.com/avolkovs/threadly/internal/client/services"
	"github.com/avolkovs/threadly/internal/filex"
)

// printError renders a failure in user terms: the typed message when the
// error came from the API, the raw error otherwise.
func (a *App) printError(err error) {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		a.println("Error:", apiErr.Message)
		return
	}
	a.println("Error:", err.Error())
}

func (a *App) Register(ctx context.Context) error {
	displayName, err := GetSimpleText(a.reader, "Enter display name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	in := services.RegisterInput{DisplayName: displayName, Email: email, Password: password}

	avatarPath, err := GetSimpleText(a.reader, "Avatar file path (empty to skip)", a.out)
	if err != nil {
		return err
	}
	if avatarPath != "" {
		name, content, err := filex.ReadAttachment(avatarPath)
		if err != nil {
			a.printError(err)
			return err
		}
		in.AvatarName = name
		in.Avatar = content
	}

	user, err := a.auth.Register(ctx, in)
	if err != nil {
		a.printError(err)
		return err
	}

	a.printf("Welcome, %s!\n", user.DisplayName)
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}

	user, err := a.auth.Login(ctx, email, password)
	if err != nil {
		a.printError(err)
		return err
	}

	a.printf("Logged in as %s\n", user.DisplayName)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		// The local session is already cleared; just report the server side.
		a.printError(err)
	}
	a.println("Logged out")
	return nil
}

func (a *App) Profile(ctx context.Context) error {
	user, err := a.auth.Profile(ctx)
	if err != nil {
		a.printError(err)
		return err
	}

	a.printf("%s <%s>\n", user.DisplayName, user.Email)
	if user.Bio != "" {
		a.println(user.Bio)
	}
	a.printf("Score: %d\n", user.Score)
	return nil
}

func (a *App) ShowUser(ctx context.Context) error {
	id, err := GetSimpleText(a.reader, "Enter user id", a.out)
	if err != nil {
		return err
	}

	user, err := a.users.ByID(ctx, id)
	if err != nil {
		a.printError(err)
		return err
	}

	a.printf("%s (score %d)\n", user.DisplayName, user.Score)
	if user.Bio != "" {
		a.println(user.Bio)
	}
	return nil
}
