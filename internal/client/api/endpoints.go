package api

import "net/url"

// Path builders for the consumed REST surface. Keeping them in one place
// means services never concatenate raw strings.

func RegisterPath() string { return "/users/register" }
func LoginPath() string    { return "/users/login" }
func LogoutPath() string   { return "/users/logout" }
func ProfilePath() string  { return "/users/profile/me" }
func ProfileUpdatePath() string {
	return "/users/profile"
}
func AvatarPath() string { return "/users/profile/avatar" }

func UserPath(id string) string { return "/users/" + url.PathEscape(id) }

func PostsPath() string { return "/posts" }
func PostPath(id string) string {
	return "/posts/" + url.PathEscape(id)
}
func PostsByUserPath(userID string) string { return "/posts/user/" + url.PathEscape(userID) }
func PostLikePath(id string) string        { return "/posts/" + url.PathEscape(id) + "/like" }
func PostVotePath(id string) string        { return "/posts/" + url.PathEscape(id) + "/vote" }

func CommentsPath() string { return "/comments" }
func CommentPath(id string) string {
	return "/comments/" + url.PathEscape(id)
}
func CommentsByPostPath(postID string) string { return "/comments/post/" + url.PathEscape(postID) }
func CommentsByUserPath(userID string) string { return "/comments/user/" + url.PathEscape(userID) }
func CommentVotePath(id string) string        { return "/comments/" + url.PathEscape(id) + "/vote" }

func LeaderboardPath() string { return "/leaderboard" }
