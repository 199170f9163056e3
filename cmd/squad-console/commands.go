package main

import (
	"context"
	"errors"
	"flag"

	"github.com/0xmhha/squad-console/pkg/api"
	"github.com/0xmhha/squad-console/pkg/display"
	"github.com/0xmhha/squad-console/pkg/model"
	"github.com/0xmhha/squad-console/pkg/stats"
)

// commands maps a command name to its handler. config and help run
// without an app and are dispatched in run.
var commands = map[string]func(ctx context.Context, a *app, args []string) error{
	"login":    runLogin,
	"register": runRegister,
	"logout":   runLogout,
	"status":   runStatus,
	"profile":  runProfile,
	"password": runPassword,
	"players":  playersCommand().Execute,
	"teams":    teamsCommand().Execute,
	"members":  membersCommand().Execute,
	"comments": runComments,
}

func playersCommand() *resourceCommand[model.Player, model.PlayerDraft] {
	return &resourceCommand[model.Player, model.PlayerDraft]{
		route:      "players",
		noun:       "player",
		writeAdmin: true,
		canCreate:  true,
		canEdit:    true,
		filterFlag: "team",
		policy:     stats.Players,
		prepend:    true,
		rankKey:    stats.KeyTotalCost,
		rankLabel:  "cost",
		open:       api.Players,
		render:     display.Formatter.FormatPlayers,
		label:      func(p model.Player) string { return p.Name },
		toDraft: func(p model.Player) model.PlayerDraft {
			return model.PlayerDraft{
				Name:        p.Name,
				Image:       p.Image,
				Cost:        p.Cost,
				IsCaptain:   p.IsCaptain,
				Information: p.Information,
				TeamID:      p.TeamID,
			}
		},
		bind: bindPlayerDraft,
	}
}

func bindPlayerDraft(fs *flag.FlagSet) func(model.PlayerDraft) model.PlayerDraft {
	name := fs.String("name", "", "player name")
	team := fs.String("team", "", "team id")
	cost := fs.Int64("cost", 0, "transfer cost")
	captain := fs.Bool("captain", false, "team captain")
	image := fs.String("image", "", "image URL")
	info := fs.String("info", "", "free-text information")

	return func(d model.PlayerDraft) model.PlayerDraft {
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "name":
				d.Name = *name
			case "team":
				d.TeamID = *team
			case "cost":
				d.Cost = *cost
			case "captain":
				d.IsCaptain = *captain
			case "image":
				d.Image = *image
			case "info":
				d.Information = *info
			}
		})
		return d
	}
}

func teamsCommand() *resourceCommand[model.Team, model.TeamDraft] {
	return &resourceCommand[model.Team, model.TeamDraft]{
		route:      "teams",
		noun:       "team",
		writeAdmin: true,
		canCreate:  true,
		canEdit:    true,
		policy:     stats.Teams,
		prepend:    true,
		rankKey:    stats.KeyTotalTeamPlayers,
		rankLabel:  "players",
		open:       api.Teams,
		render:     display.Formatter.FormatTeams,
		label:      func(t model.Team) string { return t.Name },
		toDraft:    func(t model.Team) model.TeamDraft { return model.TeamDraft{Name: t.Name} },
		bind: func(fs *flag.FlagSet) func(model.TeamDraft) model.TeamDraft {
			name := fs.String("name", "", "team name")
			return func(d model.TeamDraft) model.TeamDraft {
				fs.Visit(func(f *flag.Flag) {
					if f.Name == "name" {
						d.Name = *name
					}
				})
				return d
			}
		},
	}
}

// membersCommand manages accounts. Accounts are created with register
// and edited by their owner with profile.
func membersCommand() *resourceCommand[model.User, model.MemberDraft] {
	return &resourceCommand[model.User, model.MemberDraft]{
		route:      "members",
		noun:       "member",
		readAdmin:  true,
		writeAdmin: true,
		policy:     stats.Members,
		open:       api.Members,
		render:     display.Formatter.FormatMembers,
		label:      func(u model.User) string { return u.Username },
	}
}

func commentsCommand(playerID string) *resourceCommand[model.Comment, model.CommentDraft] {
	return &resourceCommand[model.Comment, model.CommentDraft]{
		route:     "players/" + playerID + "/comments",
		noun:      "comment",
		canCreate: true,
		canEdit:   true,
		policy:    stats.Comments,
		prepend:   true,
		rankKey:   stats.KeyTotalRating,
		rankLabel: "rating",
		open: func(c *api.Client) *api.Resource[model.Comment, model.CommentDraft] {
			return api.Comments(c, playerID)
		},
		render: display.Formatter.FormatComments,
		label: func(c model.Comment) string {
			if r := []rune(c.Content); len(r) > 40 {
				return string(r[:40]) + "..."
			}
			return c.Content
		},
		toDraft: func(c model.Comment) model.CommentDraft {
			return model.CommentDraft{Rating: c.Rating, Content: c.Content}
		},
		bind: func(fs *flag.FlagSet) func(model.CommentDraft) model.CommentDraft {
			rating := fs.Int("rating", 0, "rating from 1 to 3")
			content := fs.String("content", "", "comment text")
			return func(d model.CommentDraft) model.CommentDraft {
				fs.Visit(func(f *flag.Flag) {
					switch f.Name {
					case "rating":
						d.Rating = *rating
					case "content":
						d.Content = *content
					}
				})
				return d
			}
		},
	}
}

// runComments takes the player id before the subcommand.
func runComments(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 || args[0] == "" || args[0][0] == '-' {
		return errors.New("usage: squad-console comments <player-id> [list|browse|show|add|edit|delete]")
	}
	return commentsCommand(args[0]).Execute(ctx, a, args[1:])
}
