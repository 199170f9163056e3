package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/0xmhha/squad-console/pkg/api"
	"github.com/0xmhha/squad-console/pkg/display"
	"github.com/0xmhha/squad-console/pkg/model"
	"github.com/0xmhha/squad-console/pkg/mutation"
	"github.com/0xmhha/squad-console/pkg/query"
	"github.com/0xmhha/squad-console/pkg/stats"
)

// errReported is returned after the failure was already shown to the user.
var errReported = errors.New("failed")

// resourceCommand implements list, browse, show, add, edit and delete for
// one REST collection.
type resourceCommand[T model.Entity, D any] struct {
	// route is the guarded path segment, e.g. "players".
	route string
	noun  string

	readAdmin  bool
	writeAdmin bool
	canCreate  bool
	canEdit    bool

	// filterFlag names the list flag bound to ListParams.FilterID.
	filterFlag string

	policy  stats.Policy[T]
	prepend bool

	// rankKey is the counter list -top orders by; empty disables -top.
	rankKey   string
	rankLabel string

	open    func(c *api.Client) *api.Resource[T, D]
	render  func(f display.Formatter, w io.Writer, items []T) error
	label   func(item T) string
	toDraft func(item T) D
	bind    func(fs *flag.FlagSet) func(D) D
}

// listFlags are the query parameters accepted by list and browse.
type listFlags struct {
	search string
	filter string
	page   int
	limit  int
	top    int
}

// Execute dispatches a subcommand. The default is list.
func (c *resourceCommand[T, D]) Execute(ctx context.Context, a *app, args []string) error {
	sub := "list"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		sub, args = args[0], args[1:]
	}

	switch sub {
	case "list", "browse":
		lf, err := c.parseList(a, sub, args)
		if err != nil {
			return err
		}
		return a.guarded(ctx, c.path(false), c.readAdmin, func(ctx context.Context) error {
			if sub == "browse" {
				return c.browse(ctx, a, lf)
			}
			return c.list(ctx, a, lf)
		})

	case "show":
		id, _, err := splitID(sub, args)
		if err != nil {
			return err
		}
		return a.guarded(ctx, c.path(false)+"/"+id, c.readAdmin, func(ctx context.Context) error {
			return c.show(ctx, a, id)
		})

	case "add":
		if !c.canCreate {
			return fmt.Errorf("%s cannot be added here", c.route)
		}
		fs := c.flagSet(a, c.route+" add")
		apply := c.bind(fs)
		if err := fs.Parse(args); err != nil {
			return err
		}
		return a.guarded(ctx, c.path(true)+"/new", c.writeAdmin, func(ctx context.Context) error {
			var zero D
			return c.add(ctx, a, apply(zero))
		})

	case "edit":
		if !c.canEdit {
			return fmt.Errorf("%s cannot be edited here", c.route)
		}
		id, rest, err := splitID(sub, args)
		if err != nil {
			return err
		}
		fs := c.flagSet(a, c.route+" edit")
		apply := c.bind(fs)
		if err := fs.Parse(rest); err != nil {
			return err
		}
		return a.guarded(ctx, c.path(true)+"/"+id, c.writeAdmin, func(ctx context.Context) error {
			return c.edit(ctx, a, id, apply)
		})

	case "delete":
		id, rest, err := splitID(sub, args)
		if err != nil {
			return err
		}
		fs := c.flagSet(a, c.route+" delete")
		yes := fs.Bool("yes", false, "skip the confirmation prompt")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		return a.guarded(ctx, c.path(true)+"/"+id, c.writeAdmin, func(ctx context.Context) error {
			return c.remove(ctx, a, id, *yes)
		})

	default:
		return fmt.Errorf("unknown %s subcommand: %s", c.route, sub)
	}
}

// path is the route a subcommand is guarded under.
func (c *resourceCommand[T, D]) path(write bool) string {
	if write && c.writeAdmin {
		return "/admin/" + c.route
	}
	return "/" + c.route
}

func (c *resourceCommand[T, D]) flagSet(a *app, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

// parseList parses list and browse flags.
func (c *resourceCommand[T, D]) parseList(a *app, sub string, args []string) (listFlags, error) {
	lf := listFlags{page: 1, limit: a.cfg.Query.PageSize}
	fs := c.flagSet(a, c.route+" "+sub)
	fs.StringVar(&lf.search, "search", "", "search term")
	if c.filterFlag != "" {
		fs.StringVar(&lf.filter, c.filterFlag, "", c.filterFlag+" id filter")
	}
	fs.IntVar(&lf.page, "page", lf.page, "page number")
	fs.IntVar(&lf.limit, "limit", lf.limit, "page size")
	if c.rankKey != "" && sub == "list" {
		fs.IntVar(&lf.top, "top", 0, "also show the top N listed "+c.route+" by "+c.rankLabel)
	}
	err := fs.Parse(args)
	return lf, err
}

// controller builds a list controller for lf without fetching.
func (c *resourceCommand[T, D]) controller(ctx context.Context, a *app, lf listFlags) *query.Controller[T] {
	ctrl := query.New[T](ctx, query.Config{
		Name:     c.route,
		Debounce: a.cfg.Query.DebounceInterval,
		Limit:    lf.limit,
		FilterID: lf.filter,
	}, c.open(a.client), a.log)

	if lf.search != "" {
		ctrl.SetSearchTerm(lf.search)
	}
	if lf.page > 1 {
		ctrl.SetPage(lf.page)
	}
	return ctrl
}

// load fetches one page immediately and waits for it.
func (c *resourceCommand[T, D]) load(ctx context.Context, a *app, lf listFlags) (*query.Controller[T], error) {
	ctrl := c.controller(ctx, a, lf)
	ctrl.Refresh()
	if err := ctrl.Wait(ctx); err != nil {
		ctrl.Close()
		return nil, err
	}
	if st := ctrl.State(); st.Err != "" {
		ctrl.Close()
		return nil, fmt.Errorf("load %s: %s", c.route, st.Err)
	}
	return ctrl, nil
}

func (c *resourceCommand[T, D]) list(ctx context.Context, a *app, lf listFlags) error {
	ctrl, err := c.load(ctx, a, lf)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	st := ctrl.State()
	if err := c.render(a.format, a.out, st.Items); err != nil {
		return err
	}
	if st.Pagination != nil {
		if err := a.format.FormatPagination(a.out, *st.Pagination); err != nil {
			return err
		}
	}
	if err := a.format.FormatStats(a.out, st.Stats); err != nil {
		return err
	}

	if lf.top > 0 && len(st.Items) > 0 {
		a.printf("\nTop %d by %s:\n", lf.top, c.rankLabel)
		return c.render(a.format, a.out, stats.Top(c.policy, st.Items, c.rankKey, lf.top))
	}
	return nil
}

func (c *resourceCommand[T, D]) show(ctx context.Context, a *app, id string) error {
	item, err := c.open(a.client).Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get %s %s: %s", c.noun, id, describeError(err))
	}
	return c.render(a.format, a.out, []T{item})
}

// coordinator loads the first page so the mutation can be reflected in
// its statistics, and binds a coordinator to it.
func (c *resourceCommand[T, D]) coordinator(ctx context.Context, a *app) (*query.Controller[T], *mutation.Coordinator[T, D], error) {
	ctrl, err := c.load(ctx, a, listFlags{page: 1, limit: a.cfg.Query.PageSize})
	if err != nil {
		return nil, nil, err
	}
	coord := mutation.NewCoordinator[T, D](mutation.Config[T]{
		Policy:  c.policy,
		Prepend: c.prepend,
		Noun:    c.noun,
	}, c.open(a.client), ctrl, toaster{out: a.out, errOut: a.errOut}, a.log)
	return ctrl, coord, nil
}

func (c *resourceCommand[T, D]) add(ctx context.Context, a *app, draft D) error {
	ctrl, coord, err := c.coordinator(ctx, a)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	coord.OpenCreate(draft)
	created, err := coord.Create(ctx, draft)
	if err != nil {
		return errReported
	}

	if err := c.render(a.format, a.out, []T{created}); err != nil {
		return err
	}
	return a.format.FormatStats(a.out, ctrl.State().Stats)
}

func (c *resourceCommand[T, D]) edit(ctx context.Context, a *app, id string, apply func(D) D) error {
	item, err := c.open(a.client).Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get %s %s: %s", c.noun, id, describeError(err))
	}

	ctrl, coord, err := c.coordinator(ctx, a)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	draft := apply(c.toDraft(item))
	coord.OpenEdit(item, draft)
	updated, err := coord.Update(ctx, id, draft)
	if err != nil {
		return errReported
	}

	if err := c.render(a.format, a.out, []T{updated}); err != nil {
		return err
	}
	return a.format.FormatStats(a.out, ctrl.State().Stats)
}

func (c *resourceCommand[T, D]) remove(ctx context.Context, a *app, id string, yes bool) error {
	item, err := c.open(a.client).Get(ctx, id)
	if err != nil {
		return fmt.Errorf("get %s %s: %s", c.noun, id, describeError(err))
	}

	ctrl, coord, err := c.coordinator(ctx, a)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	coord.RequestDelete(item)

	if !yes && !a.prompt.Confirm(fmt.Sprintf("Delete %s %q?", c.noun, c.label(item))) {
		coord.CancelDelete()
		a.printf("Cancelled\n")
		return nil
	}

	for {
		if err := coord.ConfirmDelete(ctx); err == nil {
			return a.format.FormatStats(a.out, ctrl.State().Stats)
		}
		// The confirmation stays open after a failure.
		if yes || !a.prompt.Confirm("Retry?") {
			coord.CancelDelete()
			return errReported
		}
	}
}

// splitID takes the leading positional id.
func splitID(sub string, args []string) (string, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", nil, fmt.Errorf("%s: missing id", sub)
	}
	return args[0], args[1:], nil
}
