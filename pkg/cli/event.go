package cli

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/interfaces"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/model"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/worker"
)

func cmdEvent() *cli.Command {
	return &cli.Command{
		Name:    "event",
		Aliases: []string{"e"},
		Usage:   "Write, read, search and list episodic events",
		Commands: []*cli.Command{
			cmdEventPut(),
			cmdEventGet(),
			cmdEventSearch(),
			cmdEventList(),
		},
	}
}

func cmdEventPut() *cli.Command {
	var s stack
	var content, eventType string
	var tags, entities []string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "content",
			Aliases:     []string{"c"},
			Usage:       "Event content text",
			Required:    true,
			Destination: &content,
		},
		&cli.StringFlag{
			Name:        "type",
			Aliases:     []string{"t"},
			Usage:       "Event type (e.g. conversation, insight, health_event)",
			Value:       "note",
			Destination: &eventType,
		},
		&cli.StringSliceFlag{
			Name:        "tag",
			Usage:       "Tag for the event (repeatable)",
			Destination: &tags,
		},
		&cli.StringSliceFlag{
			Name:        "entity",
			Usage:       "Entity mentioned in the event (repeatable)",
			Destination: &entities,
		},
	}
	flags = append(flags, s.flags()...)

	return &cli.Command{
		Name:  "put",
		Usage: "Store a new event",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := s.build(ctx, 1)
			if err != nil {
				return err
			}
			defer rt.close()

			return rt.call(ctx, types.OpEventWrite, interfaces.EventInput{
				Content:  content,
				Type:     eventType,
				Tags:     tags,
				Entities: entities,
			})
		},
	}
}

func cmdEventGet() *cli.Command {
	var s stack
	var path string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "path",
			Aliases:     []string{"p"},
			Usage:       "Event path relative to the event root",
			Required:    true,
			Destination: &path,
		},
	}
	flags = append(flags, s.flags()...)

	return &cli.Command{
		Name:  "get",
		Usage: "Read one event by path",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := s.build(ctx, 1)
			if err != nil {
				return err
			}
			defer rt.close()

			return rt.call(ctx, types.OpEventRead, worker.ReadPayload{Path: path})
		},
	}
}

func cmdEventSearch() *cli.Command {
	var s stack
	var query string
	var limit int

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "query",
			Aliases:     []string{"q"},
			Usage:       "Substring to search for, case-insensitively",
			Required:    true,
			Destination: &query,
		},
		&cli.IntFlag{
			Name:        "limit",
			Aliases:     []string{"n"},
			Usage:       "Maximum number of matches",
			Value:       20,
			Destination: &limit,
		},
	}
	flags = append(flags, s.flags()...)

	return &cli.Command{
		Name:  "search",
		Usage: "Search event content",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := s.build(ctx, 1)
			if err != nil {
				return err
			}
			defer rt.close()

			return rt.call(ctx, types.OpEventSearch, worker.SearchPayload{
				Query: query,
				Limit: limit,
			})
		},
	}
}

func cmdEventList() *cli.Command {
	var s stack
	var category, since, until string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "category",
			Usage:       "Limit the listing to one event bucket (episodic, reflections, dreams, audio, ...)",
			Destination: &category,
		},
		&cli.StringFlag{
			Name:        "since",
			Usage:       "Only files modified at or after this RFC 3339 time",
			Destination: &since,
		},
		&cli.StringFlag{
			Name:        "until",
			Usage:       "Only files modified before this RFC 3339 time",
			Destination: &until,
		},
	}
	flags = append(flags, s.flags()...)

	return &cli.Command{
		Name:  "list",
		Usage: "List event files, newest first",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			filter := interfaces.ListFilter{
				Category: types.EventCategory(category),
			}
			if filter.Category != "" && !filter.Category.IsValid() {
				return goerr.Wrap(types.ErrBadRequest, "unknown event category",
					goerr.V("category", category))
			}

			var err error
			if filter.Range, err = parseRange(since, until); err != nil {
				return err
			}

			rt, err := s.build(ctx, 1)
			if err != nil {
				return err
			}
			defer rt.close()

			return rt.call(ctx, types.OpEventList, filter)
		},
	}
}

func parseRange(since, until string) (model.DateRange, error) {
	var r model.DateRange
	if since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return r, goerr.Wrap(types.ErrBadRequest, "unparsable --since time",
				goerr.V("since", since))
		}
		r.From = t
	}
	if until != "" {
		t, err := time.Parse(time.RFC3339, until)
		if err != nil {
			return r, goerr.Wrap(types.ErrBadRequest, "unparsable --until time",
				goerr.V("until", until))
		}
		r.To = t
	}
	return r, nil
}
