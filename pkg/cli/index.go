package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/interfaces"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/domain/types"
	"github.com/Greg-Aster/metahuman-os-sub020/pkg/service/worker"
)

func cmdIndex() *cli.Command {
	return &cli.Command{
		Name:    "index",
		Aliases: []string{"i"},
		Usage:   "Build and query the per-profile vector index",
		Commands: []*cli.Command{
			cmdIndexBuild(),
			cmdIndexQuery(),
			cmdIndexAppend(),
			cmdIndexStatus(),
			cmdIndexEmbed(),
		},
	}
}

func cmdIndexBuild() *cli.Command {
	var s stack
	var episodic, tasks bool

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "episodic",
			Usage:       "Include episodic events (default: everything when no include flag is set)",
			Destination: &episodic,
		},
		&cli.BoolFlag{
			Name:        "tasks",
			Usage:       "Include task documents",
			Destination: &tasks,
		},
	}
	flags = append(flags, s.flags()...)

	return &cli.Command{
		Name:  "build",
		Usage: "Rebuild the index artifact from the profile's documents",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := s.build(ctx, 1)
			if err != nil {
				return err
			}
			defer rt.close()

			return rt.call(ctx, types.OpIndexBuild, interfaces.BuildInput{
				Model:    s.embeddingCfg.Model(),
				Provider: s.embeddingCfg.Provider(),
				Episodic: episodic,
				Tasks:    tasks,
			})
		},
	}
}

func cmdIndexQuery() *cli.Command {
	var s stack
	var text, typeFilter string
	var topK int

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "text",
			Aliases:     []string{"q"},
			Usage:       "Query text",
			Required:    true,
			Destination: &text,
		},
		&cli.IntFlag{
			Name:        "top-k",
			Aliases:     []string{"k"},
			Usage:       "Number of hits to return",
			Value:       5,
			Destination: &topK,
		},
		&cli.StringFlag{
			Name:        "type",
			Usage:       "Only return items of this document type (episodic, task)",
			Destination: &typeFilter,
		},
	}
	flags = append(flags, s.flags()...)

	return &cli.Command{
		Name:  "query",
		Usage: "Similarity-search the index",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := s.build(ctx, 1)
			if err != nil {
				return err
			}
			defer rt.close()

			return rt.call(ctx, types.OpIndexQuery, interfaces.QueryInput{
				Model:      s.embeddingCfg.Model(),
				Text:       text,
				TopK:       topK,
				TypeFilter: typeFilter,
			})
		},
	}
}

func cmdIndexAppend() *cli.Command {
	var s stack
	var eventID, content, filePath string
	var tags []string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "event-id",
			Usage:       "ID of the event to index",
			Required:    true,
			Destination: &eventID,
		},
		&cli.StringFlag{
			Name:        "content",
			Aliases:     []string{"c"},
			Usage:       "Event content to embed",
			Required:    true,
			Destination: &content,
		},
		&cli.StringFlag{
			Name:        "path",
			Usage:       "Event file path recorded with the item",
			Destination: &filePath,
		},
		&cli.StringSliceFlag{
			Name:        "tag",
			Usage:       "Tag embedded with the content (repeatable)",
			Destination: &tags,
		},
	}
	flags = append(flags, s.flags()...)

	return &cli.Command{
		Name:  "append",
		Usage: "Add one event to an existing index",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			id := types.EventID(eventID)
			if err := id.Validate(); err != nil {
				return err
			}

			rt, err := s.build(ctx, 1)
			if err != nil {
				return err
			}
			defer rt.close()

			return rt.call(ctx, types.OpIndexAppend, interfaces.AppendInput{
				Model:    s.embeddingCfg.Model(),
				EventID:  id,
				Content:  content,
				Tags:     tags,
				FilePath: filePath,
			})
		},
	}
}

func cmdIndexStatus() *cli.Command {
	var s stack

	return &cli.Command{
		Name:  "status",
		Usage: "Show the index artifact header",
		Flags: s.flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := s.build(ctx, 1)
			if err != nil {
				return err
			}
			defer rt.close()

			return rt.call(ctx, types.OpIndexStatus, worker.StatusPayload{
				Model: s.embeddingCfg.Model(),
			})
		},
	}
}

func cmdIndexEmbed() *cli.Command {
	var s stack
	var text string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "text",
			Usage:       "Text to embed",
			Required:    true,
			Destination: &text,
		},
	}
	flags = append(flags, s.flags()...)

	return &cli.Command{
		Name:  "embed",
		Usage: "Embed text directly, bypassing any index artifact",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			rt, err := s.build(ctx, 1)
			if err != nil {
				return err
			}
			defer rt.close()

			return rt.call(ctx, types.OpIndexEmbed, worker.EmbedPayload{
				Provider: s.embeddingCfg.Provider(),
				Model:    s.embeddingCfg.Model(),
				Text:     text,
			})
		},
	}
}
