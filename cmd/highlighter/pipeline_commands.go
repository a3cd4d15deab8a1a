package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RaufunNazin/Highlighter/internal/highlight"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "generate <video.mp4> <subtitle.srt>",
		Short: "Upload a video and subtitle pair and await candidate segments",
		Long: "Submits the pair for remote segmentation and blocks until the " +
			"service has produced the candidate segments. The generated video " +
			"reference is stored for the create step.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.ensure(); err != nil {
				return err
			}

			stage := highlight.NewGenerationStage(ctx.gw, ctx.store, ctx.journal, ctx.logger)
			if err := stage.SelectVideo(highlight.DetectAsset(args[0])); err != nil {
				return err
			}
			if err := stage.SelectSubtitle(highlight.DetectAsset(args[1])); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Generating segments, this may take a while...")
			result, err := stage.Submit(cmd.Context())
			if err != nil {
				return authError(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Generated %d segments in %.1fs (video %s)\n",
				result.TotalSegments, result.TotalTime, result.VideoRef)
			return nil
		},
	}
}

func newSegmentsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "segments",
		Short: "List the candidate segments of the last generation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.ensure(); err != nil {
				return err
			}

			stage, err := highlight.NewSelectionStage(cmd.Context(), ctx.gw, ctx.store, ctx.journal, ctx.logger)
			if err != nil {
				return err
			}
			if err := stage.Load(cmd.Context()); err != nil {
				return authError(err)
			}

			segments := stage.Segments()
			if defaultFormat() != "table" {
				for _, s := range segments {
					fmt.Fprintln(cmd.OutOrStdout(), s.SegmentRef)
				}
				return nil
			}

			rows := make([][]string, 0, len(segments))
			for _, s := range segments {
				rows = append(rows, []string{fmt.Sprintf("%d", s.ID), s.SegmentRef})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Segment"},
				rows,
				[]columnAlignment{alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newCreateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "create <segment.mp4> [segment.mp4 ...]",
		Short: "Concatenate selected segments into the final highlight video",
		Long: "Selects the named segments in the given order and submits them " +
			"for concatenation. The final video reference is stored and can be " +
			"downloaded with fetch.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.ensure(); err != nil {
				return err
			}

			stage, err := highlight.NewSelectionStage(cmd.Context(), ctx.gw, ctx.store, ctx.journal, ctx.logger)
			if err != nil {
				return err
			}
			if err := stage.Load(cmd.Context()); err != nil {
				return authError(err)
			}
			for _, ref := range args {
				if err := stage.Toggle(ref); err != nil {
					return err
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Concatenating, this may take a while...")
			finalRef, err := stage.Submit(cmd.Context())
			if err != nil {
				return authError(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Final highlight video: %s\n", finalRef)
			return nil
		},
	}
}
