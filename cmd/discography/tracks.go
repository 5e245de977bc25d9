package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-discography/internal/catalog"
	"github.com/hazadus/go-discography/internal/metadata"
	"github.com/hazadus/go-discography/internal/utils"
	"github.com/hazadus/go-discography/internal/youtube"
)

// trackFlags - флаги полей трека для команд add, edit и import
type trackFlags struct {
	title    string
	duration string
	plays    string
	set      []string
}

func (f *trackFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Название трека")
	cmd.Flags().StringVar(&f.duration, "duration", "", "Длительность, например 3:45")
	cmd.Flags().StringVar(&f.plays, "plays", "", "Количество прослушиваний, например 1.2M")
	cmd.Flags().StringArrayVar(&f.set, "set", nil,
		"Поле в формате name=value, можно повторять ("+strings.Join(catalog.TrackSchema.Names(), ", ")+")")
}

// patches возвращает изменения только для явно заданных флагов
func (f *trackFlags) patches(cmd *cobra.Command) ([]catalog.Patch[catalog.TrackFields], error) {
	var typed catalog.TrackPatch
	if cmd.Flags().Changed("title") {
		typed.Title = &f.title
	}
	if cmd.Flags().Changed("duration") {
		typed.Duration = &f.duration
	}
	if cmd.Flags().Changed("plays") {
		typed.Plays = &f.plays
	}

	assignments, err := catalog.TrackSchema.ParseAssignments(f.set)
	if err != nil {
		return nil, err
	}
	return []catalog.Patch[catalog.TrackFields]{typed, assignments}, nil
}

// createTracksCommand создает группу команд для треков
func (app *Application) createTracksCommand(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tracks",
		Short: "Manage tracks",
	}

	cmd.AddCommand(app.createTracksListCommand(ctx))
	cmd.AddCommand(app.createTracksAddCommand(ctx))
	cmd.AddCommand(app.createTracksEditCommand(ctx))
	cmd.AddCommand(app.createTracksDeleteCommand(ctx))
	cmd.AddCommand(app.createTracksImportCommand(ctx))
	cmd.AddCommand(app.createTracksImportYouTubeCommand(ctx))
	return cmd
}

func (app *Application) createTracksListCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tracks from the store",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := app.Tracks.Load(ctx); err != nil {
				return err
			}
			app.printTracks(app.Tracks.Items())
			return nil
		},
	}
}

func (app *Application) printTracks(tracks []catalog.Track) {
	if len(tracks) == 0 {
		app.printf("🎵 Треков пока нет. Добавьте трек с помощью команды 'tracks add'.\n")
		return
	}

	app.printf("🎵 Найдено треков: %d\n\n", len(tracks))
	app.printf("%-4s %-40s %-12s %-14s\n", "ID", "Название", "Длительность", "Прослушивания")
	app.printf("%s\n", strings.Repeat("-", 74))

	for _, t := range tracks {
		app.printf("%-4d %-40s %-12s %-14s\n",
			t.ID, utils.TruncateString(t.Fields.Title, 38), orNA(t.Fields.Duration), t.Fields.Plays)
	}
	app.printf("\n")
}

func (app *Application) createTracksAddCommand(ctx context.Context) *cobra.Command {
	var flags trackFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new track",
		Example: `  discography tracks add --title "Neon Dreams" --duration 3:45
  discography tracks add --set title="Quiet Hours" --set plays=0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			patches, err := flags.patches(cmd)
			if err != nil {
				return err
			}
			return createEntity(ctx, app.Tracks, catalog.NewTrackDraft(), patches...)
		},
	}
	flags.register(cmd)
	return cmd
}

func (app *Application) createTracksEditCommand(ctx context.Context) *cobra.Command {
	var flags trackFlags
	cmd := &cobra.Command{
		Use:     "edit [ID]",
		Short:   "Edit a track",
		Example: `  discography tracks edit 1 --plays 1.2M`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			patches, err := flags.patches(cmd)
			if err != nil {
				return err
			}
			return editEntity(ctx, app.Tracks, id, patches...)
		},
	}
	flags.register(cmd)
	return cmd
}

func (app *Application) createTracksDeleteCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [ID]",
		Short: "Delete a track by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return deleteEntity(ctx, app.Out, app.Tracks, id)
		},
	}
}

func (app *Application) createTracksImportCommand(ctx context.Context) *cobra.Command {
	var flags trackFlags
	cmd := &cobra.Command{
		Use:   "import [audio file]",
		Short: "Create a track from an audio file's tags",
		Long: `Read the title from the file's tags and the duration from the mp3 stream,
then create a track. Flags override the values read from the file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patches, err := flags.patches(cmd)
			if err != nil {
				return err
			}

			draft, err := metadata.NewExtractor().TrackDraft(args[0])
			if err != nil {
				return err
			}
			app.printDraft(args[0], draft)
			return createEntity(ctx, app.Tracks, draft, patches...)
		},
	}
	flags.register(cmd)
	return cmd
}

func (app *Application) createTracksImportYouTubeCommand(ctx context.Context) *cobra.Command {
	var flags trackFlags
	cmd := &cobra.Command{
		Use:   "import-youtube [YouTube URL]",
		Short: "Create a track from a YouTube video",
		Long: `Fetch the video's title, duration and view count and create a track.
Flags override the values taken from the video.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patches, err := flags.patches(cmd)
			if err != nil {
				return err
			}

			fetchCtx, cancel := context.WithTimeout(ctx, app.Config.RequestTimeout)
			defer cancel()

			app.printf("🔍 Получаем информацию о видео: %s\n", args[0])
			draft, err := youtube.NewImporter(app.videoFetcher).TrackDraft(fetchCtx, args[0])
			if err != nil {
				return err
			}
			app.printDraft(args[0], draft)
			return createEntity(ctx, app.Tracks, draft, patches...)
		},
	}
	flags.register(cmd)
	return cmd
}

// printDraft показывает поля, найденные в источнике
func (app *Application) printDraft(source string, draft catalog.TrackFields) {
	app.printf("📄 Источник: %s\n", source)
	app.printf("   Название: %s\n", draft.Title)
	app.printf("   Длительность: %s\n", orNA(draft.Duration))
	app.printf("   Прослушивания: %s\n", draft.Plays)
	app.printf("\n")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
