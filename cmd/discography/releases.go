package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-discography/internal/catalog"
	"github.com/hazadus/go-discography/internal/utils"
)

// releaseFlags - флаги полей релиза для команд add и edit
type releaseFlags struct {
	title       string
	year        string
	coverURL    string
	tracksCount int
	releaseType string
	set         []string
}

func (f *releaseFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Название релиза")
	cmd.Flags().StringVar(&f.year, "year", "", "Год выпуска")
	cmd.Flags().StringVar(&f.coverURL, "cover-url", "", "Адрес обложки")
	cmd.Flags().IntVar(&f.tracksCount, "tracks", 0, "Количество треков")
	cmd.Flags().StringVar(&f.releaseType, "type", "", "Тип релиза: Single, EP или Album")
	cmd.Flags().StringArrayVar(&f.set, "set", nil,
		"Поле в формате name=value, можно повторять ("+strings.Join(catalog.ReleaseSchema.Names(), ", ")+")")
}

// patches возвращает изменения только для явно заданных флагов
func (f *releaseFlags) patches(cmd *cobra.Command) ([]catalog.Patch[catalog.ReleaseFields], error) {
	var typed catalog.ReleasePatch
	if cmd.Flags().Changed("title") {
		typed.Title = &f.title
	}
	if cmd.Flags().Changed("year") {
		typed.Year = &f.year
	}
	if cmd.Flags().Changed("cover-url") {
		typed.CoverURL = &f.coverURL
	}
	if cmd.Flags().Changed("tracks") {
		typed.TracksCount = &f.tracksCount
	}
	if cmd.Flags().Changed("type") {
		t, err := catalog.ParseReleaseType(f.releaseType)
		if err != nil {
			return nil, err
		}
		typed.Type = &t
	}

	assignments, err := catalog.ReleaseSchema.ParseAssignments(f.set)
	if err != nil {
		return nil, err
	}
	return []catalog.Patch[catalog.ReleaseFields]{typed, assignments}, nil
}

// createReleasesCommand создает группу команд для релизов
func (app *Application) createReleasesCommand(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "releases",
		Short: "Manage releases",
	}

	cmd.AddCommand(app.createReleasesListCommand(ctx))
	cmd.AddCommand(app.createReleasesAddCommand(ctx))
	cmd.AddCommand(app.createReleasesEditCommand(ctx))
	cmd.AddCommand(app.createReleasesDeleteCommand(ctx))
	cmd.AddCommand(app.createReleasesCoverCommand(ctx))
	return cmd
}

func (app *Application) createReleasesListCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all releases, newest first",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := app.Releases.Load(ctx); err != nil {
				return err
			}
			app.printReleases(app.Releases.Items())
			return nil
		},
	}
}

func (app *Application) printReleases(releases []catalog.Release) {
	if len(releases) == 0 {
		app.printf("💿 Релизов пока нет. Добавьте релиз с помощью команды 'releases add'.\n")
		return
	}

	app.printf("💿 Найдено релизов: %d\n\n", len(releases))
	app.printf("%-4s %-6s %-7s %-40s %-6s %s\n", "ID", "Год", "Тип", "Название", "Треков", "Обложка")
	app.printf("%s\n", strings.Repeat("-", 90))

	for _, r := range releases {
		cover := "-"
		if r.Fields.CoverURL != "" {
			cover = "есть"
		}
		app.printf("%-4d %-6s %-7s %-40s %-6d %s\n",
			r.ID, r.Fields.Year, r.Fields.Type, utils.TruncateString(r.Fields.Title, 38), r.Fields.TracksCount, cover)
	}
	app.printf("\n")
	app.printf("💡 Используйте 'discography releases cover [ID] [файл]' для загрузки обложки\n")
}

func (app *Application) createReleasesAddCommand(ctx context.Context) *cobra.Command {
	var flags releaseFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a new release",
		Example: `  discography releases add --title "Emerald Horizons" --type EP --tracks 4
  discography releases add --set title="Night Drive" --set year=2023`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			patches, err := flags.patches(cmd)
			if err != nil {
				return err
			}
			defaults := catalog.NewReleaseDraft(fmt.Sprint(time.Now().Year()))
			return createEntity(ctx, app.Releases, defaults, patches...)
		},
	}
	flags.register(cmd)
	return cmd
}

func (app *Application) createReleasesEditCommand(ctx context.Context) *cobra.Command {
	var flags releaseFlags
	cmd := &cobra.Command{
		Use:     "edit [ID]",
		Short:   "Edit a release",
		Example: `  discography releases edit 2 --type Album --tracks 10`,
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
			return editEntity(ctx, app.Releases, id, patches...)
		},
	}
	flags.register(cmd)
	return cmd
}

func (app *Application) createReleasesDeleteCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [ID]",
		Short: "Delete a release by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return deleteEntity(ctx, app.Out, app.Releases, id)
		},
	}
}
