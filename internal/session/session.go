// Package session runs the interactive report loop.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/verte-zerg/bikeshare/internal/dataset"
	"github.com/verte-zerg/bikeshare/internal/filter"
	"github.com/verte-zerg/bikeshare/internal/model"
	"github.com/verte-zerg/bikeshare/internal/pager"
	"github.com/verte-zerg/bikeshare/internal/prompt"
	"github.com/verte-zerg/bikeshare/internal/stats"
)

// Options configures a Session.
type Options struct {
	In       io.Reader
	Out      io.Writer
	Err      io.Writer
	Loader   *dataset.Loader
	PageSize int
	Color    bool
	Logger   *slog.Logger
	// Renderer prints raw data pages. Nil uses pager.FrameRenderer.
	Renderer pager.Renderer
}

// Session drives the prompt, load, filter, report and restart cycle.
type Session struct {
	opts    Options
	prompts *prompt.Prompter
	logger  *slog.Logger
}

// New returns a Session.
func New(opts Options) *Session {
	if opts.Err == nil {
		opts.Err = opts.Out
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		opts:    opts,
		prompts: prompt.New(opts.In, opts.Out),
		logger:  logger,
	}
}

// Run loops until the user declines to restart or input ends.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.runOnce(ctx); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		restart, err := s.prompts.Confirm("\nWould you like to restart? Enter yes or no.\n")
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if !restart {
			return nil
		}
	}
}

func (s *Session) runOnce(ctx context.Context) error {
	f, err := s.Filters()
	if err != nil {
		return err
	}

	table, err := s.opts.Loader.Load(ctx, f.City)
	if err != nil {
		var loadErr *dataset.LoadError
		if errors.As(err, &loadErr) {
			s.logger.Error("dataset load failed", "city", f.City, "err", err)
			_, werr := fmt.Fprintf(s.opts.Err, "\n%v\n", err)
			return werr
		}
		return err
	}
	table = filter.Apply(table, f)
	s.logger.Debug("filter applied", "city", f.City, "month", f.MonthName(), "day", f.DayName(), "trips", table.Len())

	pg := pager.New(s.opts.Out, s.prompts, s.opts.Renderer, s.opts.PageSize)
	if err := pg.Run(table); err != nil {
		return err
	}
	return stats.NewPrinter(s.opts.Out, s.opts.Color).All(table)
}

// Filters asks for a city, month and day until each answer is valid.
func (s *Session) Filters() (model.Filter, error) {
	if _, err := fmt.Fprintln(s.opts.Out, "Hello! Let's explore some US bikeshare data!"); err != nil {
		return model.Filter{}, err
	}
	cities := s.opts.Loader.Registry().Cities()
	city, err := s.prompts.Ask(CityField(cities))
	if err != nil {
		return model.Filter{}, err
	}
	month, err := s.prompts.Ask(MonthField())
	if err != nil {
		return model.Filter{}, err
	}
	day, err := s.prompts.Ask(DayField())
	if err != nil {
		return model.Filter{}, err
	}
	if _, err := fmt.Fprintln(s.opts.Out, stats.Separator); err != nil {
		return model.Filter{}, err
	}
	return model.NewFilter(city, month, day)
}

// CityField builds the city question from the configured cities.
func CityField(cities []model.City) prompt.Field {
	ids := make([]string, len(cities))
	names := make([]string, len(cities))
	for i, c := range cities {
		ids[i] = c.ID
		names[i] = c.Name
	}
	return prompt.Field{
		Name:     "city",
		Question: fmt.Sprintf("Would you like to see data for %s?\n", joinChoices(names, "or")),
		Invalid:  fmt.Sprintf("Invalid input! Please choose from: %s.\n", joinChoices(names, "or")),
		Valid:    ids,
	}
}

// MonthField builds the month question.
func MonthField() prompt.Field {
	return prompt.Field{
		Name:     "month",
		Question: "\nWhich month would you like to filter by? Type 'all' if you don't want to filter by month.\n",
		Invalid:  fmt.Sprintf("Invalid input. Please enter a valid month (%s to %s) or 'all'.\n", model.Months[0], model.Months[len(model.Months)-1]),
		Valid:    append(append([]string(nil), model.Months...), model.All),
	}
}

// DayField builds the day-of-week question.
func DayField() prompt.Field {
	return prompt.Field{
		Name:     "day",
		Question: "\nWhich day would you like to see data for? Type 'all' if you don't want to filter by day.\n",
		Invalid:  "Invalid input. Please enter a valid day (e.g., monday) or 'all'.\n",
		Valid:    append(append([]string(nil), model.Days...), model.All),
	}
}

func joinChoices(items []string, conj string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " " + conj + " " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " " + conj + " " + items[len(items)-1]
	}
}
