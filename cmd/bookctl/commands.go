package main

import (
	"book-explorer/internal/app"
	"book-explorer/internal/core/model"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/microcosm-cc/bluemonday"
	"github.com/spf13/cobra"
)

type appBuilder func(ctx context.Context, configPath string) (*app.App, error)

// plainText reduces catalog HTML to text for the terminal.
var plainText = bluemonday.StrictPolicy()

func newRootCmd(out io.Writer, build appBuilder) *cobra.Command {
	var configPath string
	var asJSON bool

	root := &cobra.Command{
		Use:   "bookctl",
		Short: "Search Google Books and manage favorites",
		Long: `bookctl searches the Google Books catalog and manages the favorites list
shared with the book-explorer server.

Examples:
  bookctl search --title dune --author herbert
  bookctl show x1
  bookctl favorites add x1`,
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to bookexplorer.yaml")
	root.PersistentFlags().BoolVar(&asJSON, "json", false, "print JSON instead of text")

	// withApp builds the application for one command run and closes it afterwards.
	withApp := func(run func(ctx context.Context, a *app.App, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := build(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := run(cmd.Context(), a, args); err != nil {
				return userError(err)
			}
			return nil
		}
	}

	var params model.SearchParams
	search := &cobra.Command{
		Use:   "search",
		Short: "Search the catalog by title, author or keyword",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, a *app.App, _ []string) error {
			resp, err := a.Service.SearchCatalog(ctx, params)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(out, resp)
			}
			printBooks(out, resp.Books)
			fmt.Fprintf(out, "\n%d of %d results\n", len(resp.Books), resp.TotalItems)
			return nil
		}),
	}
	search.Flags().StringVar(&params.Title, "title", "", "title terms")
	search.Flags().StringVar(&params.Author, "author", "", "author terms")
	search.Flags().StringVar(&params.Keyword, "keyword", "", "free keyword")
	search.Flags().IntVar(&params.StartIndex, "start", 0, "index of the first result")
	search.Flags().IntVar(&params.MaxResults, "max", model.DefaultMaxResults, "page size (at most 40)")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one book",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
			d, err := a.Service.GetBook(ctx, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(out, d)
			}
			printDetail(out, d)
			return nil
		}),
	}

	favorites := &cobra.Command{
		Use:   "favorites",
		Short: "Manage saved books",
	}
	favorites.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved books",
			Args:  cobra.NoArgs,
			RunE: withApp(func(_ context.Context, a *app.App, _ []string) error {
				books := a.Service.ListFavorites()
				if asJSON {
					return printJSON(out, books)
				}
				if len(books) == 0 {
					fmt.Fprintln(out, "No favorites yet.")
					return nil
				}
				printBooks(out, books)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "add <id>",
			Short: "Save a book by catalog id",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
				b, added, err := a.Service.AddFavorite(ctx, args[0])
				if err != nil {
					return err
				}
				if added {
					fmt.Fprintf(out, "Added %q\n", b.Title)
				} else {
					fmt.Fprintf(out, "%q is already a favorite\n", b.Title)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "remove <id>",
			Short: "Forget a saved book",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(ctx context.Context, a *app.App, args []string) error {
				removed, err := a.Service.RemoveFavorite(ctx, args[0])
				if err != nil {
					return err
				}
				if removed {
					fmt.Fprintf(out, "Removed %s\n", args[0])
				} else {
					fmt.Fprintf(out, "%s was not a favorite\n", args[0])
				}
				return nil
			}),
		},
	)

	root.AddCommand(search, show, favorites)
	return root
}

// userError keeps the cause but leads with the message a user should read.
func userError(err error) error {
	return fmt.Errorf("%s: %w", model.Describe(err), err)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printBooks(w io.Writer, books []model.Book) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHORS\tPUBLISHED")
	for _, b := range books {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", b.ID, b.Title, strings.Join(b.Authors, ", "), b.PublishedDate)
	}
	_ = tw.Flush()
}

func printDetail(w io.Writer, d model.BookDetail) {
	b := d.Book
	fmt.Fprintf(w, "%s\n", b.Title)
	if len(b.Authors) > 0 {
		fmt.Fprintf(w, "by %s\n", strings.Join(b.Authors, ", "))
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	row := func(k, v string) {
		if v != "" {
			fmt.Fprintf(tw, "%s\t%s\n", k, v)
		}
	}
	row("Publisher", b.Publisher)
	row("Published", b.PublishedDate)
	if b.PageCount > 0 {
		row("Pages", fmt.Sprint(b.PageCount))
	}
	row("Language", strings.ToUpper(b.Language))
	row("Categories", strings.Join(b.Categories, ", "))
	if b.AverageRating > 0 {
		row("Rating", fmt.Sprintf("%.1f (%d ratings)", b.AverageRating, b.RatingsCount))
	}
	row("Cover", d.CoverURL)
	row("Preview", b.PreviewLink)
	row("Favorite", fmt.Sprint(d.Favorite))
	_ = tw.Flush()

	if d.DescriptionHTML != "" {
		fmt.Fprintf(w, "\n%s\n", strings.TrimSpace(plainText.Sanitize(d.DescriptionHTML)))
	}
}
