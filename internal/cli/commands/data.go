package commands

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"arenad/internal/db"
	"arenad/internal/errors"
	"arenad/internal/interfaces"
	"arenad/internal/repository"
	"arenad/internal/validation"

	"github.com/spf13/cobra"
)

// DataCommands creates the seed and query commands
func DataCommands(env *Env) []*cobra.Command {
	seedCmd := &cobra.Command{
		Use:   "seed <fixtures.yaml>",
		Short: "Load fixtures into the database",
		Long: `Load a YAML fixtures document (users, groups, tournaments with stages,
rosters, participations and lfp posts) in a single transaction. Nothing is
stored when any row fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return seedFixtures(cmd, env, args[0])
		},
	}

	queryCmd := &cobra.Command{
		Use:       "query <resource>",
		Short:     "Run a list query and print the JSON response",
		Long:      `Run a list query against a resource and print {data, pagination, links} as the API would.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: (&db.Repositories{}).Resources(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, env, args[0])
		},
	}
	queryCmd.Flags().String("shape", "", "Projection shape (MINI, MINI_WITH_LOGO, BASE, EXTENDED)")
	queryCmd.Flags().Int("page", 0, "Page number")
	queryCmd.Flags().Int("page-size", 0, "Rows per page")
	queryCmd.Flags().String("sort", "", "Sort key")
	queryCmd.Flags().String("order", "", "Sort order (asc or desc)")
	queryCmd.Flags().StringArrayP("filter", "f", nil, "Filter as KEY=VALUE (repeatable)")
	queryCmd.Flags().Bool("explain", false, "Print the SQL and arguments instead of running the query")

	return []*cobra.Command{seedCmd, queryCmd}
}

func seedFixtures(cmd *cobra.Command, env *Env, path string) error {
	fx, err := db.LoadFixtures(path)
	if err != nil {
		return err
	}
	repos, err := env.Repositories()
	if err != nil {
		return err
	}

	report, err := repos.Seed(cmd.Context(), fx)
	if err != nil {
		return err
	}

	resources := make([]string, 0, len(report))
	for name := range report {
		resources = append(resources, name)
	}
	sort.Strings(resources)

	fmt.Fprintf(env.Out, "Seeded %s\n", path)
	for _, name := range resources {
		fmt.Fprintf(env.Out, "  %-16s %d\n", name, report[name])
	}
	return nil
}

func runQuery(cmd *cobra.Command, env *Env, resource string) error {
	repos, err := env.Repositories()
	if err != nil {
		return err
	}
	repo, ok := repos.Lookup(resource)
	if !ok {
		return errors.ValidationFailed("resource", resource,
			"must be one of "+strings.Join(repos.Resources(), ", "))
	}

	pairs, _ := cmd.Flags().GetStringArray("filter")
	filters, err := validation.FilterPairs(pairs)
	if err != nil {
		return err
	}

	desc := repository.QueryDescriptor{Filters: filters}
	desc.Page, _ = cmd.Flags().GetInt("page")
	desc.PageSize, _ = cmd.Flags().GetInt("page-size")
	desc.SortField, _ = cmd.Flags().GetString("sort")
	desc.SortOrder, _ = cmd.Flags().GetString("order")
	shape, _ := cmd.Flags().GetString("shape")
	desc.Shape = repository.Shape(shape)

	if cfg, err := env.Config(); err == nil && desc.PageSize > cfg.Query.MaxPageSize {
		return errors.ValidationFailed(validation.ParamPageSize, strconv.Itoa(desc.PageSize),
			fmt.Sprintf("must not exceed %d", cfg.Query.MaxPageSize))
	}

	if explain, _ := cmd.Flags().GetBool("explain"); explain {
		return explainQuery(env, repo, resource, desc)
	}

	result, err := repo.GetQuery(cmd.Context(), desc)
	if err != nil {
		return db.TranslateError(resource, err)
	}
	meta, err := repository.MakeMetadata(desc, result, queryURL(resource, desc))
	if err != nil {
		return err
	}

	rows := result.Rows
	if rows == nil {
		rows = []repository.Row{}
	}
	return printJSON(env.Out, map[string]any{
		"data":       rows,
		"pagination": meta.Pagination,
		"links":      meta.Links,
	})
}

func explainQuery(env *Env, repo interfaces.EntityRepository, resource string, desc repository.QueryDescriptor) error {
	explainer, ok := repo.(interfaces.QueryExplainer)
	if !ok {
		return fmt.Errorf("%s cannot explain its queries", resource)
	}
	query, args, err := explainer.BuildQuery(desc)
	if err != nil {
		return err
	}

	fmt.Fprintln(env.Out, query)
	for i, arg := range args {
		fmt.Fprintf(env.Out, "  $%d = %v\n", i+1, arg)
	}
	return nil
}

// queryURL renders desc as the API URL that would have produced it, so that
// links printed by the CLI can be pasted into an HTTP client
func queryURL(resource string, desc repository.QueryDescriptor) string {
	values := url.Values{}
	for k, v := range desc.Filters {
		values.Set(k, fmt.Sprint(v))
	}
	if desc.Page != 0 {
		values.Set(validation.ParamPage, strconv.Itoa(desc.Page))
	}
	if desc.PageSize != 0 {
		values.Set(validation.ParamPageSize, strconv.Itoa(desc.PageSize))
	}
	if desc.SortField != "" {
		values.Set(validation.ParamSortField, desc.SortField)
	}
	if desc.SortOrder != "" {
		values.Set(validation.ParamSortOrder, desc.SortOrder)
	}
	if desc.Shape != "" {
		values.Set(validation.ParamShape, string(desc.Shape))
	}

	u := url.URL{Path: "/api/" + resource, RawQuery: values.Encode()}
	return u.String()
}
