package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yanqian/walkcast/internal/domain/walkplan"
	"github.com/yanqian/walkcast/internal/infra/chartimg"
	apperrors "github.com/yanqian/walkcast/pkg/errors"
)

const (
	formatText = "text"
	formatJSON = "json"
)

type recommendOptions struct {
	walks     int
	from      string
	to        string
	city      string
	latitude  float64
	longitude float64
	chartPath string
	format    string
}

func newRecommendCommand(deps Dependencies) *cobra.Command {
	opts := recommendOptions{}
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend walk times with the lowest precipitation for today.",
		Long: "Splits the preferred time range into one slot per walk and picks the driest hour of each slot.\n" +
			"Pass --city to look up a place by name, --lat/--lon for explicit coordinates, or neither to use the device location.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.format != formatText && opts.format != formatJSON {
				return fmt.Errorf("unsupported --format %q, use text or json", opts.format)
			}
			req, err := buildPlanRequest(cmd, opts)
			if err != nil {
				return err
			}

			resp, err := deps.Planner.Plan(cmd.Context(), req)
			if err != nil {
				return errors.New(apperrors.MessageOf(err))
			}

			if opts.chartPath != "" {
				if err := writeChart(deps.Charts, opts.chartPath, resp.Chart); err != nil {
					return err
				}
			}

			if opts.format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			writeText(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.walks, "walks", 1, "Number of walks per day.")
	flags.StringVar(&opts.from, "from", "08:00", "Earliest walk time (HH:MM).")
	flags.StringVar(&opts.to, "to", "20:00", "Latest walk time (HH:MM).")
	flags.StringVar(&opts.city, "city", "", "City to look up instead of using the device location.")
	flags.Float64Var(&opts.latitude, "lat", 0, "Latitude of the walk location.")
	flags.Float64Var(&opts.longitude, "lon", 0, "Longitude of the walk location.")
	flags.StringVar(&opts.chartPath, "chart", "", "Write the annotated chart to this file (.svg or .png).")
	flags.StringVar(&opts.format, "format", formatText, "Output format: text or json.")
	cmd.MarkFlagsMutuallyExclusive("city", "lat")
	cmd.MarkFlagsMutuallyExclusive("city", "lon")
	cmd.MarkFlagsRequiredTogether("lat", "lon")

	return cmd
}

func buildPlanRequest(cmd *cobra.Command, opts recommendOptions) (walkplan.PlanRequest, error) {
	req := walkplan.PlanRequest{
		WalksPerDay: opts.walks,
		StartTime:   opts.from,
		EndTime:     opts.to,
	}
	flags := cmd.Flags()
	if flags.Changed("city") {
		req.ManualLocation = true
		req.City = opts.city
		return req, nil
	}
	if flags.Changed("lat") {
		lat, lon := opts.latitude, opts.longitude
		req.Latitude = &lat
		req.Longitude = &lon
	}
	return req, nil
}

func writeChart(charts ChartRenderer, path string, chart *walkplan.Chart) error {
	if charts == nil {
		return errors.New("chart export is not available")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	if err := charts.Render(f, chart, chartimg.FormatFromPath(path)); err != nil {
		_ = f.Close()
		return fmt.Errorf("write chart: %w", err)
	}
	return f.Close()
}

func writeJSON(out io.Writer, resp walkplan.PlanResponse) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func writeText(out io.Writer, resp walkplan.PlanResponse) {
	where := fmt.Sprintf("%.4f, %.4f", resp.Location.Latitude, resp.Location.Longitude)
	if resp.Place != nil {
		where = resp.Place.Name
		if resp.Place.Country != "" {
			where += ", " + resp.Place.Country
		}
	}
	_, _ = fmt.Fprintf(out, "Walks for %s (%s UTC)\n", where, resp.Date)
	_, _ = fmt.Fprintln(out, strings.Join(resp.Lines, "\n"))
}
