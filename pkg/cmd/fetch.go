package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/abel123/zeus/pkg/style"
	"github.com/abel123/zeus/pkg/types"
	"github.com/abel123/zeus/pkg/util/backoff"
	"github.com/abel123/zeus/pkg/zen"
	"github.com/abel123/zeus/pkg/zenapi"
)

func init() {
	FetchCmd.Flags().String("symbol", "", "the chart symbol, e.g. BINANCE:BTCUSDT")
	FetchCmd.Flags().String("resolution", "60", "the chart resolution")
	FetchCmd.Flags().String("from", "", "window start, unix seconds or a date, defaults to 7 days before --to")
	FetchCmd.Flags().String("to", "", "window end, unix seconds or a date, defaults to now")
	FetchCmd.Flags().Bool("replay", false, "ask for historical bars only")
	FetchCmd.Flags().Uint64("retries", 3, "retries on temporary failures")
	FetchCmd.Flags().Bool("plain", false, "print tables without colors")
	RootCmd.AddCommand(FetchCmd)
}

var FetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "fetch the annotations of one window and print them",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()

		symbol, _ := flags.GetString("symbol")
		resolution, _ := flags.GetString("resolution")
		fromStr, _ := flags.GetString("from")
		toStr, _ := flags.GetString("to")
		replay, _ := flags.GetBool("replay")
		retries, _ := flags.GetUint64("retries")
		plain, _ := flags.GetBool("plain")

		if symbol == "" {
			return errors.New("--symbol is required")
		}

		window, err := parseWindow(fromStr, toStr, time.Now())
		if err != nil {
			return err
		}

		client, err := userConfig.NewClient()
		if err != nil {
			return err
		}

		request := types.AnnotationRequest{
			From:       window.From,
			To:         window.To,
			Symbol:     symbol,
			Resolution: resolution,
			Indicators: userConfig.Indicators,
		}

		payload, err := fetchWithRetry(cmd.Context(), client, request, replay, retries)
		if err != nil {
			return err
		}

		printPayload(cmd.OutOrStdout(), request, payload, plain)
		return nil
	},
}

func parseWindow(fromStr, toStr string, now time.Time) (types.VisibleRange, error) {
	to := types.NewTimestamp(now)
	if toStr != "" {
		var err error
		if to, err = types.ParseTimestamp(toStr); err != nil {
			return types.VisibleRange{}, errors.Wrap(err, "invalid --to")
		}
	}

	from := types.NewTimestamp(to.Time().AddDate(0, 0, -7))
	if fromStr != "" {
		var err error
		if from, err = types.ParseTimestamp(fromStr); err != nil {
			return types.VisibleRange{}, errors.Wrap(err, "invalid --from")
		}
	}

	window := types.VisibleRange{From: from, To: to}
	if window.IsEmpty() {
		return window, errors.Errorf("empty window %s", window)
	}

	return window, nil
}

// fetchWithRetry retries temporary failures only. Controllers never retry, the
// next chart event does.
func fetchWithRetry(ctx context.Context, fetcher zen.Fetcher, request types.AnnotationRequest, replay bool, retries uint64) (*types.AnnotationPayload, error) {
	var payload *types.AnnotationPayload

	err := backoff.RetryGeneral(ctx, retries, func() error {
		p, err := fetcher.FetchAnnotations(ctx, request, replay)
		if err != nil {
			if !zenapi.IsTemporary(err) {
				return backoff.Permanent(err)
			}

			log.WithError(err).Warn("fetch failed, retrying")
			return err
		}

		payload = p
		return nil
	})

	return payload, err
}

func printPayload(w io.Writer, request types.AnnotationRequest, payload *types.AnnotationPayload, plain bool) {
	title := fmt.Sprintf("%s %s %s", request.Symbol, request.Resolution, request.Range())

	segments := style.NewTable(w, "Segments "+title, table.Row{"Status", "Direction", "Start", "End", "Start Price", "End Price"}, plain)
	for _, s := range payload.Segments.Finished {
		segments.AppendRow(table.Row{"finished", s.Direction, s.StartTime, s.EndTime, s.StartPrice, s.EndPrice})
	}
	for _, s := range payload.Segments.Unfinished {
		segments.AppendRow(table.Row{"unfinished", s.Direction, s.StartTime, s.EndTime, s.StartPrice, s.EndPrice})
	}
	segments.Render()

	divergences := style.NewTable(w, "Divergences", table.Row{"Indicator", "Direction", "Kind", "Marker A", "Marker B", "Boundary"}, plain)
	for i, list := range payload.Divergences {
		for _, d := range list {
			divergences.AppendRow(table.Row{
				indicatorName(request, i),
				d.Direction,
				d.Kind,
				fmt.Sprintf("%s %.2f", d.MarkerA.Time, d.MarkerA.Value),
				fmt.Sprintf("%s %.2f", d.MarkerB.Time, d.MarkerB.Value),
				d.Boundary.Key(),
			})
		}
	}
	divergences.Render()

	markers := style.NewTable(w, "Bar Markers", table.Row{"Indicator", "Time"}, plain)
	for i, list := range payload.BarMarkers {
		for _, ts := range list {
			markers.AppendRow(table.Row{indicatorName(request, i), ts})
		}
	}
	markers.Render()
}

func indicatorName(request types.AnnotationRequest, i int) string {
	if i < len(request.Indicators) {
		return request.Indicators[i].String()
	}
	return fmt.Sprintf("#%d", i)
}
