package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ConserveLee/orbit-idle/internal/engine/patrol"
	"github.com/ConserveLee/orbit-idle/internal/engine/screen"
)

func newInspectCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Run the detectors on a saved capture",
	}
	cmd.AddCommand(newInspectBarCmd(c), newInspectMarkerCmd(c))
	return cmd
}

func newInspectBarCmd(c *cli) *cobra.Command {
	var suggest bool
	cmd := &cobra.Command{
		Use:   "bar <png>",
		Short: "Estimate the fill percentage of a bar capture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := loadBuffer(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			pct := screen.NewBarEstimator(c.cfg.Vitality.Palette).Estimate(buf)
			fmt.Fprintf(out, "fill: %.1f%%\n", pct)
			fmt.Fprintf(out, "below threshold: %t\n", pct <= float64(c.cfg.Vitality.Threshold))
			if !suggest {
				return nil
			}
			p, ok := screen.SuggestPalette(buf)
			if !ok {
				return fmt.Errorf("%s: capture too small to suggest a palette", args[0])
			}
			fmt.Fprintln(out, "palette:")
			printRange(out, "healthy", p.Healthy)
			printRange(out, "low", p.Low)
			return nil
		},
	}
	cmd.Flags().BoolVar(&suggest, "suggest", false, "print a palette sampled from a full bar")
	return cmd
}

func newInspectMarkerCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "marker <png>...",
		Short: "Track the player marker across minimap captures, oldest first",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			tracker := screen.NewMarkerTracker(screen.NewMarkerDetector())

			var (
				pos screen.Position
				ok  bool
			)
			for _, path := range args {
				buf, err := loadBuffer(path)
				if err != nil {
					return err
				}
				var det screen.Detection
				pos, det, ok = tracker.Observe(buf)
				if !det.Found {
					fmt.Fprintf(out, "%s: marker: not found\n", path)
					continue
				}
				fmt.Fprintf(out, "%s: marker: (%d, %d) confidence=%s candidates=%d blobs=%d\n",
					path, det.Position.X, det.Position.Y, det.Confidence, det.Candidates, det.Blobs)
			}
			if !ok {
				return nil
			}

			fmt.Fprint(out, "history:")
			for _, p := range tracker.History().Positions() {
				fmt.Fprintf(out, " (%d, %d)", p.X, p.Y)
			}
			fmt.Fprintf(out, "\nstabilized: (%d, %d)\n", pos.X, pos.Y)

			pc := c.cfg.Patrol
			if !pc.Circle.Valid() {
				return nil
			}
			dec, _ := patrol.Evaluate(patrol.NewOrbitState(pc.AngularSpeed, pc.RadiusOffset), patrol.Input{
				Position:      pos,
				HasPosition:   true,
				Circle:        pc.Circle,
				BoundaryRatio: pc.BoundaryRatio,
			})
			fmt.Fprintf(out, "state: %s distance=%.1f/%d keys=%v\n", dec.State, dec.Distance, dec.Radius, pc.Keys.Keys(dec.Directions))
			if dec.Boundary != "" {
				fmt.Fprintln(out, dec.Boundary)
			}
			return nil
		},
	}
}

func loadBuffer(path string) (screen.PixelBuffer, error) {
	img, err := screen.LoadImage(path)
	if err != nil {
		return screen.PixelBuffer{}, err
	}
	return screen.FromImage(img), nil
}

func printRange(out io.Writer, name string, r screen.ColorRange) {
	fmt.Fprintf(out, "  %s:\n    min: [%d, %d, %d]\n    max: [%d, %d, %d]\n",
		name, r.Min.R, r.Min.G, r.Min.B, r.Max.R, r.Max.G, r.Max.B)
}
