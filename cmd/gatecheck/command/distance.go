package command

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"opsgate/internal/modules/geofence"
)

func newDistanceCmd() *cobra.Command {
	var radius float64
	cmd := &cobra.Command{
		Use:   "distance LAT1 LNG1 LAT2 LNG2",
		Short: "Print the great-circle distance in meters between two points",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			var v [4]float64
			for i, a := range args {
				f, err := strconv.ParseFloat(a, 64)
				if err != nil {
					return fmt.Errorf("argument %d: %w", i+1, err)
				}
				v[i] = f
			}
			a := geofence.GeoPoint{Lat: v[0], Lng: v[1]}
			b := geofence.GeoPoint{Lat: v[2], Lng: v[3]}
			if radius > 0 {
				res, err := geofence.Evaluate(a, geofence.Geofence{Center: b, RadiusMeters: radius})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%.2f m (within %.0f m: %t)\n", res.DistanceMeters, radius, res.WithinFence)
				return nil
			}
			for _, p := range []geofence.GeoPoint{a, b} {
				if err := p.Validate(); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.2f m\n", geofence.Distance(a, b))
			return nil
		},
	}
	cmd.Flags().Float64Var(&radius, "radius", 0, "also report containment in a fence of this radius around the second point")
	return cmd
}
