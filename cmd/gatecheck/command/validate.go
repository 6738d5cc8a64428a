package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"opsgate/internal/gate"
	"opsgate/internal/logging"
	"opsgate/internal/modules/checklist"
	"opsgate/internal/modules/geofence"
	"opsgate/internal/types"
)

type validateOpts struct {
	checklistID string
	fence       string
	lat, lng    float64
	accuracy    float64
	apiURL      string
	token       string
	localOnly   bool
	timeout     time.Duration
	activityID  string
	photo       string
}

func newValidateCmd() *cobra.Command {
	var o validateOpts
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a position for a checklist and optionally complete an activity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.checklistID, "checklist", "", "checklist id")
	f.StringVar(&o.fence, "fence", "", "checklist geofence as LAT,LNG,RADIUS; skips loading the checklist from the API")
	f.Float64Var(&o.lat, "lat", 0, "latitude in decimal degrees")
	f.Float64Var(&o.lng, "lng", 0, "longitude in decimal degrees")
	f.Float64Var(&o.accuracy, "accuracy", 0, "reported accuracy in meters")
	f.StringVar(&o.apiURL, "api", "", "API base URL (default from config)")
	f.StringVar(&o.token, "token", "", "Firebase ID token (default from config)")
	f.BoolVar(&o.localOnly, "local", false, "validate with the local engine only (requires --fence)")
	f.DurationVar(&o.timeout, "timeout", 0, "position timeout (default from config)")
	f.StringVar(&o.activityID, "activity", "", "activity to complete once the gate is open")
	f.StringVar(&o.photo, "photo", "", "photo reference for activities that require one")
	_ = cmd.MarkFlagRequired("checklist")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	return cmd
}

func runValidate(cmd *cobra.Command, o validateOpts) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logging.New(logging.Config{Level: cfg.Log.Level, Format: "text", Output: cmd.ErrOrStderr()})
	if o.apiURL == "" {
		o.apiURL = cfg.Client.BaseURL
	}
	if o.token == "" {
		o.token = cfg.Client.Token
	}
	if o.timeout <= 0 {
		o.timeout = cfg.Gate.PositionTimeout
	}

	ctx := cmd.Context()
	api := newAPIClient(o.apiURL, o.token)
	var c *checklist.Checklist
	switch {
	case o.fence != "":
		if c, err = fencedChecklist(types.ID(o.checklistID), o.fence); err != nil {
			return err
		}
	case o.localOnly:
		return errors.New("--local needs --fence")
	default:
		if c, err = api.checklist(ctx, types.ID(o.checklistID)); err != nil {
			return fmt.Errorf("loading checklist: %w", err)
		}
	}

	var validator gate.Validator = gate.LocalValidator{}
	if !o.localOnly {
		validator = gate.FallbackValidator{
			Primary:  gate.NewRemoteValidator(o.apiURL, o.token, nil),
			Fallback: gate.LocalValidator{},
			Log:      log,
		}
	}
	source := gate.StaticSource{Point: geofence.GeoPoint{Lat: o.lat, Lng: o.lng}}
	if o.accuracy > 0 {
		source.AccuracyMeters = &o.accuracy
	}
	opts := gate.DefaultPositionOptions
	opts.Timeout = o.timeout
	orch := gate.NewOrchestrator(source, validator, opts, log)
	session := gate.NewSession()

	out := cmd.OutOrStdout()
	outcome, err := orch.Validate(ctx, session, c)
	var pe *gate.PositionError
	switch {
	case errors.As(err, &pe):
		return errors.New(pe.Message())
	case errors.Is(err, checklist.ErrNoGeofence):
		return errors.New("cannot validate location for this checklist, contact administrator")
	case err != nil:
		return err
	}

	switch {
	case outcome.Source == gate.SourceSkipped:
		fmt.Fprintf(out, "%s: no location required\n", c.Name)
	case outcome.Validated:
		fmt.Fprintf(out, "%s: location validated (%.0fm from center)\n", c.Name, outcome.DistanceMeters)
	default:
		fmt.Fprintf(out, "%s: %s\n", c.Name, outcome.Message)
	}

	if o.activityID == "" {
		return nil
	}
	if err := session.Allow(c); err != nil {
		return err
	}
	if err := api.complete(ctx, c.ID, types.ID(o.activityID), source.Point, o.photo); err != nil {
		return fmt.Errorf("completing activity: %w", err)
	}
	fmt.Fprintf(out, "activity %s completed\n", o.activityID)
	return nil
}

// fencedChecklist builds a location-gated checklist from a LAT,LNG,RADIUS flag.
func fencedChecklist(id types.ID, spec string) (*checklist.Checklist, error) {
	parts := strings.Split(spec, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("--fence: want LAT,LNG,RADIUS, got %q", spec)
	}
	var vals [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("--fence: %w", err)
		}
		vals[i] = v
	}
	loc := &checklist.Location{Latitude: vals[0], Longitude: vals[1], Radius: vals[2]}
	fence := geofence.Geofence{Center: loc.Center(), RadiusMeters: loc.Radius}
	if err := fence.Validate(); err != nil {
		return nil, fmt.Errorf("--fence: %w", err)
	}
	return &checklist.Checklist{ID: id, Name: string(id), RequiresLocation: true, Location: loc}, nil
}
