package engine

// Run advances w one simulated year at a time from its current Year up to
// (but not including) ctx.Config.EndYear, checking invariants and invoking
// onCheckpoint every checkpointEvery years (spec.md section 6's checkpoint
// cadence). cancel is observed only between years, never mid-tick: a year
// either completes in full or the loop returns with w exactly as it stood
// after the last fully-completed year (spec.md section 5's cancellation
// contract).
//
// onCheckpoint may be nil; it is called with the checkpoint year already
// reflected in w.Year.
func Run(ctx SimulationContext, w *World, cancel <-chan struct{}, checkpointEvery int, onCheckpoint func(w *World) error) error {
	lastCheckpointPopulation := -1.0

	for w.Year < ctx.Config.EndYear {
		select {
		case <-cancel:
			if ctx.Log != nil {
				ctx.Log.Info().Int("year", w.Year).Msg("run cancelled at year boundary")
			}
			return nil
		default:
		}

		RunYear(ctx, w, 1)

		if checkpointEvery <= 0 || w.Year%checkpointEvery != 0 {
			continue
		}

		if err := CheckInvariants(w, lastCheckpointPopulation); err != nil {
			if ctx.Log != nil {
				ctx.Log.Error().Err(err).Int("year", w.Year).Msg("invariant violation")
			}
			return err
		}
		lastCheckpointPopulation = WorldPopulation(w)

		if ctx.Log != nil {
			ctx.Log.Info().
				Int("year", w.Year).
				Int("countries", len(w.Countries)).
				Float64("world_population", lastCheckpointPopulation).
				Msg("checkpoint")
		}

		if onCheckpoint != nil {
			if err := onCheckpoint(w); err != nil {
				return err
			}
		}
	}

	return nil
}
