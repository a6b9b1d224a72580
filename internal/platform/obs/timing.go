package obs

import (
	"context"
	"time"
)

// Time logs how long the named operation took. Use it as
//
//	defer obs.Time(ctx, "cache.Get")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		l := FromContext(ctx)
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			l.Warn().Err(*errp).Str("op", name).Int64("dur_ms", dur.Milliseconds()).Msg("op failed")
			return
		}
		l.Debug().Str("op", name).Int64("dur_ms", dur.Milliseconds()).Msg("op done")
	}
}
