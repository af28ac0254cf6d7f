package order

import (
	"time"

	"github.com/go-faster/errors"
)

// DefaultHourlyRate is the flat work tariff in currency minor units per hour
// (Rp 100,000/hour).
const DefaultHourlyRate int64 = 100_000

const millisPerHour = int64(time.Hour / time.Millisecond)

// Bill maps an elapsed work duration to the amount owed under the given
// hourly rate, rounding fractions of an hour upward. It is a pure function of
// the stored work-start/work-end pair, so the result is reproducible no
// matter when it is computed.
//
// Zero elapsed time bills zero. Negative elapsed time means the stored
// timestamps are inconsistent and is rejected with ErrInvalidDuration.
func Bill(elapsed time.Duration, hourlyRate int64) (int64, error) {
	if elapsed < 0 {
		return 0, errors.Wrapf(ErrInvalidDuration, "elapsed %s", elapsed)
	}
	if hourlyRate < 0 {
		return 0, errors.Wrapf(ErrInvalidDuration, "hourly rate %d", hourlyRate)
	}

	ms := elapsed.Milliseconds()
	if ms == 0 {
		return 0, nil
	}

	// ceil(ms/3_600_000 * rate) in integer arithmetic.
	return (ms*hourlyRate + millisPerHour - 1) / millisPerHour, nil
}
