package tour

import (
	"strconv"
	"time"
)

var testTime = time.Date(2024, 4, 20, 10, 0, 0, 0, time.UTC)

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
